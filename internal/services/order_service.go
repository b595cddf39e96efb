package services

import (
	"fmt"

	"topup/internal/models"
	"topup/internal/repositories"
)

// OrderService owns the operator side of the order lifecycle: status
// transitions with monotonicity enforcement and the conditional
// reason/approval fields that ride along with them.
type OrderService struct {
	store repositories.OrderStore
}

// NewOrderService creates a new OrderService.
func NewOrderService(store repositories.OrderStore) *OrderService {
	return &OrderService{store: store}
}

// GetOrder retrieves a single order by its ID.
func (s *OrderService) GetOrder(id string) (*models.Order, error) {
	return s.store.SelectOne(id)
}

// GetMemberOrders retrieves all orders of one member, newest first.
func (s *OrderService) GetMemberOrders(memberID string) ([]models.Order, error) {
	return s.store.SelectByMember(memberID)
}

// Approve moves an order to approved with an optional operator message.
func (s *OrderService) Approve(id, message string) error {
	return s.transition(id, models.StatusApproved, "", message)
}

// Reject moves an order to rejected with an operator-supplied reason and
// optional longer message, both shown to the customer.
func (s *OrderService) Reject(id, reason, message string) error {
	return s.transition(id, models.StatusRejected, reason, message)
}

// MarkProcessing moves a pending order to processing.
func (s *OrderService) MarkProcessing(id string) error {
	return s.transition(id, models.StatusProcessing, "", "")
}

// Transition applies a status change with a single free-form field, which is
// recorded as the rejection reason when rejecting and as the approval
// message when approving.
func (s *OrderService) Transition(id, newStatus, reasonOrMessage string) error {
	switch newStatus {
	case models.StatusRejected:
		return s.transition(id, newStatus, reasonOrMessage, "")
	case models.StatusApproved:
		return s.transition(id, newStatus, "", reasonOrMessage)
	default:
		return s.transition(id, newStatus, "", "")
	}
}

func (s *OrderService) transition(id, newStatus, reason, message string) error {
	order, err := s.store.SelectOne(id)
	if err != nil {
		return err
	}
	if !models.CanTransition(order.Status, newStatus) {
		return fmt.Errorf("invalid order status transition %s -> %s", order.Status, newStatus)
	}

	fields := map[string]interface{}{"status": newStatus}
	switch newStatus {
	case models.StatusRejected:
		fields["rejection_reason"] = reason
		fields["rejection_message"] = message
	case models.StatusApproved:
		fields["approval_message"] = message
		fields["rejection_reason"] = ""
		fields["rejection_message"] = ""
	default:
		// Leaving nothing rejected behind: a non-rejected status never
		// carries stale rejection text.
		fields["rejection_reason"] = ""
		fields["rejection_message"] = ""
	}

	if err := s.store.Update(id, fields); err != nil {
		return fmt.Errorf("failed to update order status for order %s: %w", id, err)
	}
	return nil
}
