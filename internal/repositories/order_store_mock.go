package repositories

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"topup/internal/models"
)

// MockOrderStore is an in-memory implementation of OrderStore, used in tests
// and as the fallback store when no database is configured.
type MockOrderStore struct {
	mu     sync.RWMutex
	orders map[string]models.Order
	events ChangePublisher
}

// NewMockOrderStore creates a new empty MockOrderStore.
func NewMockOrderStore() *MockOrderStore {
	return &MockOrderStore{orders: make(map[string]models.Order)}
}

// SetPublisher attaches a change publisher for subsequent writes.
func (s *MockOrderStore) SetPublisher(events ChangePublisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = events
}

// Insert stores a new order, assigning id and timestamps.
func (s *MockOrderStore) Insert(order *models.Order) error {
	s.mu.Lock()
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	s.orders[order.ID] = *order
	events := s.events
	s.mu.Unlock()

	if events != nil {
		_ = events.PublishOrderChange(models.OrderChange{Kind: models.ChangeInsert, OrderID: order.ID, At: now})
	}
	return nil
}

// SelectOne returns an order by id.
func (s *MockOrderStore) SelectOne(id string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return &order, nil
}

// SelectByMember returns all orders of one member, newest first.
func (s *MockOrderStore) SelectByMember(memberID string) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var orders []models.Order
	for _, o := range s.orders {
		if o.MemberID == memberID {
			orders = append(orders, o)
		}
	}
	sortNewestFirst(orders)
	return orders, nil
}

// SelectPage returns a newest-first page and the total count.
func (s *MockOrderStore) SelectPage(offset, limit int) ([]models.Order, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		o.ReceiptURL = "" // the list read omits receipts
		all = append(all, o)
	}
	sortNewestFirst(all)
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// Update applies a partial field update to one order. Only the mutable
// lifecycle fields are recognized.
func (s *MockOrderStore) Update(id string, fields map[string]interface{}) error {
	s.mu.Lock()
	order, ok := s.orders[id]
	if !ok {
		s.mu.Unlock()
		return ErrOrderNotFound
	}
	for k, v := range fields {
		str, _ := v.(string)
		switch k {
		case "status":
			order.Status = str
		case "rejection_reason":
			order.RejectionReason = str
		case "rejection_message":
			order.RejectionMessage = str
		case "approval_message":
			order.ApprovalMessage = str
		case "invoice_number":
			order.InvoiceNumber = str
		}
	}
	order.UpdatedAt = time.Now()
	s.orders[id] = order
	events := s.events
	s.mu.Unlock()

	if events != nil {
		_ = events.PublishOrderChange(models.OrderChange{Kind: models.ChangeUpdate, OrderID: id, At: order.UpdatedAt})
	}
	return nil
}

// Delete removes an order outright. The storefront never deletes orders; this
// exists so tests can simulate a vanished row.
func (s *MockOrderStore) Delete(id string) {
	s.mu.Lock()
	delete(s.orders, id)
	events := s.events
	s.mu.Unlock()

	if events != nil {
		_ = events.PublishOrderChange(models.OrderChange{Kind: models.ChangeDelete, OrderID: id, At: time.Now()})
	}
}

func sortNewestFirst(orders []models.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
