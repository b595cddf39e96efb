package repositories

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"topup/internal/models"
)

// GORMOrderStore is a GORM implementation of OrderStore. When a change
// publisher is attached, every successful write emits a table-wide change
// notification; publish failures are logged, never propagated, since the
// polling path guarantees eventual freshness anyway.
type GORMOrderStore struct {
	db     *gorm.DB
	events ChangePublisher
}

// NewGORMOrderStore creates a new GORMOrderStore. events may be nil.
func NewGORMOrderStore(db *gorm.DB, events ChangePublisher) *GORMOrderStore {
	return &GORMOrderStore{db: db, events: events}
}

// Insert stores a new order, assigning id and timestamps.
func (s *GORMOrderStore) Insert(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	if err := s.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	s.notify(models.ChangeInsert, order.ID)
	return nil
}

// SelectOne returns the full order record, including receipt_url.
func (s *GORMOrderStore) SelectOne(id string) (*models.Order, error) {
	var order models.Order
	if err := s.db.First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to select order %s: %w", id, err)
	}
	return &order, nil
}

// SelectByMember returns all orders of one member, newest first.
func (s *GORMOrderStore) SelectByMember(memberID string) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.Where("member_id = ?", memberID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to select orders for member %s: %w", memberID, err)
	}
	return orders, nil
}

// SelectPage returns a newest-first page and the total count. The receipt
// URL is omitted from the lighter list read; SelectOne carries it.
func (s *GORMOrderStore) SelectPage(offset, limit int) ([]models.Order, int64, error) {
	var total int64
	if err := s.db.Model(&models.Order{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}
	var orders []models.Order
	err := s.db.Omit("receipt_url").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to select order page: %w", err)
	}
	return orders, total, nil
}

// Update applies a partial field update to one order.
func (s *GORMOrderStore) Update(id string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	res := s.db.Model(&models.Order{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to update order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	s.notify(models.ChangeUpdate, id)
	return nil
}

func (s *GORMOrderStore) notify(kind, orderID string) {
	if s.events == nil {
		return
	}
	change := models.OrderChange{Kind: kind, OrderID: orderID, At: time.Now()}
	if err := s.events.PublishOrderChange(change); err != nil {
		log.Printf("Warning: failed to publish order change for %s: %v", orderID, err)
	}
}
