package repositories

import (
	"errors"

	"topup/internal/models"
)

// ErrOrderNotFound signals an expected absent row, not a store failure.
var ErrOrderNotFound = errors.New("order not found")

// OrderStore is the remote order table contract: insert, point lookups,
// newest-first pages and partial updates. Implementations assign ids and
// timestamps on insert.
type OrderStore interface {
	Insert(order *models.Order) error
	SelectOne(id string) (*models.Order, error)
	SelectByMember(memberID string) ([]models.Order, error)
	// SelectPage returns a newest-first slice and the table-wide total count.
	// Page reads omit receipt_url; SelectOne returns the full record.
	SelectPage(offset, limit int) ([]models.Order, int64, error)
	Update(id string, fields map[string]interface{}) error
}

// ChangePublisher receives a notification after every order-table write.
type ChangePublisher interface {
	PublishOrderChange(change models.OrderChange) error
}
