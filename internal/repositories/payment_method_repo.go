package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"topup/internal/models"
)

// ErrPaymentMethodNotFound signals a missing payment method.
var ErrPaymentMethodNotFound = errors.New("payment method not found")

// PaymentMethodRepository defines the interface for payment-method lookups.
type PaymentMethodRepository interface {
	GetAll() ([]models.PaymentMethod, error)
	GetByID(id string) (*models.PaymentMethod, error)
	Create(method *models.PaymentMethod) error
	Update(method *models.PaymentMethod) error
}

// GORMPaymentMethodRepository is a GORM implementation of PaymentMethodRepository.
type GORMPaymentMethodRepository struct {
	db *gorm.DB
}

// NewGORMPaymentMethodRepository creates a new GORMPaymentMethodRepository.
func NewGORMPaymentMethodRepository(db *gorm.DB) *GORMPaymentMethodRepository {
	return &GORMPaymentMethodRepository{db: db}
}

// GetAll retrieves all enabled payment methods.
func (r *GORMPaymentMethodRepository) GetAll() ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	if err := r.db.Where("enabled = ?", true).Find(&methods).Error; err != nil {
		return nil, fmt.Errorf("failed to get payment methods: %w", err)
	}
	return methods, nil
}

// GetByID retrieves a single payment method by its ID.
func (r *GORMPaymentMethodRepository) GetByID(id string) (*models.PaymentMethod, error) {
	var method models.PaymentMethod
	if err := r.db.First(&method, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrPaymentMethodNotFound
		}
		return nil, fmt.Errorf("failed to get payment method by ID %s: %w", id, err)
	}
	return &method, nil
}

// Create creates a new payment method.
func (r *GORMPaymentMethodRepository) Create(method *models.PaymentMethod) error {
	if method.ID == "" {
		method.ID = uuid.New().String()
	}
	if err := r.db.Create(method).Error; err != nil {
		return fmt.Errorf("failed to create payment method: %w", err)
	}
	return nil
}

// Update updates an existing payment method.
func (r *GORMPaymentMethodRepository) Update(method *models.PaymentMethod) error {
	res := r.db.Save(method)
	if res.Error != nil {
		return fmt.Errorf("failed to update payment method: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrPaymentMethodNotFound
	}
	return nil
}
