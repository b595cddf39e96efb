package repositories

import (
	"errors"

	"topup/internal/models"
)

// ErrProductNotFound signals a missing product or variation.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines the interface for catalog data access.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	GetVariation(id string) (*models.Variation, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
}
