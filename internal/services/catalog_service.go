package services

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"topup/internal/models"
	"topup/internal/repositories"
)

// CatalogService handles the product and payment-method catalog.
type CatalogService struct {
	products repositories.ProductRepository
	payments repositories.PaymentMethodRepository
	validate *validator.Validate
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(products repositories.ProductRepository, payments repositories.PaymentMethodRepository) *CatalogService {
	return &CatalogService{
		products: products,
		payments: payments,
		validate: validator.New(),
	}
}

// GetAllProducts retrieves all products with their variations.
func (s *CatalogService) GetAllProducts() ([]models.Product, error) {
	return s.products.GetAll()
}

// GetProductByID retrieves a single product.
func (s *CatalogService) GetProductByID(id string) (*models.Product, error) {
	return s.products.GetByID(id)
}

// CreateProduct validates and creates a new product.
func (s *CatalogService) CreateProduct(product *models.Product) error {
	if err := s.validate.Struct(product); err != nil {
		return fmt.Errorf("invalid product: %w", err)
	}
	return s.products.Create(product)
}

// UpdateProduct validates and updates an existing product.
func (s *CatalogService) UpdateProduct(product *models.Product) error {
	if err := s.validate.Struct(product); err != nil {
		return fmt.Errorf("invalid product: %w", err)
	}
	return s.products.Update(product)
}

// DeleteProduct deletes a product by its ID.
func (s *CatalogService) DeleteProduct(id string) error {
	return s.products.Delete(id)
}

// GetPaymentMethods retrieves all enabled payment methods.
func (s *CatalogService) GetPaymentMethods() ([]models.PaymentMethod, error) {
	return s.payments.GetAll()
}

// CreatePaymentMethod validates and creates a new payment method.
func (s *CatalogService) CreatePaymentMethod(method *models.PaymentMethod) error {
	if err := s.validate.Struct(method); err != nil {
		return fmt.Errorf("invalid payment method: %w", err)
	}
	return s.payments.Create(method)
}

// UpdatePaymentMethod validates and updates an existing payment method.
func (s *CatalogService) UpdatePaymentMethod(method *models.PaymentMethod) error {
	if err := s.validate.Struct(method); err != nil {
		return fmt.Errorf("invalid payment method: %w", err)
	}
	return s.payments.Update(method)
}
