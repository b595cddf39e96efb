package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"topup/internal/models"
	"topup/internal/repositories"
	"topup/internal/services"
)

// CatalogHandler handles the product and payment-method catalog routes.
type CatalogHandler struct {
	service *services.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// RegisterRoutes registers public catalog reads on router and catalog
// management on admin.
func (h *CatalogHandler) RegisterRoutes(router, admin fiber.Router) {
	router.Get("/products", h.HandleGetProducts)
	router.Get("/products/:id", h.HandleGetProductByID)
	router.Get("/payment-methods", h.HandleGetPaymentMethods)

	admin.Post("/products", h.HandleCreateProduct)
	admin.Put("/products/:id", h.HandleUpdateProduct)
	admin.Delete("/products/:id", h.HandleDeleteProduct)
	admin.Post("/payment-methods", h.HandleCreatePaymentMethod)
	admin.Put("/payment-methods/:id", h.HandleUpdatePaymentMethod)
}

// HandleGetProducts returns all products with their variations.
func (h *CatalogHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts()
	if err != nil {
		log.Printf("Error getting products: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve products",
		})
	}
	return c.JSON(products)
}

// HandleGetProductByID returns a single product.
func (h *CatalogHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.Params("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Product not found",
			})
		}
		log.Printf("Error getting product: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve product",
		})
	}
	return c.JSON(product)
}

// HandleGetPaymentMethods returns all enabled payment methods.
func (h *CatalogHandler) HandleGetPaymentMethods(c *fiber.Ctx) error {
	methods, err := h.service.GetPaymentMethods()
	if err != nil {
		log.Printf("Error getting payment methods: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve payment methods",
		})
	}
	return c.JSON(methods)
}

// HandleCreateProduct creates a new product.
func (h *CatalogHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.service.CreateProduct(&product); err != nil {
		log.Printf("Error creating product: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not create product",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct updates an existing product.
func (h *CatalogHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	product.ID = c.Params("id")
	if err := h.service.UpdateProduct(&product); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Product not found",
			})
		}
		log.Printf("Error updating product: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not update product",
			"error":   err.Error(),
		})
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product.
func (h *CatalogHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.Params("id")); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Product not found",
			})
		}
		log.Printf("Error deleting product: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete product",
		})
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// HandleCreatePaymentMethod creates a new payment method.
func (h *CatalogHandler) HandleCreatePaymentMethod(c *fiber.Ctx) error {
	var method models.PaymentMethod
	if err := c.BodyParser(&method); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.service.CreatePaymentMethod(&method); err != nil {
		log.Printf("Error creating payment method: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not create payment method",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(method)
}

// HandleUpdatePaymentMethod updates an existing payment method.
func (h *CatalogHandler) HandleUpdatePaymentMethod(c *fiber.Ctx) error {
	var method models.PaymentMethod
	if err := c.BodyParser(&method); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	method.ID = c.Params("id")
	if err := h.service.UpdatePaymentMethod(&method); err != nil {
		if errors.Is(err, repositories.ErrPaymentMethodNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Payment method not found",
			})
		}
		log.Printf("Error updating payment method: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not update payment method",
			"error":   err.Error(),
		})
	}
	return c.JSON(method)
}
