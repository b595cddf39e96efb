package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"topup/pkg/upload"
)

// ReceiptHandler accepts proof-of-payment uploads and returns the stable
// URL the placement request carries in receipt_url.
type ReceiptHandler struct {
	uploads upload.Service
}

// NewReceiptHandler creates a new ReceiptHandler.
func NewReceiptHandler(uploads upload.Service) *ReceiptHandler {
	return &ReceiptHandler{uploads: uploads}
}

// RegisterRoutes registers the receipt routes with the Fiber app.
func (h *ReceiptHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/receipts", h.HandleUploadReceipt)
}

// HandleUploadReceipt stores a multipart receipt image.
func (h *ReceiptHandler) HandleUploadReceipt(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("receipt")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "A 'receipt' file is required",
		})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not read uploaded file",
		})
	}
	defer file.Close()

	url, err := h.uploads.Store(fileHeader.Filename, file)
	if err != nil {
		log.Printf("Error storing receipt: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not store receipt",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"receipt_url": url})
}
