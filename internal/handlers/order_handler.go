package handlers

import (
	"errors"
	"log"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"topup/internal/repositories"
	"topup/internal/services"
	"topup/internal/storefront"
)

// OrderHandler handles order placement, status reads and the operator order
// list. The operator list is served from the storefront repository's live
// page cache, which the poll/push reconciliation keeps fresh in the
// background.
type OrderHandler struct {
	customerOrders *storefront.OrderRepository
	operatorOrders *storefront.OrderRepository
	orderService   *services.OrderService
	products       repositories.ProductRepository
	payments       repositories.PaymentMethodRepository
	validate       *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(customerOrders, operatorOrders *storefront.OrderRepository, orderService *services.OrderService, products repositories.ProductRepository, payments repositories.PaymentMethodRepository) *OrderHandler {
	return &OrderHandler{
		customerOrders: customerOrders,
		operatorOrders: operatorOrders,
		orderService:   orderService,
		products:       products,
		payments:       payments,
		validate:       validator.New(),
	}
}

// RegisterRoutes registers customer order routes on router (anonymous
// placement allowed), member routes on member, and operator routes on admin.
func (h *OrderHandler) RegisterRoutes(router, member, admin fiber.Router) {
	router.Post("/orders", h.HandlePlaceOrder)
	router.Get("/orders/:id", h.HandleGetOrder)

	member.Get("/orders", h.HandleGetMyOrders)

	admin.Get("/orders", h.HandleListOrders)
	admin.Patch("/orders/:id/status", h.HandleUpdateOrderStatus)
}

type placeOrderAccount struct {
	Game        string            `json:"game"`
	Fields      map[string]string `json:"fields"`
	VariationID string            `json:"variation_id" validate:"required"`
	Quantity    int               `json:"quantity" validate:"required,min=1"`
	AddOnIDs    []string          `json:"add_on_ids"`
}

type placeOrderRequest struct {
	Accounts        []placeOrderAccount `json:"accounts" validate:"required,min=1,dive"`
	PaymentMethodID string              `json:"payment_method_id" validate:"required"`
	ReceiptURL      string              `json:"receipt_url" validate:"required"`
}

// HandlePlaceOrder assembles a placement flow from the request and submits
// it. The viewer tier comes from the optional auth locals; anonymous
// visitors price at the base/discount tier.
func (h *OrderHandler) HandlePlaceOrder(c *fiber.Ctx) error {
	var req placeOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	flow := storefront.NewPlacementFlow(h.customerOrders, h.products, h.payments, nil, nil)
	role, _ := c.Locals("role").(string)
	memberID, _ := c.Locals("user_id").(string)
	flow.SetViewer(role, memberID)

	for _, acc := range req.Accounts {
		idx := flow.AddAccount(acc.Game, acc.Fields)
		if err := flow.AssignPackage(idx, acc.VariationID, acc.Quantity, acc.AddOnIDs); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid package selection",
				"error":   err.Error(),
			})
		}
	}
	if err := flow.SelectPaymentMethod(req.PaymentMethodID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid payment method",
			"error":   err.Error(),
		})
	}
	if err := flow.AttachReceipt(req.ReceiptURL); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid receipt",
			"error":   err.Error(),
		})
	}

	order, err := flow.Submit()
	if err != nil {
		if errors.Is(err, storefront.ErrNotSubmittable) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Order is not ready to submit",
				"error":   err.Error(),
			})
		}
		log.Printf("Error placing order: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not place order",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleGetOrder returns the full order record; the status dialog polls
// this route.
func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	order, err := h.customerOrders.FetchOne(c.Params("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Order not found",
			})
		}
		log.Printf("Error getting order: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve order",
		})
	}
	return c.JSON(order)
}

// HandleGetMyOrders returns the authenticated member's orders.
func (h *OrderHandler) HandleGetMyOrders(c *fiber.Ctx) error {
	memberID, _ := c.Locals("user_id").(string)
	orders, err := h.orderService.GetMemberOrders(memberID)
	if err != nil {
		log.Printf("Error getting member orders: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve orders",
		})
	}
	return c.JSON(orders)
}

// HandleListOrders serves the operator order list from the live page cache.
// An explicit page query triggers a fresh fetch; its failure is surfaced,
// unlike background refreshes.
func (h *OrderHandler) HandleListOrders(c *fiber.Ctx) error {
	if pageParam := c.Query("page"); pageParam != "" {
		page, err := strconv.Atoi(pageParam)
		if err != nil || page < 1 {
			page = 1
		}
		if max := h.operatorOrders.TotalPages(); page > max {
			page = max
		}
		if err := h.operatorOrders.FetchPage(page); err != nil {
			log.Printf("Error fetching order page %d: %v", page, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not retrieve orders",
				"error":   err.Error(),
			})
		}
	}
	orders, total, page := h.operatorOrders.Current()
	return c.JSON(fiber.Map{
		"orders":      orders,
		"total":       total,
		"page":        page,
		"total_pages": h.operatorOrders.TotalPages(),
	})
}

// HandleUpdateOrderStatus applies an operator approve/reject/processing
// transition. The free-form field becomes the rejection reason or the
// approval message depending on the target status.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var req struct {
		Status  string `json:"status" validate:"required,oneof=pending processing approved rejected"`
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	orderID := c.Params("id")
	if err := h.operatorOrders.UpdateStatus(orderID, req.Status, req.Message); err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Order not found",
			})
		}
		log.Printf("Error updating order %s status: %v", orderID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not update order status",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Order " + orderID + " status updated to " + req.Status,
	})
}
