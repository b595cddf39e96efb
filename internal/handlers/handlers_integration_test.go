package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"topup/internal/handlers"
	"topup/internal/middleware"
	"topup/internal/models"
	"topup/internal/repositories"
	"topup/internal/services"
	"topup/internal/storefront"
	"topup/pkg/upload"
)

const testJWTSecret = "test-secret"

// newTestApp wires the full HTTP surface over an in-memory SQLite database,
// seeded with one product, one payment method, an admin and a member account.
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.Product{}, &models.Variation{}, &models.PaymentMethod{}, &models.User{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	orderStore := repositories.NewGORMOrderStore(db, nil)
	productRepo := repositories.NewGORMProductRepository(db)
	paymentRepo := repositories.NewGORMPaymentMethodRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	orderService := services.NewOrderService(orderStore)
	catalogService := services.NewCatalogService(productRepo, paymentRepo)
	authService := services.NewAuthService(userRepo, testJWTSecret)

	memberPrice := decimal.NewFromInt(95)
	if err := productRepo.Create(&models.Product{
		ID:          "ml",
		Name:        "Mobile Legends",
		FieldLabels: models.StringList{"Player ID", "Server"},
		Variations: []models.Variation{
			{ID: "ml-86", Name: "86 Diamonds", BasePrice: decimal.NewFromInt(100), MemberPrice: &memberPrice},
		},
	}); err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	if err := paymentRepo.Create(&models.PaymentMethod{ID: "gcash", DisplayName: "GCash", Enabled: true}); err != nil {
		t.Fatalf("failed to seed payment method: %v", err)
	}
	for _, u := range []models.User{
		{Username: "admin", Email: "admin@example.com", Password: "admin-pass", Role: models.RoleAdmin},
		{Username: "alice", Email: "alice@example.com", Password: "alice-pass", Role: models.RoleMember},
	} {
		user := u
		if err := authService.RegisterUser(&user); err != nil {
			t.Fatalf("failed to seed user %s: %v", u.Username, err)
		}
	}

	uploads, err := upload.NewDiskService(t.TempDir(), "/receipts")
	if err != nil {
		t.Fatalf("failed to init receipt storage: %v", err)
	}

	operatorOrders := storefront.NewOrderRepository(orderStore, orderService, storefront.RepositoryOptions{OperatorView: true})
	customerOrders := storefront.NewOrderRepository(orderStore, orderService, storefront.RepositoryOptions{})

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1)
	handlers.NewReceiptHandler(uploads).RegisterRoutes(apiV1)

	public := apiV1.Group("", middleware.OptionalAuth(authService))
	member := apiV1.Group("", middleware.AuthRequired(authService))
	admin := apiV1.Group("/admin", middleware.AuthRequired(authService), middleware.RoleRequired(models.RoleAdmin))

	handlers.NewCatalogHandler(catalogService).RegisterRoutes(public, admin)
	handlers.NewOrderHandler(customerOrders, operatorOrders, orderService, productRepo, paymentRepo).RegisterRoutes(public, member, admin)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

func login(t *testing.T, app *fiber.App, username, password string) string {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"username": username,
		"password": password,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Token string `json:"token"`
	}
	decodeBody(t, resp, &body)
	assert.NotEmpty(t, body.Token)
	return body.Token
}

func placeOrder(t *testing.T, app *fiber.App, token string, quantity int) models.Order {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/v1/orders", token, fiber.Map{
		"accounts": []fiber.Map{
			{
				"game":         "Mobile Legends",
				"fields":       map[string]string{"Player ID": "12345", "Server": "Asia"},
				"variation_id": "ml-86",
				"quantity":     quantity,
			},
		},
		"payment_method_id": "gcash",
		"receipt_url":       "/receipts/proof.jpg",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var order models.Order
	decodeBody(t, resp, &order)
	assert.NotEmpty(t, order.ID)
	return order
}

func TestPlaceAndReadOrderAnonymously(t *testing.T) {
	app := newTestApp(t)

	order := placeOrder(t, app, "", 2)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Len(t, order.Items, 2)
	assert.True(t, order.TotalPrice.Equal(decimal.NewFromInt(200)))

	resp := doJSON(t, app, http.MethodGet, "/api/v1/orders/"+order.ID, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched models.Order
	decodeBody(t, resp, &fetched)
	assert.Equal(t, order.ID, fetched.ID)
	assert.Equal(t, models.StatusPending, fetched.Status)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/orders/no-such-order", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestMemberPlacementUsesTierPriceAndOrderHistory(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, "alice", "alice-pass")

	order := placeOrder(t, app, token, 1)
	assert.True(t, order.TotalPrice.Equal(decimal.NewFromInt(95)), "member tier override price")
	assert.NotEmpty(t, order.MemberID)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/orders", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var mine []models.Order
	decodeBody(t, resp, &mine)
	assert.Len(t, mine, 1)
	assert.Equal(t, order.ID, mine[0].ID)
}

func TestOperatorApprovalFlow(t *testing.T) {
	app := newTestApp(t)
	order := placeOrder(t, app, "", 1)
	token := login(t, app, "admin", "admin-pass")

	resp := doJSON(t, app, http.MethodGet, "/api/v1/admin/orders?page=1", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Orders     []models.Order `json:"orders"`
		Total      int64          `json:"total"`
		Page       int            `json:"page"`
		TotalPages int            `json:"total_pages"`
	}
	decodeBody(t, resp, &list)
	assert.Equal(t, int64(1), list.Total)
	assert.Len(t, list.Orders, 1)
	assert.Equal(t, order.ID, list.Orders[0].ID)
	assert.Empty(t, list.Orders[0].ReceiptURL, "the list read omits the receipt")

	resp = doJSON(t, app, http.MethodPatch, "/api/v1/admin/orders/"+order.ID+"/status", token, fiber.Map{
		"status":  models.StatusApproved,
		"message": "Credits delivered",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/v1/orders/"+order.ID, "", nil)
	var approved models.Order
	decodeBody(t, resp, &approved)
	assert.Equal(t, models.StatusApproved, approved.Status)
	assert.Equal(t, "Credits delivered", approved.ApprovalMessage)

	// Terminal states are sticky, also over HTTP.
	resp = doJSON(t, app, http.MethodPatch, "/api/v1/admin/orders/"+order.ID+"/status", token, fiber.Map{
		"status": models.StatusRejected,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestOperatorStatusValidation(t *testing.T) {
	app := newTestApp(t)
	order := placeOrder(t, app, "", 1)
	token := login(t, app, "admin", "admin-pass")

	resp := doJSON(t, app, http.MethodPatch, "/api/v1/admin/orders/"+order.ID+"/status", token, fiber.Map{
		"status": "shipped",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPatch, "/api/v1/admin/orders/no-such-order/status", token, fiber.Map{
		"status": models.StatusApproved,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/admin/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	memberToken := login(t, app, "alice", "alice-pass")
	resp = doJSON(t, app, http.MethodGet, "/api/v1/admin/orders", memberToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestReceiptUploadRoute(t *testing.T) {
	app := newTestApp(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("receipt", "proof.png")
	if err != nil {
		t.Fatalf("failed to build multipart body: %v", err)
	}
	if _, err := part.Write([]byte("png-bytes")); err != nil {
		t.Fatalf("failed to write multipart body: %v", err)
	}
	writer.Close()

	req, err := http.NewRequest(http.MethodPost, "/api/v1/receipts", &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("upload request failed: %v", err)
	}
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var body struct {
		ReceiptURL string `json:"receipt_url"`
	}
	decodeBody(t, resp, &body)
	assert.True(t, strings.HasPrefix(body.ReceiptURL, "/receipts/"))
}

func TestCatalogRoutes(t *testing.T) {
	app := newTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/products", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var products []models.Product
	decodeBody(t, resp, &products)
	assert.Len(t, products, 1)
	assert.Len(t, products[0].Variations, 1)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/payment-methods", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var methods []models.PaymentMethod
	decodeBody(t, resp, &methods)
	assert.Len(t, methods, 1)
	assert.Equal(t, "GCash", methods[0].DisplayName)
}
