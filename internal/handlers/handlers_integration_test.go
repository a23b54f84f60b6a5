package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"comerciotech/internal/handlers"
	"comerciotech/internal/middleware"
	"comerciotech/internal/models"
	"comerciotech/internal/repositories"
	"comerciotech/internal/services"
)

// setupApp wires handlers against an in-memory database, mirroring the
// production wiring minus RabbitMQ and the auth guard.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Customer{}, &models.Product{}, &models.Order{}, &models.LineItem{}, &models.User{}))

	customerRepo := repositories.NewGORMCustomerRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	customerService := services.NewCustomerService(customerRepo, orderRepo)
	productService := services.NewProductService(productRepo)
	orderService := services.NewOrderService(orderRepo, customerRepo, nil)
	authService := services.NewAuthService(userRepo, "integration-test-secret")

	app := fiber.New()
	handlers.NewAuthHandler(authService).RegisterRoutes(app)
	handlers.NewCustomerHandler(customerService).RegisterRoutes(app)
	handlers.NewProductHandler(productService).RegisterRoutes(app)
	handlers.NewOrderHandler(orderService).RegisterRoutes(app)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var decoded map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func createCustomer(t *testing.T, app *fiber.App, code string) string {
	t.Helper()
	resp, body := doJSON(t, app, "POST", "/customers/", map[string]interface{}{
		"firstName": "Ana",
		"lastName":  "Torres",
		"code":      code,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func orderPayload(customerRef, code string) map[string]interface{} {
	return map[string]interface{}{
		"customerRef": customerRef,
		"orderCode":   code,
		"lineItems": []map[string]interface{}{
			{"productRef": "prod-1", "name": "Laptop", "quantity": 2, "unitPrice": 1200.0, "totalPurchased": 2400.0},
			{"productRef": "prod-2", "name": "Mouse", "quantity": 1, "unitPrice": 25.0, "totalPurchased": 25.0},
		},
	}
}

func TestOrderLifecycle(t *testing.T) {
	app := setupApp(t)
	customerID := createCustomer(t, app, "C001")

	resp, created := doJSON(t, app, "POST", "/orders/", orderPayload(customerID, "PED-001"))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	orderID, _ := created["id"].(string)
	require.NotEmpty(t, orderID)
	assert.Equal(t, 2425.0, created["orderTotal"])
	assert.NotEmpty(t, created["placedAt"])

	resp, fetched := doJSON(t, app, "GET", "/orders/"+orderID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "PED-001", fetched["orderCode"])
	assert.Len(t, fetched["lineItems"], 2)

	// Resubmitting with one line replaces the whole aggregate.
	update := orderPayload(customerID, "PED-001")
	update["lineItems"] = update["lineItems"].([]map[string]interface{})[:1]
	resp, updated := doJSON(t, app, "PUT", "/orders/"+orderID, update)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 2400.0, updated["orderTotal"])
	assert.Len(t, updated["lineItems"], 1)

	resp, fetched = doJSON(t, app, "GET", "/orders/"+orderID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, fetched["lineItems"], 1)
	assert.NotEmpty(t, fetched["placedAt"])

	resp, _ = doJSON(t, app, "DELETE", "/orders/"+orderID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, "GET", "/orders/"+orderID, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestOrderCreateRejections(t *testing.T) {
	app := setupApp(t)
	customerID := createCustomer(t, app, "C001")

	// Unknown customer reference.
	resp, _ := doJSON(t, app, "POST", "/orders/", orderPayload("no-such-customer", "PED-010"))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// Duplicate order code.
	resp, _ = doJSON(t, app, "POST", "/orders/", orderPayload(customerID, "PED-011"))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp, body := doJSON(t, app, "POST", "/orders/", orderPayload(customerID, "PED-011"))
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Contains(t, body["error"], "already exists")

	// No line items.
	empty := orderPayload(customerID, "PED-012")
	empty["lineItems"] = []map[string]interface{}{}
	resp, _ = doJSON(t, app, "POST", "/orders/", empty)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// Payload validation happens before the service is consulted.
	invalid := orderPayload(customerID, "")
	resp, body = doJSON(t, app, "POST", "/orders/", invalid)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Validation failed", body["message"])
}

func TestCustomerDeleteGuard(t *testing.T) {
	app := setupApp(t)
	customerID := createCustomer(t, app, "C001")

	resp, created := doJSON(t, app, "POST", "/orders/", orderPayload(customerID, "PED-020"))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	orderID := created["id"].(string)

	resp, body := doJSON(t, app, "DELETE", "/customers/"+customerID, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "cannot be deleted")

	resp, _ = doJSON(t, app, "DELETE", "/orders/"+orderID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, "DELETE", "/customers/"+customerID, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestCustomerDuplicateCode(t *testing.T) {
	app := setupApp(t)
	createCustomer(t, app, "C001")

	resp, body := doJSON(t, app, "POST", "/customers/", map[string]interface{}{
		"firstName": "Luis",
		"lastName":  "Romero",
		"code":      "C001",
	})
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Contains(t, body["error"], "already exists")
}

func TestProductEndpoints(t *testing.T) {
	app := setupApp(t)

	resp, created := doJSON(t, app, "POST", "/products/", map[string]interface{}{
		"name":     "Keyboard",
		"category": "electronics",
		"price":    75.0,
		"stock":    25,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	productID := created["id"].(string)

	// A non-positive price is rejected.
	resp, _ = doJSON(t, app, "POST", "/products/", map[string]interface{}{
		"name":     "Broken",
		"category": "electronics",
		"price":    0.0,
		"stock":    1,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, fetched := doJSON(t, app, "GET", "/products/"+productID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Keyboard", fetched["name"])

	resp, _ = doJSON(t, app, "DELETE", "/products/"+productID, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp, _ = doJSON(t, app, "GET", "/products/"+productID, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAuthGuardedRoutes(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Customer{}, &models.Product{}, &models.Order{}, &models.LineItem{}, &models.User{}))

	customerRepo := repositories.NewGORMCustomerRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)
	authService := services.NewAuthService(userRepo, "integration-test-secret")

	app := fiber.New()
	handlers.NewAuthHandler(authService).RegisterRoutes(app)
	guarded := app.Group("", middleware.AuthRequired(authService))
	handlers.NewCustomerHandler(services.NewCustomerService(customerRepo, orderRepo)).RegisterRoutes(guarded)

	// No token.
	resp, _ := doJSON(t, app, "GET", "/customers/", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, app, "POST", "/auth/register", map[string]interface{}{
		"username": "operator",
		"email":    "op@example.com",
		"password": "s3cret1",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, app, "POST", "/auth/login", map[string]interface{}{
		"username": "operator",
		"password": "s3cret1",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	req := httptest.NewRequest("GET", "/customers/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	authed, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, authed.StatusCode)
}
