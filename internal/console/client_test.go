package console_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"comerciotech/internal/console"
	"comerciotech/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestClient_OrderEndpoints(t *testing.T) {
	var gotMethod, gotPath, gotAuth string
	var gotBody models.Order

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/orders":
			_ = json.NewEncoder(w).Encode([]models.Order{
				{ID: "o-1", CustomerRef: "c-1", OrderCode: "PED-1", LineItems: []models.LineItem{}},
			})
		case r.Method == http.MethodPost && r.URL.Path == "/orders":
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodPut && r.URL.Path == "/orders/o-1":
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodDelete && r.URL.Path == "/orders/o-1":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := console.NewClient(server.URL, "token-123")
	ctx := context.Background()

	orders, err := client.ListOrders(ctx)
	assert.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, "PED-1", orders[0].OrderCode)
	assert.Equal(t, "Bearer token-123", gotAuth)

	order := models.Order{
		CustomerRef: "c-2",
		OrderCode:   "PED-2",
		LineItems:   []models.LineItem{{ProductRef: "p-1", Quantity: 2, UnitPrice: 10, TotalPurchased: 20}},
	}
	assert.NoError(t, client.CreateOrder(ctx, order))
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/orders", gotPath)
	assert.Equal(t, "PED-2", gotBody.OrderCode)
	assert.Len(t, gotBody.LineItems, 1)

	assert.NoError(t, client.UpdateOrder(ctx, "o-1", order))
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/orders/o-1", gotPath)

	assert.NoError(t, client.DeleteOrder(ctx, "o-1"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/orders/o-1", gotPath)
}

func TestClient_DecodesServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"message": "Could not create order",
			"error":   "an order with code PED-1 already exists",
		})
	}))
	defer server.Close()

	client := console.NewClient(server.URL, "")
	err := client.CreateOrder(context.Background(), models.Order{OrderCode: "PED-1"})

	var apiErr *console.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Contains(t, apiErr.Message, "already exists")
}

func TestClient_Login(t *testing.T) {
	var loginBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			_ = json.NewDecoder(r.Body).Decode(&loginBody)
			_ = json.NewEncoder(w).Encode(map[string]string{"token": "issued-token"})
		case "/orders":
			if r.Header.Get("Authorization") != "Bearer issued-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode([]models.Order{})
		}
	}))
	defer server.Close()

	client := console.NewClient(server.URL, "")
	ctx := context.Background()

	assert.NoError(t, client.Login(ctx, "admin", "secret123"))
	assert.Equal(t, "admin", loginBody["username"])

	// The issued token is attached to subsequent requests.
	_, err := client.ListOrders(ctx)
	assert.NoError(t, err)
}
