package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"comerciotech/internal/models"
)

// Client talks JSON over HTTP to the ComercioTech service. It
// implements OrderAPI, CustomerAPI and ProductAPI.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// NewClient creates a Client for the service at baseURL. An empty
// token disables the Authorization header.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpc:   &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken replaces the bearer token attached to subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Login authenticates against the service and stores the issued token
// on the client.
func (c *Client) Login(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return err
	}
	c.token = resp.Token
	return nil
}

// do performs one JSON round trip. A non-2xx status is decoded into an
// *APIError using the service's error body shape.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var errBody struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errBody); decodeErr == nil {
			apiErr.Message = errBody.Error
			if apiErr.Message == "" {
				apiErr.Message = errBody.Message
			}
		}
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}

// --- Orders ---

func (c *Client) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := c.do(ctx, http.MethodGet, "/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) CreateOrder(ctx context.Context, order models.Order) error {
	return c.do(ctx, http.MethodPost, "/orders", order, nil)
}

func (c *Client) UpdateOrder(ctx context.Context, id string, order models.Order) error {
	return c.do(ctx, http.MethodPut, "/orders/"+id, order, nil)
}

func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/orders/"+id, nil, nil)
}

// --- Customers ---

func (c *Client) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	if err := c.do(ctx, http.MethodGet, "/customers", nil, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

func (c *Client) CreateCustomer(ctx context.Context, customer models.Customer) error {
	return c.do(ctx, http.MethodPost, "/customers", customer, nil)
}

func (c *Client) UpdateCustomer(ctx context.Context, id string, customer models.Customer) error {
	return c.do(ctx, http.MethodPut, "/customers/"+id, customer, nil)
}

func (c *Client) DeleteCustomer(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/customers/"+id, nil, nil)
}

// --- Products ---

func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) CreateProduct(ctx context.Context, product models.Product) error {
	return c.do(ctx, http.MethodPost, "/products", product, nil)
}

func (c *Client) UpdateProduct(ctx context.Context, id string, product models.Product) error {
	return c.do(ctx, http.MethodPut, "/products/"+id, product, nil)
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/products/"+id, nil, nil)
}
