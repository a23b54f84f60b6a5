package console

import (
	"context"
	"fmt"

	"comerciotech/internal/models"
)

// OrderAPI is the slice of the remote service contract the order
// screens depend on. The concrete implementation is Client; tests
// substitute mocks.
type OrderAPI interface {
	ListOrders(ctx context.Context) ([]models.Order, error)
	CreateOrder(ctx context.Context, order models.Order) error
	UpdateOrder(ctx context.Context, id string, order models.Order) error
	DeleteOrder(ctx context.Context, id string) error
}

// CustomerAPI covers the flat customer CRUD screen.
type CustomerAPI interface {
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	CreateCustomer(ctx context.Context, customer models.Customer) error
	UpdateCustomer(ctx context.Context, id string, customer models.Customer) error
	DeleteCustomer(ctx context.Context, id string) error
}

// ProductAPI covers the flat product CRUD screen.
type ProductAPI interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	CreateProduct(ctx context.Context, product models.Product) error
	UpdateProduct(ctx context.Context, id string, product models.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// APIError is a non-success response from the remote service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote service returned status %d", e.Status)
	}
	return fmt.Sprintf("remote service returned status %d: %s", e.Status, e.Message)
}
