package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"comerciotech/internal/models"
	"comerciotech/internal/repositories"
)

// EventPublisher publishes order lifecycle events to a message broker.
// A nil publisher disables publication.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

const orderExchange = "orders"

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo    repositories.OrderRepository
	customerRepo repositories.CustomerRepository
	publisher    EventPublisher
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository, customerRepo repositories.CustomerRepository, publisher EventPublisher) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		publisher:    publisher,
	}
}

// GetAllOrders retrieves all orders.
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

// CreateOrder validates and persists a new order. The referenced
// customer must exist, the order code must be unused, and at least one
// line item is required. Missing order total and order date are
// defaulted: the total to the sum of the line totals, the date to now.
func (s *OrderService) CreateOrder(order *models.Order) error {
	if _, err := s.customerRepo.GetByID(order.CustomerRef); err != nil {
		return fmt.Errorf("customer %s not found", order.CustomerRef)
	}
	if existing, err := s.orderRepo.GetByCode(order.OrderCode); err == nil && existing != nil {
		return fmt.Errorf("an order with code %s already exists", order.OrderCode)
	}
	if len(order.LineItems) == 0 {
		return fmt.Errorf("an order must include at least one line item")
	}

	if order.OrderTotal == 0 {
		order.OrderTotal = sumLineTotals(order.LineItems)
	}
	if order.PlacedAt.IsZero() {
		order.PlacedAt = time.Now().UTC()
	}

	if err := s.orderRepo.Create(order); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	s.publishOrderEvent("order.created", order)
	return nil
}

// UpdateOrder replaces the order with the given ID, line items
// included. A changed customer reference must point at an existing
// customer; a changed order code must stay unique.
func (s *OrderService) UpdateOrder(id string, order *models.Order) error {
	existing, err := s.orderRepo.GetByID(id)
	if err != nil {
		return err
	}

	if order.CustomerRef != existing.CustomerRef {
		if _, err := s.customerRepo.GetByID(order.CustomerRef); err != nil {
			return fmt.Errorf("customer %s not found", order.CustomerRef)
		}
	}
	if order.OrderCode != existing.OrderCode {
		if conflict, err := s.orderRepo.GetByCode(order.OrderCode); err == nil && conflict != nil && conflict.ID != id {
			return fmt.Errorf("an order with code %s already exists", order.OrderCode)
		}
	}

	order.ID = id
	if order.OrderTotal == 0 {
		order.OrderTotal = sumLineTotals(order.LineItems)
	}
	if order.PlacedAt.IsZero() {
		order.PlacedAt = existing.PlacedAt
	}

	if err := s.orderRepo.Update(order); err != nil {
		return fmt.Errorf("failed to update order %s: %w", id, err)
	}

	s.publishOrderEvent("order.updated", order)
	return nil
}

// DeleteOrder removes an order by its ID.
func (s *OrderService) DeleteOrder(id string) error {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.orderRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete order %s: %w", id, err)
	}

	s.publishOrderEvent("order.deleted", order)
	return nil
}

func sumLineTotals(items []models.LineItem) float64 {
	var total float64
	for _, item := range items {
		total += item.TotalPurchased
	}
	return total
}

// publishOrderEvent sends an event to the broker. Publication failure
// is logged and never fails the mutation that triggered it.
func (s *OrderService) publishOrderEvent(routingKey string, order *models.Order) {
	if s.publisher == nil {
		return
	}

	event := map[string]interface{}{
		"orderID":     order.ID,
		"orderCode":   order.OrderCode,
		"customerRef": order.CustomerRef,
		"orderTotal":  order.OrderTotal,
		"lineItems":   len(order.LineItems),
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal %s event for order %s: %v", routingKey, order.ID, err)
		return
	}
	if err := s.publisher.Publish(orderExchange, routingKey, body); err != nil {
		log.Printf("Warning: failed to publish %s event for order %s: %v", routingKey, order.ID, err)
	}
}
