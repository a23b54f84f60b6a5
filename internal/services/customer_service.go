package services

import (
	"fmt"
	"time"

	"comerciotech/internal/models"
	"comerciotech/internal/repositories"
)

// CustomerService handles business logic related to customers.
type CustomerService struct {
	customerRepo repositories.CustomerRepository
	orderRepo    repositories.OrderRepository
}

// NewCustomerService creates a new CustomerService.
func NewCustomerService(customerRepo repositories.CustomerRepository, orderRepo repositories.OrderRepository) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
	}
}

// GetAllCustomers retrieves all customers.
func (s *CustomerService) GetAllCustomers() ([]models.Customer, error) {
	return s.customerRepo.GetAll()
}

// GetCustomerByID retrieves a single customer by its ID.
func (s *CustomerService) GetCustomerByID(id string) (*models.Customer, error) {
	return s.customerRepo.GetByID(id)
}

// CreateCustomer persists a new customer. The customer code must be
// unique; a missing registration date defaults to today.
func (s *CustomerService) CreateCustomer(customer *models.Customer) error {
	if existing, err := s.customerRepo.GetByCode(customer.Code); err == nil && existing != nil {
		return fmt.Errorf("a customer with code %s already exists", customer.Code)
	}
	if customer.RegisteredAt == "" {
		customer.RegisteredAt = time.Now().UTC().Format("2006-01-02")
	}
	if err := s.customerRepo.Create(customer); err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

// UpdateCustomer updates an existing customer, keeping the code unique.
func (s *CustomerService) UpdateCustomer(id string, customer *models.Customer) error {
	existing, err := s.customerRepo.GetByID(id)
	if err != nil {
		return err
	}
	if customer.Code != existing.Code {
		if conflict, err := s.customerRepo.GetByCode(customer.Code); err == nil && conflict != nil && conflict.ID != id {
			return fmt.Errorf("a customer with code %s already exists", customer.Code)
		}
	}
	customer.ID = id
	if customer.RegisteredAt == "" {
		customer.RegisteredAt = existing.RegisteredAt
	}
	if err := s.customerRepo.Update(customer); err != nil {
		return fmt.Errorf("failed to update customer %s: %w", id, err)
	}
	return nil
}

// DeleteCustomer removes a customer. A customer referenced by any
// order cannot be deleted.
func (s *CustomerService) DeleteCustomer(id string) error {
	count, err := s.orderRepo.CountByCustomer(id)
	if err != nil {
		return fmt.Errorf("failed to check orders for customer %s: %w", id, err)
	}
	if count > 0 {
		return fmt.Errorf("customer %s has %d associated orders and cannot be deleted", id, count)
	}
	return s.customerRepo.Delete(id)
}
