package repositories

import (
	"fmt"

	"comerciotech/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCustomerRepository is a GORM implementation of CustomerRepository.
type GORMCustomerRepository struct {
	db *gorm.DB
}

// NewGORMCustomerRepository creates a new instance of GORMCustomerRepository.
func NewGORMCustomerRepository(db *gorm.DB) *GORMCustomerRepository {
	return &GORMCustomerRepository{
		db: db,
	}
}

// GetAll retrieves all customers from the database.
func (r *GORMCustomerRepository) GetAll() ([]models.Customer, error) {
	var customers []models.Customer
	if err := r.db.Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("failed to get all customers: %w", err)
	}
	return customers, nil
}

// GetByID retrieves a single customer by its ID from the database.
func (r *GORMCustomerRepository) GetByID(id string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.First(&customer, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("customer with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get customer by ID %s: %w", id, err)
	}
	return &customer, nil
}

// GetByCode retrieves a single customer by its code from the database.
func (r *GORMCustomerRepository) GetByCode(code string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.First(&customer, "code = ?", code).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("customer with code %s not found", code)
		}
		return nil, fmt.Errorf("failed to get customer by code %s: %w", code, err)
	}
	return &customer, nil
}

// Create creates a new customer in the database.
func (r *GORMCustomerRepository) Create(customer *models.Customer) error {
	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}
	if err := r.db.Create(customer).Error; err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

// Update updates an existing customer in the database.
func (r *GORMCustomerRepository) Update(customer *models.Customer) error {
	res := r.db.Save(customer)
	if res.Error != nil {
		return fmt.Errorf("failed to update customer: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("customer with ID %s not found for update", customer.ID)
	}
	return nil
}

// Delete deletes a customer by its ID from the database.
func (r *GORMCustomerRepository) Delete(id string) error {
	res := r.db.Delete(&models.Customer{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete customer: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("customer with ID %s not found for deletion", id)
	}
	return nil
}
