package repositories

import (
	"comerciotech/internal/models"
)

// CustomerRepository defines the interface for customer data access.
type CustomerRepository interface {
	GetAll() ([]models.Customer, error)
	GetByID(id string) (*models.Customer, error)
	GetByCode(code string) (*models.Customer, error)
	Create(customer *models.Customer) error
	Update(customer *models.Customer) error
	Delete(id string) error
}
