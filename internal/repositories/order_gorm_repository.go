package repositories

import (
	"fmt"

	"comerciotech/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

func withLineItems(db *gorm.DB) *gorm.DB {
	return db.Preload("LineItems", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	})
}

// GetAll retrieves all orders with their line items, oldest first.
func (r *GORMOrderRepository) GetAll() ([]models.Order, error) {
	var orders []models.Order
	if err := withLineItems(r.db).Order("placed_at").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	for i := range orders {
		// An order always carries a line item sequence, even when empty.
		if orders[i].LineItems == nil {
			orders[i].LineItems = []models.LineItem{}
		}
	}
	return orders, nil
}

// GetByID retrieves a single order by its ID, with line items.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := withLineItems(r.db).First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	if order.LineItems == nil {
		order.LineItems = []models.LineItem{}
	}
	return &order, nil
}

// GetByCode retrieves a single order by its order code.
func (r *GORMOrderRepository) GetByCode(code string) (*models.Order, error) {
	var order models.Order
	if err := r.db.First(&order, "order_code = ?", code).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order with code %s not found", code)
		}
		return nil, fmt.Errorf("failed to get order by code %s: %w", code, err)
	}
	return &order, nil
}

// Create inserts a new order together with its line items.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.LineItems {
		order.LineItems[i].OrderID = order.ID
		order.LineItems[i].Position = i
	}
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// Update replaces an order and its whole line item set.
func (r *GORMOrderRepository) Update(order *models.Order) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Order
		if err := tx.First(&existing, "id = ?", order.ID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("order with ID %s not found for update", order.ID)
			}
			return fmt.Errorf("failed to load order %s for update: %w", order.ID, err)
		}

		if err := tx.Where("order_id = ?", order.ID).Delete(&models.LineItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear line items for order %s: %w", order.ID, err)
		}
		for i := range order.LineItems {
			order.LineItems[i].ID = 0
			order.LineItems[i].OrderID = order.ID
			order.LineItems[i].Position = i
		}

		if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(order).Error; err != nil {
			return fmt.Errorf("failed to update order %s: %w", order.ID, err)
		}
		return nil
	})
}

// Delete removes an order and its line items by order ID.
func (r *GORMOrderRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.LineItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete line items for order %s: %w", id, err)
		}
		res := tx.Delete(&models.Order{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete order: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("order with ID %s not found for deletion", id)
		}
		return nil
	})
}

// CountByCustomer counts the orders referencing a customer.
func (r *GORMOrderRepository) CountByCustomer(customerRef string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Order{}).Where("customer_ref = ?", customerRef).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count orders for customer %s: %w", customerRef, err)
	}
	return count, nil
}
