package models

import "gorm.io/gorm"

// Product represents a product in the catalog.
type Product struct {
	ID         string  `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name       string  `json:"name" validate:"required,min=2,max=100"`
	Category   string  `json:"category" validate:"required,max=100"`
	Price      float64 `json:"price" validate:"required,gt=0"`
	Stock      int     `json:"stock" validate:"gte=0"`
	gorm.Model         // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
