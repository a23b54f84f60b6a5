package models

import "gorm.io/gorm"

// Customer represents a customer record. Code is the human-facing
// identifier shown in the console; it must be unique.
type Customer struct {
	ID           string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	FirstName    string `json:"firstName" validate:"required,max=100"`
	LastName     string `json:"lastName" validate:"required,max=100"`
	Code         string `json:"code" gorm:"uniqueIndex;type:varchar(50)" validate:"required,max=50"`
	RegisteredAt string `json:"registeredAt" validate:"omitempty,datetime=2006-01-02"`
	gorm.Model          // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
