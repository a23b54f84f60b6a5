package models

import "time"

// LineItem is one product entry within an order. Name is a denormalized
// copy of the product name at authoring time and is not re-derived from
// ProductRef. TotalPurchased is entered independently; it is never
// computed from Quantity and UnitPrice.
type LineItem struct {
	ID             uint    `json:"-" gorm:"primaryKey"`
	OrderID        string  `json:"-" gorm:"index;type:varchar(36)"`
	Position       int     `json:"-"`
	ProductRef     string  `json:"productRef" validate:"required"`
	Name           string  `json:"name"`
	Quantity       int     `json:"quantity" validate:"gt=0"`
	UnitPrice      float64 `json:"unitPrice" validate:"gte=0"`
	TotalPurchased float64 `json:"totalPurchased" validate:"gte=0"`
}

// Order is an aggregate record: scalar identifying fields plus an
// ordered collection of line items.
type Order struct {
	ID          string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CustomerRef string     `json:"customerRef" validate:"required"`
	OrderCode   string     `json:"orderCode" gorm:"uniqueIndex;type:varchar(100)" validate:"required"`
	LineItems   []LineItem `json:"lineItems" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" validate:"dive"`
	OrderTotal  float64    `json:"orderTotal"`
	PlacedAt    time.Time  `json:"placedAt"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Clone returns a deep copy of the order. The line item slice gets its
// own backing array, so mutating the copy never touches the original.
func (o Order) Clone() Order {
	clone := o
	clone.LineItems = make([]LineItem, len(o.LineItems))
	copy(clone.LineItems, o.LineItems)
	return clone
}
