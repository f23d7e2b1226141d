package model

import "gorm.io/gorm"

// InventoryItem is a stocked lab material or component.
type InventoryItem struct {
	gorm.Model
	Name            string  `json:"name" gorm:"not null;index"`
	Category        string  `json:"category" gorm:"index"`
	Unit            string  `json:"unit"`
	QuantityInStock int     `json:"quantity_in_stock" gorm:"not null;default:0"`
	MinimumStock    int     `json:"minimum_stock" gorm:"not null;default:0"`
	UnitPrice       float64 `json:"unit_price"`
	Supplier        string  `json:"supplier"`
}

// BelowMinimum reports whether the item needs reordering.
func (i InventoryItem) BelowMinimum() bool {
	return i.QuantityInStock < i.MinimumStock
}
