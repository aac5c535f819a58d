package models

import "time"

// ProductVariant is the unit of sellable stock: one row per
// (product, size, color) combination, enforced by the composite index.
type ProductVariant struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_variant_combo" json:"product_id"`
	Size      string    `gorm:"not null;uniqueIndex:idx_variant_combo" json:"size"`
	Color     string    `gorm:"not null;uniqueIndex:idx_variant_combo" json:"color"`
	Stock     int       `gorm:"not null;default:0" json:"stock"`
	SKU       string    `json:"sku"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
