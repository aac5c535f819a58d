package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	CartID    uint       `gorm:"primaryKey" json:"cart_id"`
	UserID    string     `gorm:"uniqueIndex" json:"user_id"` // one cart per user
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem is advisory convenience state, never a reservation. The
// snapshot fields may go stale; checkout re-reads everything it needs.
// Uniqueness is scoped to (cart, product, size, color): re-adding the
// same combination increments Quantity instead of inserting a new row.
type CartItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	CartID       uint            `gorm:"index;uniqueIndex:idx_cart_line" json:"cart_id"`
	ProductID    uint            `gorm:"uniqueIndex:idx_cart_line" json:"product_id"`
	Size         string          `gorm:"uniqueIndex:idx_cart_line" json:"size"`
	Color        string          `gorm:"uniqueIndex:idx_cart_line" json:"color"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	ProductTitle string          `json:"product_title"`
	ProductPrice decimal.Decimal `gorm:"type:decimal(16,2)" json:"product_price"`
	ProductStock int             `json:"product_stock"`
	AddedAt      time.Time       `json:"added_at"`
}
