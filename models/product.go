package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	CuratorID   string          `gorm:"index;not null" json:"curator_id"`
	Curator     User            `gorm:"foreignKey:CuratorID" json:"-"`
	Title       string          `gorm:"not null" json:"title"`
	Slug        string          `gorm:"uniqueIndex;not null" json:"slug"`
	Description string          `json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"price"`
	// Stock is the aggregate counter. When variants exist it is
	// informational; the per-variant rows are the unit of truth.
	Stock     int              `json:"stock"`
	Active    bool             `gorm:"default:true" json:"active"`
	Sizes     string           `json:"sizes"`  // comma-separated at the boundary
	Colors    string           `json:"colors"` // comma-separated at the boundary
	Variants  []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	DeletedAt gorm.DeletedAt   `gorm:"index" json:"-"`
}

// SizeList parses the comma-separated sizes field, preserving order and
// dropping empty entries.
func (p *Product) SizeList() []string { return SplitList(p.Sizes) }

// ColorList parses the comma-separated colors field.
func (p *Product) ColorList() []string { return SplitList(p.Colors) }

// SplitList turns "S, M,L" into ["S","M","L"].
func SplitList(raw string) []string {
	var out []string
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// VariantStockTotal returns the variant-resolved stock figure, the
// authoritative total when variants exist.
func (p *Product) VariantStockTotal(db *gorm.DB) (int, error) {
	var total int64
	err := db.Model(&ProductVariant{}).
		Where("product_id = ?", p.ID).
		Select("COALESCE(SUM(stock), 0)").
		Scan(&total).Error
	return int(total), err
}
