package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const paymentSettingsKey = "default"

// PaymentSettings is a keyed singleton: one row under a fixed key,
// loaded with FirstOrCreate. This replaces the fragile
// "order by created_at desc, take first" convention.
type PaymentSettings struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	SettingsKey    string          `gorm:"uniqueIndex;not null" json:"-"`
	CommissionRate decimal.Decimal `gorm:"type:decimal(6,4);not null" json:"commission_rate"` // 0..1
	StripeEnabled  bool            `gorm:"default:true" json:"stripe_enabled"`
	YapeEnabled    bool            `gorm:"default:true" json:"yape_enabled"`
	PlinEnabled    bool            `gorm:"default:true" json:"plin_enabled"`
	YapePhone      string          `json:"yape_phone"`
	PlinPhone      string          `json:"plin_phone"`
	YapeQRURL      string          `json:"yape_qr_url"`
	PlinQRURL      string          `json:"plin_qr_url"`
	Instructions   string          `json:"instructions"`
	DefaultMethod  PaymentMethod   `gorm:"type:VARCHAR(20);default:'stripe'" json:"default_method"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// GetPaymentSettings loads the singleton row, creating it with defaults
// on first access.
func GetPaymentSettings(db *gorm.DB) (*PaymentSettings, error) {
	settings := PaymentSettings{
		SettingsKey:    paymentSettingsKey,
		CommissionRate: decimal.NewFromFloat(0.10),
		StripeEnabled:  true,
		YapeEnabled:    true,
		PlinEnabled:    true,
		DefaultMethod:  PaymentMethodStripe,
	}
	if err := db.Where("settings_key = ?", paymentSettingsKey).
		FirstOrCreate(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

// MethodEnabled reports whether a payment method is currently accepted.
func (s *PaymentSettings) MethodEnabled(m PaymentMethod) bool {
	switch m {
	case PaymentMethodStripe:
		return s.StripeEnabled
	case PaymentMethodYape:
		return s.YapeEnabled
	case PaymentMethodPlin:
		return s.PlinEnabled
	default:
		return false
	}
}
