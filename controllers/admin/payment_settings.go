package adminController

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/qatumarket/marketplace-api/models"
)

// GetPaymentSettings returns the platform payment configuration.
//
// GET /admin/payment-settings
func GetPaymentSettings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		settings, err := models.GetPaymentSettings(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payment settings"})
			return
		}
		c.JSON(http.StatusOK, settings)
	}
}

type UpdatePaymentSettingsInput struct {
	CommissionRate *string `json:"commission_rate"`
	StripeEnabled  *bool   `json:"stripe_enabled"`
	YapeEnabled    *bool   `json:"yape_enabled"`
	PlinEnabled    *bool   `json:"plin_enabled"`
	YapePhone      *string `json:"yape_phone"`
	PlinPhone      *string `json:"plin_phone"`
	YapeQRURL      *string `json:"yape_qr_url"`
	PlinQRURL      *string `json:"plin_qr_url"`
	Instructions   *string `json:"instructions"`
	DefaultMethod  *string `json:"default_method"`
}

// UpdatePaymentSettings mutates the singleton settings row. This is the
// only write path to the commission rate and method toggles.
//
// PUT /admin/payment-settings
func UpdatePaymentSettings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input UpdatePaymentSettingsInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		settings, err := models.GetPaymentSettings(db)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payment settings"})
			return
		}

		if input.CommissionRate != nil {
			rate, err := decimal.NewFromString(*input.CommissionRate)
			if err != nil || rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "commission_rate must be between 0 and 1"})
				return
			}
			settings.CommissionRate = rate
		}
		if input.StripeEnabled != nil {
			settings.StripeEnabled = *input.StripeEnabled
		}
		if input.YapeEnabled != nil {
			settings.YapeEnabled = *input.YapeEnabled
		}
		if input.PlinEnabled != nil {
			settings.PlinEnabled = *input.PlinEnabled
		}
		if input.YapePhone != nil {
			settings.YapePhone = *input.YapePhone
		}
		if input.PlinPhone != nil {
			settings.PlinPhone = *input.PlinPhone
		}
		if input.YapeQRURL != nil {
			settings.YapeQRURL = *input.YapeQRURL
		}
		if input.PlinQRURL != nil {
			settings.PlinQRURL = *input.PlinQRURL
		}
		if input.Instructions != nil {
			settings.Instructions = *input.Instructions
		}
		if input.DefaultMethod != nil {
			method := models.PaymentMethod(*input.DefaultMethod)
			switch method {
			case models.PaymentMethodStripe, models.PaymentMethodYape, models.PaymentMethodPlin:
				settings.DefaultMethod = method
			default:
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid default_method"})
				return
			}
		}

		if err := db.Save(settings).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update payment settings"})
			return
		}
		c.JSON(http.StatusOK, settings)
	}
}
