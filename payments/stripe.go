package payments

import (
	"log"
	"os"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"gorm.io/gorm"

	"github.com/qatumarket/marketplace-api/models"
)

var minorUnit = decimal.NewFromInt(100)

// CreatePaymentIntents opens one Stripe PaymentIntent per order placed
// with the card method. Runs after the checkout transaction committed;
// a gateway failure leaves the orders pending for a later attempt and
// never undoes them. The intent id is stored as the transaction code so
// the webhook/verification path can match the confirmation.
func CreatePaymentIntents(db *gorm.DB, orders []models.Order) {
	key := os.Getenv("STRIPE_SECRET_KEY")
	if key == "" {
		log.Println("STRIPE_SECRET_KEY not set, skipping payment intent creation")
		return
	}
	stripe.Key = key

	for _, order := range orders {
		// Stripe amounts are in the currency's minor unit.
		amount := order.TotalAmount.Mul(minorUnit).IntPart()

		params := &stripe.PaymentIntentParams{
			Amount:   stripe.Int64(amount),
			Currency: stripe.String(string(stripe.CurrencyPEN)),
			Metadata: map[string]string{
				"order_ref":  order.OrderRef,
				"curator_id": order.CuratorID,
			},
		}

		intent, err := paymentintent.New(params)
		if err != nil {
			log.Printf("⚠️ Failed to create payment intent for order %s: %v", order.OrderRef, err)
			continue
		}

		if err := db.Model(&models.Order{}).Where("id = ?", order.ID).
			Update("transaction_code", intent.ID).Error; err != nil {
			log.Printf("⚠️ Failed to store payment intent for order %s: %v", order.OrderRef, err)
		}
	}
}
