package utils

import (
	"log"

	"github.com/qatumarket/marketplace-api/models"
)

// Notifications are fire-and-forget: a failed send must never roll back
// or fail the business transaction that triggered it. Callers invoke
// these in goroutines after commit.

// SendOrderConfirmation notifies the buyer that an order was placed.
// In production this hands off to the notification service; the default
// implementation logs the dispatch.
func SendOrderConfirmation(email string, order models.Order) {
	log.Println("========================================================")
	log.Printf("SENDING ORDER CONFIRMATION")
	log.Printf("To: %s", email)
	log.Printf("Subject: Order %s received", order.OrderRef)
	log.Printf("Body: Your order of %s is %s.", order.TotalAmount.StringFixed(2), order.Status)
	log.Println("========================================================")
}

// SendOrderStatusUpdate notifies the buyer of a status change.
func SendOrderStatusUpdate(email string, order models.Order) {
	log.Printf("SENDING STATUS UPDATE to %s: order %s is now %s", email, order.OrderRef, order.Status)
}

// SendCuratorSaleNotice tells a curator one of their products sold.
func SendCuratorSaleNotice(curatorID string, order models.Order) {
	log.Printf("SENDING SALE NOTICE to curator %s: order %s, payout %s",
		curatorID, order.OrderRef, order.CuratorAmount.StringFixed(2))
}
