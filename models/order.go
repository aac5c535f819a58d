package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	// Awaiting synchronous gateway confirmation (card payments).
	OrderStatusPending OrderStatus = "pending"
	// Awaiting human review of a manual payment proof (yape/plin).
	OrderStatusPendingVerification OrderStatus = "pending_verification"
	OrderStatusPaid                OrderStatus = "paid"
	OrderStatusFailedAttempt       OrderStatus = "failed_attempt"
	OrderStatusRejected            OrderStatus = "rejected"
	OrderStatusProcessing          OrderStatus = "processing"
	OrderStatusShipped             OrderStatus = "shipped"
	OrderStatusDelivered           OrderStatus = "delivered"
	OrderStatusCancelled           OrderStatus = "cancelled"
	OrderStatusRefunded            OrderStatus = "refunded"
)

// orderTransitions declares every legal status change. Idempotency and
// conflict detection on the order endpoints are checks against this
// table, not ad hoc ifs in handlers.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:             {OrderStatusPaid, OrderStatusFailedAttempt, OrderStatusCancelled},
	OrderStatusPendingVerification: {OrderStatusPaid, OrderStatusRejected, OrderStatusCancelled},
	OrderStatusFailedAttempt:       {OrderStatusPending, OrderStatusCancelled},
	OrderStatusPaid:                {OrderStatusProcessing, OrderStatusRefunded, OrderStatusCancelled},
	OrderStatusProcessing:          {OrderStatusShipped, OrderStatusRefunded, OrderStatusCancelled},
	OrderStatusShipped:             {OrderStatusDelivered},
	OrderStatusDelivered:           {OrderStatusRefunded},
}

// CanTransition reports whether moving from into to is a declared change.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodStripe PaymentMethod = "stripe"
	PaymentMethodYape   PaymentMethod = "yape"
	PaymentMethodPlin   PaymentMethod = "plin"
)

// RequiresTransactionCode reports whether the method is a manual
// transfer needing an external code for human verification.
func (m PaymentMethod) RequiresTransactionCode() bool {
	return m == PaymentMethodYape || m == PaymentMethodPlin
}

// InitialStatus is payment-method dependent: gateway methods await the
// gateway, manual methods await proof review.
func (m PaymentMethod) InitialStatus() OrderStatus {
	if m.RequiresTransactionCode() {
		return OrderStatusPendingVerification
	}
	return OrderStatusPending
}

// Order covers a single curator's share of one checkout request. A
// checkout spanning N curators creates N orders.
type Order struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	OrderRef         string          `gorm:"uniqueIndex;not null" json:"order_ref"`
	BuyerID          string          `gorm:"index;not null" json:"buyer_id"`
	Buyer            User            `gorm:"foreignKey:BuyerID" json:"-"`
	CuratorID        string          `gorm:"index;not null" json:"curator_id"`
	Status           OrderStatus     `gorm:"type:VARCHAR(24);default:'pending'" json:"status"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(16,2)" json:"total_amount"`
	CommissionAmount decimal.Decimal `gorm:"type:decimal(16,2)" json:"commission_amount"`
	CuratorAmount    decimal.Decimal `gorm:"type:decimal(16,2)" json:"curator_amount"`
	PaymentMethod    PaymentMethod   `gorm:"type:VARCHAR(20)" json:"payment_method"`
	TransactionCode  string          `json:"transaction_code,omitempty"`
	PaymentProof     string          `json:"payment_proof,omitempty"`
	Items            []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	ShippingAddress  ShippingAddress `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"shipping_address"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// OrderItem snapshots the product at checkout time. UnitPrice is never
// recomputed from the live product afterwards.
type OrderItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	OrderID      uint            `gorm:"index" json:"order_id"`
	ProductID    uint            `json:"product_id"`
	ProductTitle string          `json:"product_title"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(16,2)" json:"unit_price"`
	Quantity     int             `json:"quantity"`
	Size         string          `json:"size,omitempty"`
	Color        string          `json:"color,omitempty"`
}

type ShippingAddress struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	OrderID uint   `gorm:"uniqueIndex" json:"order_id"`
	Name    string `gorm:"not null" json:"name"`
	Email   string `gorm:"not null" json:"email"`
	Address string `gorm:"not null" json:"address"`
	City    string `gorm:"not null" json:"city"`
	State   string `gorm:"not null" json:"state"`
	ZipCode string `gorm:"not null" json:"zip_code"`
	Country string `gorm:"not null" json:"country"`
	Phone   string `json:"phone,omitempty"`
}
