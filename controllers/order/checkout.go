package orderControllers

import (
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/qatumarket/marketplace-api/apperrors"
	variantcontroller "github.com/qatumarket/marketplace-api/controllers/variant"
	"github.com/qatumarket/marketplace-api/models"
	"github.com/qatumarket/marketplace-api/payments"
	"github.com/qatumarket/marketplace-api/utils"
)

// -------- Request Structs --------

type CheckoutItem struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type ShippingAddressInput struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Address string `json:"address" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	ZipCode string `json:"zip_code" binding:"required"`
	Country string `json:"country" binding:"required"`
	Phone   string `json:"phone"`
}

type CheckoutRequest struct {
	Items           []CheckoutItem       `json:"items" binding:"required,min=1,dive"`
	ShippingAddress ShippingAddressInput `json:"shipping_address" binding:"required"`
	PaymentMethod   string               `json:"payment_method" binding:"required"`
	TransactionCode string               `json:"transaction_code"`
	PaymentProof    string               `json:"payment_proof"`
}

// -------- Helpers --------

func mapPaymentMethod(method string) (models.PaymentMethod, error) {
	switch strings.ToLower(method) {
	case string(models.PaymentMethodStripe):
		return models.PaymentMethodStripe, nil
	case string(models.PaymentMethodYape):
		return models.PaymentMethodYape, nil
	case string(models.PaymentMethodPlin):
		return models.PaymentMethodPlin, nil
	default:
		return "", apperrors.Validationf("invalid payment method: %s", method)
	}
}

func generateOrderRef() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()
}

// checkoutLine is a request item resolved against its live product.
type checkoutLine struct {
	Item    CheckoutItem
	Product models.Product
}

// SplitByCurator partitions resolved lines into one bucket per owning
// curator. Bucket order is deterministic so multi-order creation is
// reproducible.
func SplitByCurator(lines []checkoutLine) ([]string, map[string][]checkoutLine) {
	buckets := make(map[string][]checkoutLine)
	for _, line := range lines {
		buckets[line.Product.CuratorID] = append(buckets[line.Product.CuratorID], line)
	}
	curators := make([]string, 0, len(buckets))
	for id := range buckets {
		curators = append(curators, id)
	}
	sort.Strings(curators)
	return curators, buckets
}

// ComputeCommission derives the platform's cut and the curator payout
// from an order subtotal. Rounding happens once, here, at the subtotal
// boundary; per-line amounts are exact decimals, so commission + payout
// always reconstructs the total.
func ComputeCommission(subtotal, rate decimal.Decimal) (commission, payout decimal.Decimal) {
	commission = subtotal.Mul(rate).Round(2)
	payout = subtotal.Sub(commission)
	return commission, payout
}

// -------- Core Logic --------

// PlaceOrder converts a checkout request into one order per curator,
// atomically: every validation, order/item/address insert and stock
// decrement happens under one transaction. Any failure rolls back all of
// it, so a losing concurrent checkout leaves no trace.
func PlaceOrder(db *gorm.DB, buyerID string, req CheckoutRequest) ([]models.Order, error) {
	method, err := mapPaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if method.RequiresTransactionCode() && req.TransactionCode == "" {
		return nil, apperrors.Validationf("transaction_code is required for %s payments", method)
	}

	var orders []models.Order

	err = db.Transaction(func(tx *gorm.DB) error {
		settings, err := models.GetPaymentSettings(tx)
		if err != nil {
			return err
		}
		if !settings.MethodEnabled(method) {
			return apperrors.Validationf("payment method %s is not enabled", method)
		}

		// Re-validate every line inside the transaction. Earlier cart or
		// availability reads are advisory only; stock may have moved.
		lines := make([]checkoutLine, 0, len(req.Items))
		for _, item := range req.Items {
			var product models.Product
			if err := tx.First(&product, "id = ?", item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.NotFoundf("product %d not found", item.ProductID)
				}
				return err
			}
			if !product.Active {
				return apperrors.Validationf("product %q is no longer available", product.Title)
			}
			if product.Stock < item.Quantity {
				return apperrors.Conflictf("insufficient stock for product: %s (available %d, requested %d)",
					product.Title, product.Stock, item.Quantity)
			}
			if item.Size != "" && item.Color != "" {
				availability, err := variantcontroller.CheckAvailability(tx, product.ID, item.Size, item.Color, item.Quantity)
				if err != nil {
					return err
				}
				if !availability.Available {
					return apperrors.Conflictf("insufficient stock for %s (%s/%s): available %d, requested %d",
						product.Title, item.Size, item.Color, availability.StockQuantity, item.Quantity)
				}
			}
			lines = append(lines, checkoutLine{Item: item, Product: product})
		}

		// One order, one item set, one shipping address per curator.
		curators, buckets := SplitByCurator(lines)
		for _, curatorID := range curators {
			bucket := buckets[curatorID]

			subtotal := decimal.Zero
			var orderItems []models.OrderItem
			for _, line := range bucket {
				lineTotal := line.Product.Price.Mul(decimal.NewFromInt(int64(line.Item.Quantity)))
				subtotal = subtotal.Add(lineTotal)
				orderItems = append(orderItems, models.OrderItem{
					ProductID:    line.Product.ID,
					ProductTitle: line.Product.Title,
					UnitPrice:    line.Product.Price,
					Quantity:     line.Item.Quantity,
					Size:         line.Item.Size,
					Color:        line.Item.Color,
				})
			}
			commission, payout := ComputeCommission(subtotal, settings.CommissionRate)

			order := models.Order{
				OrderRef:         generateOrderRef(),
				BuyerID:          buyerID,
				CuratorID:        curatorID,
				Status:           method.InitialStatus(),
				TotalAmount:      subtotal,
				CommissionAmount: commission,
				CuratorAmount:    payout,
				PaymentMethod:    method,
				TransactionCode:  req.TransactionCode,
				PaymentProof:     req.PaymentProof,
				Items:            orderItems,
				ShippingAddress: models.ShippingAddress{
					Name:    req.ShippingAddress.Name,
					Email:   req.ShippingAddress.Email,
					Address: req.ShippingAddress.Address,
					City:    req.ShippingAddress.City,
					State:   req.ShippingAddress.State,
					ZipCode: req.ShippingAddress.ZipCode,
					Country: req.ShippingAddress.Country,
					Phone:   req.ShippingAddress.Phone,
				},
				CreatedAt: time.Now(),
			}
			if err := tx.Create(&order).Error; err != nil {
				return err
			}
			orders = append(orders, order)
		}

		// Decrement the aggregate counter per line. The guarded update is
		// the authority: RowsAffected 0 means a concurrent checkout won
		// the race after our read above, and everything rolls back.
		for _, line := range lines {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", line.Product.ID, line.Item.Quantity).
				Update("stock", gorm.Expr("stock - ?", line.Item.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return apperrors.Conflictf("insufficient stock for product: %s", line.Product.Title)
			}
		}

		// Clear the buyer's cart once the orders exist.
		var cart models.Cart
		if err := tx.Where("user_id = ?", buyerID).First(&cart).Error; err == nil {
			if err := tx.Where("cart_id = ?", cart.CartID).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// Post-commit effects. None of these may fail the checkout.
	for _, order := range orders {
		go utils.SendOrderConfirmation(req.ShippingAddress.Email, order)
		go utils.SendCuratorSaleNotice(order.CuratorID, order)
		broadcastOrderEvent(order)
	}
	if method == models.PaymentMethodStripe {
		go payments.CreatePaymentIntents(db, orders)
	}

	return orders, nil
}

// -------- Handlers --------

// CheckoutHandler places one or more orders from the request body.
//
// POST /orders/checkout
func CheckoutHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		buyerID := c.GetString("user_id")

		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		orders, err := PlaceOrder(db, buyerID, req)
		if err != nil {
			c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "Order placed successfully",
			"orders":  orders,
		})
	}
}
