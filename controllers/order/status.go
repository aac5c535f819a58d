package orderControllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/qatumarket/marketplace-api/apperrors"
	variantcontroller "github.com/qatumarket/marketplace-api/controllers/variant"
	"github.com/qatumarket/marketplace-api/models"
	"github.com/qatumarket/marketplace-api/utils"
)

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// scopeOrderLookup matches numeric identifiers against the primary key
// and anything else against the public order reference.
func scopeOrderLookup(tx *gorm.DB, orderID string) *gorm.DB {
	if id, err := strconv.ParseUint(orderID, 10, 64); err == nil {
		return tx.Where("id = ?", id)
	}
	return tx.Where("order_ref = ?", orderID)
}

func mapOrderStatus(status string) (models.OrderStatus, error) {
	switch strings.ToLower(status) {
	case string(models.OrderStatusPending):
		return models.OrderStatusPending, nil
	case string(models.OrderStatusPendingVerification):
		return models.OrderStatusPendingVerification, nil
	case string(models.OrderStatusPaid):
		return models.OrderStatusPaid, nil
	case string(models.OrderStatusFailedAttempt):
		return models.OrderStatusFailedAttempt, nil
	case string(models.OrderStatusRejected):
		return models.OrderStatusRejected, nil
	case string(models.OrderStatusProcessing):
		return models.OrderStatusProcessing, nil
	case string(models.OrderStatusShipped):
		return models.OrderStatusShipped, nil
	case string(models.OrderStatusDelivered):
		return models.OrderStatusDelivered, nil
	case string(models.OrderStatusCancelled):
		return models.OrderStatusCancelled, nil
	case string(models.OrderStatusRefunded):
		return models.OrderStatusRefunded, nil
	default:
		return "", apperrors.Validationf("invalid order status: %s", status)
	}
}

// TransitionOrder moves an order to target under the declared transition
// table, applying stock side effects in the same transaction.
//
// Idempotency: asking for the status the order already holds is a
// success no-op (applied=false) and re-applies no side effects. Asking
// for a status the table does not allow from the current one is a
// conflict, never a silent success.
func TransitionOrder(db *gorm.DB, orderID string, target models.OrderStatus) (*models.Order, bool, error) {
	var order models.Order
	applied := false

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := scopeOrderLookup(tx.Preload("Items").Preload("ShippingAddress"), orderID).
			First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFoundf("order not found")
			}
			return err
		}

		from := order.Status
		if from == target {
			return nil // repeat of an already-applied action
		}
		if !models.CanTransition(from, target) {
			return apperrors.Conflictf("cannot move order from %s to %s", from, target)
		}

		// Claim the transition before any side effect. The guarded write
		// holds the order row until commit; a concurrent transition of
		// the same order re-evaluates against the new status, matches
		// zero rows and conflicts instead of repeating the stock side
		// effects.
		if err := claimTransition(tx, order.ID, from, target); err != nil {
			return err
		}

		switch target {
		case models.OrderStatusPaid:
			// Variant stock is committed at payment time. The aggregate
			// counter was already taken at checkout.
			if err := decrementVariantsForOrder(tx, &order); err != nil {
				return err
			}
		case models.OrderStatusCancelled, models.OrderStatusRejected:
			// The order will never ship; return what checkout took.
			if err := restockOrder(tx, &order, from); err != nil {
				return err
			}
		}

		order.Status = target
		applied = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &order, applied, nil
}

// claimTransition moves the order's status with the prior status as a
// precondition, the same decrement-by-delta guard the stock counters
// use. Zero rows affected means another transaction moved the order
// first; the caller's transaction must roll back.
func claimTransition(tx *gorm.DB, orderID uint, from, to models.OrderStatus) error {
	res := tx.Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.Conflictf("order was modified concurrently")
	}
	return nil
}

// decrementVariantsForOrder takes per-variant stock for every line that
// named a size and color. Runs inside the transition transaction so a
// drained variant rolls the approval back.
func decrementVariantsForOrder(tx *gorm.DB, order *models.Order) error {
	for _, item := range order.Items {
		if item.Size == "" || item.Color == "" {
			continue
		}
		var variant models.ProductVariant
		err := tx.Where("product_id = ? AND size = ? AND color = ?",
			item.ProductID, item.Size, item.Color).First(&variant).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Conflictf("variant %s/%s of product %q no longer exists",
				item.Size, item.Color, item.ProductTitle)
		}
		if err != nil {
			return err
		}
		if err := variantcontroller.DecrementVariantStock(tx, variant.ID, item.Quantity); err != nil {
			return apperrors.Conflictf("insufficient stock for %s (%s/%s)",
				item.ProductTitle, item.Size, item.Color)
		}
	}
	return nil
}

// restockOrder restores the aggregate counters taken at checkout and,
// when the order had already reached paid, the variant stock too.
func restockOrder(tx *gorm.DB, order *models.Order, from models.OrderStatus) error {
	for _, item := range order.Items {
		if err := tx.Model(&models.Product{}).
			Where("id = ?", item.ProductID).
			Update("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
			return err
		}
	}

	if from != models.OrderStatusPaid && from != models.OrderStatusProcessing {
		return nil
	}
	for _, item := range order.Items {
		if item.Size == "" || item.Color == "" {
			continue
		}
		var variant models.ProductVariant
		err := tx.Where("product_id = ? AND size = ? AND color = ?",
			item.ProductID, item.Size, item.Color).First(&variant).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue // combo was removed since; nothing to restore
		}
		if err != nil {
			return err
		}
		if err := variantcontroller.RestockVariant(tx, variant.ID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// transitionHandler wraps one named action around TransitionOrder.
func transitionHandler(db *gorm.DB, target models.OrderStatus, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("orderID")
		if orderID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "orderID is required"})
			return
		}

		order, applied, err := TransitionOrder(db, orderID, target)
		if err != nil {
			c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}

		if applied {
			go utils.SendOrderStatusUpdate(order.ShippingAddress.Email, *order)
			broadcastOrderEvent(*order)
		}

		c.JSON(http.StatusOK, gin.H{"message": message, "order": order, "applied": applied})
	}
}

// ApproveOrderHandler confirms payment, moving the order to paid and
// committing variant stock.
//
// POST /orders/:orderID/approve
func ApproveOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return transitionHandler(db, models.OrderStatusPaid, "Order approved")
}

// RejectOrderHandler declines a manual payment under verification.
//
// POST /orders/:orderID/reject
func RejectOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return transitionHandler(db, models.OrderStatusRejected, "Order rejected")
}

// CancelOrderHandler cancels a not-yet-shipped order. The buyer may
// cancel their own orders; shipped and delivered orders refuse.
//
// POST /orders/:orderID/cancel
func CancelOrderHandler(db *gorm.DB, requireOwnership bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("orderID")

		if requireOwnership {
			buyerID := c.GetString("user_id")
			var order models.Order
			if err := scopeOrderLookup(db.Model(&models.Order{}), orderID).
				First(&order).Error; err != nil || order.BuyerID != buyerID {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
		}

		transitionHandler(db, models.OrderStatusCancelled, "Order cancelled")(c)
	}
}

// UpdateOrderStatusHandler applies fulfillment transitions (processing,
// shipped, delivered, refunded) under the same table.
//
// PUT /orders/:orderID/status
func UpdateOrderStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("orderID")
		if orderID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "orderID is required"})
			return
		}
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		target, err := mapOrderStatus(req.Status)
		if err != nil {
			c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}

		order, applied, err := TransitionOrder(db, orderID, target)
		if err != nil {
			c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}

		if applied {
			go utils.SendOrderStatusUpdate(order.ShippingAddress.Email, *order)
			broadcastOrderEvent(*order)
		}

		c.JSON(http.StatusOK, gin.H{"message": "Order status updated successfully", "order": order, "applied": applied})
	}
}
