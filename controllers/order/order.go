package orderControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/qatumarket/marketplace-api/models"
)

// GetAllOrdersHandler lists every order, newest first (admin).
//
// GET /admin/orders
func GetAllOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		if err := db.
			Preload("Items").
			Preload("ShippingAddress").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GetBuyerOrdersHandler lists the authenticated buyer's orders.
//
// GET /orders
func GetBuyerOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		buyerID := c.GetString("user_id")

		var orders []models.Order
		if err := db.
			Where("buyer_id = ?", buyerID).
			Preload("Items").
			Preload("ShippingAddress").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GetCuratorOrdersHandler lists orders routed to the authenticated
// curator's bucket.
//
// GET /curator/orders
func GetCuratorOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		curatorID := c.GetString("user_id")

		var orders []models.Order
		if err := db.
			Where("curator_id = ?", curatorID).
			Preload("Items").
			Preload("ShippingAddress").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GetOrderByIDHandler fetches one order by numeric id or order ref,
// visible only to its buyer, its curator, or an admin caller.
//
// GET /orders/:orderID
func GetOrderByIDHandler(db *gorm.DB, adminScope bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("orderID")
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "orderID is required"})
			return
		}

		var order models.Order
		if err := scopeOrderLookup(db.Preload("Items").Preload("ShippingAddress"), id).
			First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if !adminScope {
			userID := c.GetString("user_id")
			if order.BuyerID != userID && order.CuratorID != userID {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
		}

		c.JSON(http.StatusOK, order)
	}
}
