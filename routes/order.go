package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	orderControllers "github.com/qatumarket/marketplace-api/controllers/order"
	"github.com/qatumarket/marketplace-api/middleware"
)

func SetupOrderRoutes(r *gin.Engine, db *gorm.DB) {
	orders := r.Group("/orders")
	orders.Use(middleware.ValidateToken)
	{
		// Convert the cart into one order per curator.
		orders.POST("/checkout", middleware.RateLimiter(), orderControllers.CheckoutHandler(db))

		orders.GET("/", orderControllers.GetBuyerOrdersHandler(db))
		orders.GET("/:orderID", orderControllers.GetOrderByIDHandler(db, false))

		// Buyers may cancel their own not-yet-shipped orders.
		orders.POST("/:orderID/cancel", orderControllers.CancelOrderHandler(db, true))
	}
}
