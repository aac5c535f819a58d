package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	adminController "github.com/qatumarket/marketplace-api/controllers/admin"
	orderControllers "github.com/qatumarket/marketplace-api/controllers/order"
	"github.com/qatumarket/marketplace-api/middleware"
)

func SetupAdminRoutes(r *gin.Engine, db *gorm.DB) {
	admin := r.Group("/admin")
	admin.Use(middleware.ValidateAPIKey)
	{
		admin.GET("/orders", orderControllers.GetAllOrdersHandler(db))
		admin.GET("/orders/:orderID", orderControllers.GetOrderByIDHandler(db, true))

		// Payment review actions; safe to repeat, conflicting repeats 409.
		admin.POST("/orders/:orderID/approve", orderControllers.ApproveOrderHandler(db))
		admin.POST("/orders/:orderID/reject", orderControllers.RejectOrderHandler(db))
		admin.POST("/orders/:orderID/cancel", orderControllers.CancelOrderHandler(db, false))

		// Fulfillment transitions (processing, shipped, delivered, refunded).
		admin.PUT("/orders/:orderID/status", orderControllers.UpdateOrderStatusHandler(db))

		admin.GET("/payment-settings", adminController.GetPaymentSettings(db))
		admin.PUT("/payment-settings", adminController.UpdatePaymentSettings(db))
	}
}
