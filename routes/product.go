package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	orderControllers "github.com/qatumarket/marketplace-api/controllers/order"
	productcontroller "github.com/qatumarket/marketplace-api/controllers/product"
	variantcontroller "github.com/qatumarket/marketplace-api/controllers/variant"
)

func SetupProductRoutes(r *gin.Engine, db *gorm.DB) {
	products := r.Group("/products")
	{
		products.GET("/", productcontroller.GetAllProducts(db))
		products.GET("/:id", productcontroller.GetProduct(db))
		products.GET("/:id/variants", variantcontroller.GetProductVariants(db))

		// Advisory availability query used by the cart UI.
		products.GET("/:id/availability", variantcontroller.CheckAvailabilityHandler(db))
	}

	// Realtime order feed for dashboards.
	r.GET("/ws/orders", orderControllers.OrderWebSocketHandler)
}
