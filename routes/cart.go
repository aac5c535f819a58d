package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	cartControllers "github.com/qatumarket/marketplace-api/controllers/cart"
	"github.com/qatumarket/marketplace-api/middleware"
)

func SetupCartRoutes(r *gin.Engine, db *gorm.DB) {
	cart := r.Group("/cart")
	cart.Use(middleware.ValidateToken)
	{
		cart.GET("/", cartControllers.GetUserCart(db))
		cart.POST("/items", cartControllers.AddCartItem(db))
		cart.PUT("/items/:itemID", cartControllers.UpdateCartItem(db))
		cart.DELETE("/items/:itemID", cartControllers.DeleteCartItem(db))
		cart.DELETE("/", cartControllers.ClearUserCart(db))
	}
}
