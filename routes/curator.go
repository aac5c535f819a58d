package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	orderControllers "github.com/qatumarket/marketplace-api/controllers/order"
	productcontroller "github.com/qatumarket/marketplace-api/controllers/product"
	variantcontroller "github.com/qatumarket/marketplace-api/controllers/variant"
	"github.com/qatumarket/marketplace-api/middleware"
	"github.com/qatumarket/marketplace-api/models"
)

func SetupCuratorRoutes(r *gin.Engine, db *gorm.DB) {
	curator := r.Group("/curator")
	curator.Use(middleware.ValidateToken, middleware.RequireRole(models.RoleCurator))
	{
		curator.GET("/products", productcontroller.GetCuratorProducts(db))
		curator.POST("/products", productcontroller.CreateProduct(db))
		curator.PUT("/products/:id", productcontroller.UpdateProduct(db))
		curator.DELETE("/products/:id", productcontroller.DeactivateProduct(db))

		curator.PUT("/variants/:variantID", variantcontroller.UpdateVariantStock(db))
		curator.DELETE("/variants/:variantID", variantcontroller.DeleteVariant(db))

		// Bulk stock feed, all-or-nothing at the file level.
		curator.POST("/inventory/import", middleware.RateLimiter(), variantcontroller.ImportVariantsHandler(db))
		curator.GET("/inventory/export", variantcontroller.ExportVariantsCSV(db))
		curator.GET("/inventory/export.xlsx", variantcontroller.ExportVariantsExcel(db))

		curator.GET("/orders", orderControllers.GetCuratorOrdersHandler(db))
	}
}
