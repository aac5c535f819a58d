package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes is the single entry-point that wires up the public,
// buyer, curator, and admin route groups.
func SetupRoutes(r *gin.Engine, db *gorm.DB) {
	// Public catalog and realtime feed (no middleware)
	SetupProductRoutes(r, db)

	// Buyer routes (JWT-protected)
	SetupCartRoutes(r, db)
	SetupOrderRoutes(r, db)

	// Curator routes (JWT + role)
	SetupCuratorRoutes(r, db)

	// Admin routes (API-key-protected)
	SetupAdminRoutes(r, db)
}
