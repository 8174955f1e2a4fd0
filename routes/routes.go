package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/itzkennedydev/Gruby-Web-sub003/alerts"
	"github.com/itzkennedydev/Gruby-Web-sub003/cache"
	orderControllers "github.com/itzkennedydev/Gruby-Web-sub003/controllers/order"
	"github.com/itzkennedydev/Gruby-Web-sub003/payments"
)

// Deps carries the shared collaborators the route groups need beyond the DB.
type Deps struct {
	Payments *payments.Client
	Sessions cache.Cache
	Mailer   *alerts.Mailer
	Hub      *orderControllers.Hub
}

// SetupRoutes is the single entry-point that wires up all route groups.
func SetupRoutes(r *gin.Engine, db *gorm.DB, deps Deps) {
	// Public auth routes (no middleware)
	SetupAuthRoutes(r, db)

	// Buyer routes (JWT-protected)
	SetupUserRoutes(r, db, deps)

	// Seller routes (JWT-protected)
	SetupCookRoutes(r, db, deps)

	// Provider webhook (signature-protected)
	SetupPaymentRoutes(r, db, deps)

	// Admin routes (API-key-protected)
	SetupAdminRoutes(r, db, deps)
}
