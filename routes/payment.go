package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	paymentControllers "github.com/itzkennedydev/Gruby-Web-sub003/controllers/payment"
	"github.com/itzkennedydev/Gruby-Web-sub003/middleware"
)

// SetupPaymentRoutes registers the provider webhook. Signature verification
// runs in middleware so an unsigned payload never reaches the handler.
func SetupPaymentRoutes(r *gin.Engine, db *gorm.DB, deps Deps) {
	payment := r.Group("/payment")
	{
		payment.POST("/webhook",
			middleware.WebhookAuth(),
			paymentControllers.WebhookHandler(db, deps.Hub),
		)
	}
}
