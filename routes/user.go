package routes

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	cartControllers "github.com/itzkennedydev/Gruby-Web-sub003/controllers/cart"
	checkoutControllers "github.com/itzkennedydev/Gruby-Web-sub003/controllers/checkout"
	orderControllers "github.com/itzkennedydev/Gruby-Web-sub003/controllers/order"
	"github.com/itzkennedydev/Gruby-Web-sub003/middleware"
)

// SetupUserRoutes registers all buyer endpoints. Requires a session JWT;
// mutating routes additionally sit behind a per-user rate limit.
func SetupUserRoutes(r *gin.Engine, db *gorm.DB, deps Deps) {
	userGroup := r.Group("/user")
	userGroup.Use(middleware.ValidateToken(deps.Sessions))
	{
		cartGroup := userGroup.Group("/cart")
		{
			cartGroup.GET("/", cartControllers.GetCartHandler(db))
			cartGroup.PUT("/", middleware.RateLimit(rate.Limit(5), 10), cartControllers.SyncCartHandler(db))
		}

		userGroup.POST("/checkout-session",
			middleware.RateLimit(rate.Limit(1), 3),
			checkoutControllers.CreateSessionHandler(db, deps.Payments),
		)
	}

	orders := r.Group("/orders")
	orders.Use(middleware.ValidateToken(deps.Sessions))
	{
		orders.POST("/", orderControllers.FinalizeOrderHandler(db, deps.Payments, deps.Mailer, deps.Hub))
		orders.GET("/", orderControllers.GetUserOrdersHandler(db))
	}
}
