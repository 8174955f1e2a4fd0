package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	adminControllers "github.com/itzkennedydev/Gruby-Web-sub003/controllers/admin"
	orderControllers "github.com/itzkennedydev/Gruby-Web-sub003/controllers/order"
	"github.com/itzkennedydev/Gruby-Web-sub003/middleware"
)

// SetupAdminRoutes registers dashboard endpoints behind the API key.
func SetupAdminRoutes(r *gin.Engine, db *gorm.DB, deps Deps) {
	admin := r.Group("/admin")
	admin.Use(middleware.ValidateAPIKey)
	{
		admin.GET("/stats", adminControllers.StatsHandler(db))
		admin.GET("/orders", orderControllers.GetAllOrdersHandler(db))
		admin.GET("/orders/export", adminControllers.ExportOrdersToExcel(db))
		admin.GET("/orders/ws", deps.Hub.Handler)
	}
}
