package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	cookControllers "github.com/itzkennedydev/Gruby-Web-sub003/controllers/cook"
	productControllers "github.com/itzkennedydev/Gruby-Web-sub003/controllers/product"
	"github.com/itzkennedydev/Gruby-Web-sub003/middleware"
)

// SetupCookRoutes registers seller profile, onboarding sync and product
// management endpoints.
func SetupCookRoutes(r *gin.Engine, db *gorm.DB, deps Deps) {
	cooks := r.Group("/cooks")
	cooks.Use(middleware.ValidateToken(deps.Sessions))
	{
		cooks.POST("/", cookControllers.CreateCookHandler(db, deps.Payments))
		cooks.GET("/me", cookControllers.GetOwnCookHandler(db))
		cooks.POST("/sync", cookControllers.SyncCookHandler(db, deps.Payments))

		products := cooks.Group("/products")
		{
			products.POST("/", productControllers.CreateProduct(db))
			products.PUT("/:id", productControllers.UpdateProduct(db))
			products.DELETE("/:id", productControllers.DeleteProduct(db))
		}
	}
}
