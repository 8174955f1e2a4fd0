package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/itzkennedydev/Gruby-Web-sub003/auth"
	productControllers "github.com/itzkennedydev/Gruby-Web-sub003/controllers/product"
)

// SetupAuthRoutes registers login and the public catalog.
func SetupAuthRoutes(r *gin.Engine, db *gorm.DB) {
	r.POST("/auth/login", auth.LoginHandler(db))

	// Product browsing needs no session.
	r.GET("/products", productControllers.GetProducts(db))
	r.GET("/products/:id", productControllers.GetProductByID(db))
}
