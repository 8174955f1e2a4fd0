package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/itzkennedydev/Gruby-Web-sub003/alerts"
	"github.com/itzkennedydev/Gruby-Web-sub003/auth"
	"github.com/itzkennedydev/Gruby-Web-sub003/cache"
	orderControllers "github.com/itzkennedydev/Gruby-Web-sub003/controllers/order"
	"github.com/itzkennedydev/Gruby-Web-sub003/middleware"
	"github.com/itzkennedydev/Gruby-Web-sub003/models"
	"github.com/itzkennedydev/Gruby-Web-sub003/payments"
	"github.com/itzkennedydev/Gruby-Web-sub003/routes"
)

func main() {
	// Load environment variables
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Info().Msg("starting gruby-api")

	ctx := context.Background()

	// Init DB
	db := initDatabase()

	// Auto-migrate all tables
	if err := db.AutoMigrate(
		&models.User{},
		&models.HomeCook{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.WebhookEvent{},
	); err != nil {
		log.Fatal().Err(err).Msg("automigrate failed")
	}

	// Firebase (ID-token verification + Firestore for admin stats)
	if err := auth.InitFirebase(ctx); err != nil {
		log.Fatal().Err(err).Msg("firebase init failed")
	}

	// Payment provider client
	paymentClient, err := payments.NewFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("payment provider init failed")
	}

	// Session cache: Redis when configured, in-process otherwise
	var sessions cache.Cache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisCache, err := cache.NewRedis(addr, 10)
		if err != nil {
			log.Fatal().Err(err).Msg("redis init failed")
		}
		sessions = redisCache
	} else {
		log.Warn().Msg("REDIS_ADDR not set, using in-process session cache")
		sessions = cache.NewMemory()
	}

	// Reconciliation alert mailer (optional)
	mailer, err := alerts.NewFromEnv(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("alert mailer init failed")
	}

	// Gin setup
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging())

	// CORS settings
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY", middleware.SignatureHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(r, db, routes.Deps{
		Payments: paymentClient,
		Sessions: sessions,
		Mailer:   mailer,
		Hub:      orderControllers.NewHub(),
	})

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Info().Msgf("server running on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}

// initDatabase sets up the GORM DB connection
func initDatabase() *gorm.DB {
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
		if err != nil {
			log.Fatal().Err(err).Msg("db connection failed")
		}
		return db
	}

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("db connection failed")
	}
	return db
}
