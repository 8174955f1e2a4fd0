package cookControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/itzkennedydev/Gruby-Web-sub003/models"
	"github.com/itzkennedydev/Gruby-Web-sub003/payments"
)

// ApplyAccount maps a provider account onto the cook's onboarding fields.
// All provider-shape defaulting lives here and in ApplySubscription; nothing
// else writes these columns.
func ApplyAccount(cook *models.HomeCook, acct *payments.Account) {
	cook.PaymentAccountID = acct.ID
	switch {
	case acct.Disabled:
		cook.PaymentAccountStatus = models.AccountStatusRestricted
	case acct.ChargesEnabled:
		cook.PaymentAccountStatus = models.AccountStatusEnabled
	default:
		cook.PaymentAccountStatus = models.AccountStatusPending
	}
	cook.OnboardingCompleted = acct.ChargesEnabled && acct.DetailsSubmitted
}

// ApplySubscription maps a provider subscription onto the cook's billing
// fields. Unknown statuses project to inactive rather than being preserved.
func ApplySubscription(cook *models.HomeCook, sub *payments.Subscription) {
	cook.SubscriptionID = sub.ID
	switch sub.Status {
	case "active":
		cook.SubscriptionStatus = models.SubscriptionStatusActive
	case "past_due":
		cook.SubscriptionStatus = models.SubscriptionStatusPastDue
	case "cancelled", "canceled":
		cook.SubscriptionStatus = models.SubscriptionStatusCancelled
	default:
		cook.SubscriptionStatus = models.SubscriptionStatusInactive
	}
	if sub.CurrentPeriodEnd > 0 {
		endsAt := time.Unix(sub.CurrentPeriodEnd, 0)
		cook.SubscriptionEndsAt = &endsAt
	} else {
		cook.SubscriptionEndsAt = nil
	}
}

type createCookRequest struct {
	KitchenName string `json:"kitchen_name" binding:"required"`
	Bio         string `json:"bio"`
	Cuisine     string `json:"cuisine"`
}

// POST /cooks
//
// Creates the seller profile and a connected provider account, returning the
// hosted onboarding URL. A user owns at most one profile.
func CreateCookHandler(db *gorm.DB, pc *payments.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID := userIDVal.(string)

		var req createCookRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		ctx := c.Request.Context()

		var existing models.HomeCook
		err := db.WithContext(ctx).Where("user_id = ?", userID).First(&existing).Error
		if err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Seller profile already exists"})
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		var user models.User
		if err := db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
			return
		}

		acct, err := pc.CreateAccount(ctx, user.Email)
		if err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("provider account creation failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": "Payment provider unavailable"})
			return
		}

		cook := models.HomeCook{
			UserID:      userID,
			KitchenName: req.KitchenName,
			Bio:         req.Bio,
			Cuisine:     req.Cuisine,
		}
		ApplyAccount(&cook, acct)

		if err := db.WithContext(ctx).Create(&cook).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create seller profile"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"cook":           cook,
			"onboarding_url": acct.OnboardingURL,
		})
	}
}

// GET /cooks/me
func GetOwnCookHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID := userIDVal.(string)

		var cook models.HomeCook
		err := db.WithContext(c.Request.Context()).
			Preload("Products").
			Where("user_id = ?", userID).
			First(&cook).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Seller profile not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		c.JSON(http.StatusOK, cook)
	}
}

// POST /cooks/sync
//
// Poll path of the provider-state projection: re-fetch the account and
// subscription and write them onto the row. The webhook path applies the
// same mapping.
func SyncCookHandler(db *gorm.DB, pc *payments.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID := userIDVal.(string)

		ctx := c.Request.Context()

		var cook models.HomeCook
		err := db.WithContext(ctx).Where("user_id = ?", userID).First(&cook).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Seller profile not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		if cook.PaymentAccountID != "" {
			acct, err := pc.GetAccount(ctx, cook.PaymentAccountID)
			if err != nil {
				log.Error().Err(err).Str("account_id", cook.PaymentAccountID).Msg("account sync failed")
				c.JSON(http.StatusBadGateway, gin.H{"error": "Payment provider unavailable"})
				return
			}
			ApplyAccount(&cook, acct)
		}

		if cook.SubscriptionID != "" {
			sub, err := pc.GetSubscription(ctx, cook.SubscriptionID)
			if err != nil {
				log.Error().Err(err).Str("subscription_id", cook.SubscriptionID).Msg("subscription sync failed")
				c.JSON(http.StatusBadGateway, gin.H{"error": "Payment provider unavailable"})
				return
			}
			ApplySubscription(&cook, sub)
		}

		if err := db.WithContext(ctx).Save(&cook).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save seller profile"})
			return
		}

		c.JSON(http.StatusOK, cook)
	}
}
