package checkoutControllers

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/itzkennedydev/Gruby-Web-sub003/models"
	"github.com/itzkennedydev/Gruby-Web-sub003/payments"
)

var centsFactor = decimal.NewFromInt(100)

// toCents converts a decimal price into rounded minor currency units.
func toCents(price decimal.Decimal) int64 {
	return price.Mul(centsFactor).Round(0).IntPart()
}

// POST /user/checkout-session
//
// Converts the caller's cart into a hosted checkout session, one price entry
// per line item. An empty or all-invalid cart is rejected before the provider
// is contacted.
func CreateSessionHandler(db *gorm.DB, pc *payments.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID := userIDVal.(string)

		var order models.Order
		err := db.WithContext(c.Request.Context()).
			Preload("Items").
			Where("cart_key = ?", userID).
			First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}

		lineItems := make([]payments.SessionLineItem, 0, len(order.Items))
		for _, item := range order.Items {
			if item.Quantity <= 0 {
				continue
			}
			lineItems = append(lineItems, payments.SessionLineItem{
				ProductID:  item.ProductID,
				Name:       item.Name,
				UnitAmount: toCents(item.Price),
				Quantity:   item.Quantity,
			})
		}
		if len(lineItems) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
			return
		}

		sess, err := pc.CreateCheckoutSession(c.Request.Context(), payments.CreateSessionRequest{
			ClientReferenceID: userID,
			Currency:          currency(),
			LineItems:         lineItems,
			SuccessURL:        os.Getenv("CHECKOUT_SUCCESS_URL"),
			CancelURL:         os.Getenv("CHECKOUT_CANCEL_URL"),
		})
		if err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("checkout session creation failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": "Payment provider unavailable"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"session_id":  sess.ID,
			"payment_url": sess.URL,
		})
	}
}

func currency() string {
	if cur := os.Getenv("CHECKOUT_CURRENCY"); cur != "" {
		return cur
	}
	return "usd"
}
