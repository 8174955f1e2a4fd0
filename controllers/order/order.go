package orderControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/itzkennedydev/Gruby-Web-sub003/alerts"
	"github.com/itzkennedydev/Gruby-Web-sub003/models"
	"github.com/itzkennedydev/Gruby-Web-sub003/payments"
)

var centsFactor = decimal.NewFromInt(100)

func fromCents(amount int64) decimal.Decimal {
	return decimal.NewFromInt(amount).Div(centsFactor)
}

// FinalizeByReference durably records a paid checkout session exactly once,
// keyed by the session id stored in Order.PaymentRef.
//
// If an order already carries the reference, it is returned unchanged. If the
// user still has an open cart order, that order is promoted in place
// (status → completed, cart key cleared, items and total rewritten from the
// provider's authoritative line items). Otherwise a fresh completed order is
// inserted from the session. Both entry points (the buyer's finalize call and
// the provider webhook) run through this one function, so a replay on either
// path is a no-op.
func FinalizeByReference(db *gorm.DB, userID string, sess *payments.CheckoutSession) (*models.Order, error) {
	if sess.PaymentStatus != payments.SessionPaid {
		return nil, errors.New("payment not completed")
	}

	var result models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		var existing models.Order
		err := tx.Preload("Items").Where("payment_ref = ?", sess.ID).First(&existing).Error
		if err == nil {
			result = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		items := make([]models.OrderItem, 0, len(sess.LineItems))
		total := decimal.Zero
		for _, li := range sess.LineItems {
			if li.Quantity <= 0 {
				continue
			}
			price := fromCents(li.UnitAmount)
			items = append(items, models.OrderItem{
				ProductID: li.ProductID,
				Name:      li.Name,
				Price:     price,
				Quantity:  li.Quantity,
			})
			total = total.Add(price.Mul(decimal.NewFromInt(int64(li.Quantity))))
		}

		ref := sess.ID

		var cart models.Order
		q := tx.Where("cart_key = ?", userID)
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		err = q.First(&cart).Error
		switch {
		case err == nil:
			// Promote the cart order in place.
			if err := tx.Where("order_id = ?", cart.ID).Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
			for i := range items {
				items[i].OrderID = cart.ID
			}
			if len(items) > 0 {
				if err := tx.Create(&items).Error; err != nil {
					return err
				}
			}
			updates := map[string]interface{}{
				"status":      models.OrderStatusCompleted,
				"cart_key":    nil,
				"payment_ref": ref,
				"total":       total,
			}
			if err := tx.Model(&cart).Updates(updates).Error; err != nil {
				return err
			}
			cart.Status = models.OrderStatusCompleted
			cart.CartKey = nil
			cart.PaymentRef = &ref
			cart.Total = total
			cart.Items = items
			result = cart
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			// No open cart (cleared elsewhere, or webhook arrived first);
			// record the session as a fresh completed order.
			order := models.Order{
				UserID:     userID,
				Status:     models.OrderStatusCompleted,
				PaymentRef: &ref,
				Total:      total,
				Items:      items,
			}
			if err := tx.Create(&order).Error; err != nil {
				return err
			}
			result = order
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

type finalizeRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// POST /orders
//
// The client-driven finalize path: fetch the authoritative session from the
// provider, then record it through FinalizeByReference.
func FinalizeOrderHandler(db *gorm.DB, pc *payments.Client, mailer *alerts.Mailer, hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID := userIDVal.(string)

		var req finalizeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
			return
		}

		ctx := c.Request.Context()
		sess, err := pc.GetCheckoutSession(ctx, req.SessionID)
		if err != nil {
			log.Error().Err(err).Str("session_id", req.SessionID).Msg("session retrieval failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": "Payment provider unavailable, retry later"})
			return
		}
		if sess.PaymentStatus != payments.SessionPaid {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Payment not completed"})
			return
		}

		order, err := FinalizeByReference(db.WithContext(ctx), userID, sess)
		if err != nil {
			// Money already moved; alert for manual reconciliation.
			log.Error().Err(err).Str("session_id", sess.ID).Str("user_id", userID).
				Msg("finalize write failed after confirmed payment")
			mailer.ReconciliationFailure(ctx, sess.ID, userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record order, support has been notified"})
			return
		}

		hub.Broadcast(order)
		c.JSON(http.StatusOK, order)
	}
}

// GET /orders
func GetUserOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID := userIDVal.(string)

		var orders []models.Order
		if err := db.WithContext(c.Request.Context()).
			Preload("Items").
			Where("user_id = ? AND status = ?", userID, models.OrderStatusCompleted).
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}

		c.JSON(http.StatusOK, orders)
	}
}

// GET /admin/orders
func GetAllOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		if err := db.WithContext(c.Request.Context()).
			Preload("User").
			Preload("Items").
			Where("status <> ?", models.OrderStatusCart).
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}
