package paymentControllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	cookControllers "github.com/itzkennedydev/Gruby-Web-sub003/controllers/cook"
	orderControllers "github.com/itzkennedydev/Gruby-Web-sub003/controllers/order"
	"github.com/itzkennedydev/Gruby-Web-sub003/models"
	"github.com/itzkennedydev/Gruby-Web-sub003/payments"
)

// Event is the provider's webhook envelope. Signature verification happens
// in middleware before this handler ever sees the payload.
type Event struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventAccountUpdated      = "account.updated"
	EventSubscriptionUpdated = "subscription.updated"
	EventSubscriptionDeleted = "subscription.deleted"
)

// POST /payment/webhook
//
// Provider deliveries may be duplicated or arrive out of order, so every
// event id is recorded in webhook_events inside the same transaction as its
// side effects; a replay hits the primary-key conflict and becomes a no-op.
func WebhookHandler(db *gorm.DB, hub *orderControllers.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		var evt Event
		if err := c.ShouldBindJSON(&evt); err != nil || evt.ID == "" || evt.Type == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event payload"})
			return
		}

		var finalized *models.Order
		err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.WebhookEvent{
				ID:          evt.ID,
				Type:        evt.Type,
				ProcessedAt: time.Now(),
			})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// Duplicate delivery, already processed.
				return nil
			}

			switch evt.Type {
			case EventCheckoutCompleted:
				var sess payments.CheckoutSession
				if err := json.Unmarshal(evt.Data, &sess); err != nil {
					return err
				}
				if sess.ClientReferenceID == "" {
					return errors.New("session missing client reference")
				}
				order, err := orderControllers.FinalizeByReference(tx, sess.ClientReferenceID, &sess)
				if err != nil {
					return err
				}
				finalized = order
				return nil

			case EventAccountUpdated:
				var acct payments.Account
				if err := json.Unmarshal(evt.Data, &acct); err != nil {
					return err
				}
				return projectAccount(tx, &acct)

			case EventSubscriptionUpdated, EventSubscriptionDeleted:
				var sub payments.Subscription
				if err := json.Unmarshal(evt.Data, &sub); err != nil {
					return err
				}
				if evt.Type == EventSubscriptionDeleted {
					sub.Status = "cancelled"
				}
				return projectSubscription(tx, &sub)

			default:
				// Unknown types are acknowledged so the provider stops
				// retrying them, but still recorded for audit.
				log.Warn().Str("event_id", evt.ID).Str("type", evt.Type).Msg("unhandled webhook event type")
				return nil
			}
		})
		if err != nil {
			log.Error().Err(err).Str("event_id", evt.ID).Str("type", evt.Type).Msg("webhook processing failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process event"})
			return
		}

		hub.Broadcast(finalized)
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

func projectAccount(tx *gorm.DB, acct *payments.Account) error {
	var cook models.HomeCook
	err := tx.Where("payment_account_id = ?", acct.ID).First(&cook).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Account we never issued; nothing to project.
		log.Warn().Str("account_id", acct.ID).Msg("webhook for unknown account")
		return nil
	}
	if err != nil {
		return err
	}
	cookControllers.ApplyAccount(&cook, acct)
	return tx.Save(&cook).Error
}

func projectSubscription(tx *gorm.DB, sub *payments.Subscription) error {
	var cook models.HomeCook
	err := tx.Where("payment_account_id = ?", sub.AccountID).First(&cook).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn().Str("account_id", sub.AccountID).Str("subscription_id", sub.ID).
			Msg("webhook for unknown subscription account")
		return nil
	}
	if err != nil {
		return err
	}
	cookControllers.ApplySubscription(&cook, sub)
	return tx.Save(&cook).Error
}
