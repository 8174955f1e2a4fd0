package cartControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/itzkennedydev/Gruby-Web-sub003/models"
)

type SyncItemInput struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type SyncCartRequest struct {
	Items []SyncItemInput `json:"items"`
}

// SyncCart atomically replaces the user's cart contents. The flow is
// find-or-create of the single cart order, delete of the old items, insert of
// the valid new ones, and a total recompute, all inside one transaction so a
// failure leaves the previous cart intact.
//
// The find-or-create inserts with ON CONFLICT DO NOTHING on the unique
// cart_key and then locks the surviving row, which serializes concurrent
// syncs for the same user and keeps the one-cart-per-user invariant under
// races.
func SyncCart(db *gorm.DB, userID string, items []SyncItemInput) (*models.Order, error) {
	var result models.Order

	err := db.Transaction(func(tx *gorm.DB) error {
		cartKey := userID
		seed := models.Order{
			UserID:  userID,
			Status:  models.OrderStatusCart,
			CartKey: &cartKey,
			Total:   decimal.Zero,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cart_key"}},
			DoNothing: true,
		}).Create(&seed).Error; err != nil {
			return err
		}

		var order models.Order
		q := tx.Where("cart_key = ?", userID)
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.First(&order).Error; err != nil {
			return err
		}

		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}

		valid := make([]SyncItemInput, 0, len(items))
		ids := make([]uint, 0, len(items))
		for _, in := range items {
			if in.ProductID == 0 || in.Quantity <= 0 {
				continue
			}
			valid = append(valid, in)
			ids = append(ids, in.ProductID)
		}

		// Name snapshots come from the product rows; the price snapshot is
		// the client's, trusted only because this is a cart, not a
		// finalized order.
		names := make(map[uint]string, len(ids))
		if len(ids) > 0 {
			var products []models.Product
			if err := tx.Where("id IN ?", ids).Find(&products).Error; err != nil {
				return err
			}
			for _, p := range products {
				names[p.ID] = p.Name
			}
		}

		total := decimal.Zero
		rows := make([]models.OrderItem, 0, len(valid))
		for _, in := range valid {
			rows = append(rows, models.OrderItem{
				OrderID:   order.ID,
				ProductID: in.ProductID,
				Name:      names[in.ProductID],
				Price:     in.Price,
				Quantity:  in.Quantity,
			})
			total = total.Add(in.Price.Mul(decimal.NewFromInt(int64(in.Quantity))))
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&order).Update("total", total).Error; err != nil {
			return err
		}

		order.Total = total
		order.Items = rows
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// PUT /user/cart
func SyncCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID := userIDVal.(string)

		var req SyncCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		order, err := SyncCart(db.WithContext(c.Request.Context()), userID, req.Items)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sync cart"})
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

// GET /user/cart
func GetCartHandler(db *gorm.DB) gin.HandlerFunc {
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
			// No sync yet; an empty cart, not an error.
			c.JSON(http.StatusOK, gin.H{
				"status": models.OrderStatusCart,
				"items":  []models.OrderItem{},
				"total":  decimal.Zero,
			})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}

		c.JSON(http.StatusOK, order)
	}
}
