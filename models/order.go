package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusCart      OrderStatus = "cart"      // In-progress, unpurchased selection
	OrderStatusCompleted OrderStatus = "completed" // Payment confirmed and recorded
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is both the open cart (status "cart") and the durable purchase record
// (status "completed").
//
// CartKey holds the owning user id while the order is a cart and is cleared on
// finalization; its unique index is what guarantees at most one open cart per
// user even under concurrent syncs.
//
// PaymentRef holds the provider checkout-session id once the order is
// finalized; its unique index makes finalization idempotent per payment.
type Order struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	UserID     string          `gorm:"index;not null" json:"user_id"`
	User       User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Status     OrderStatus     `gorm:"type:VARCHAR(20);default:'cart'" json:"status"`
	CartKey    *string         `gorm:"uniqueIndex" json:"-"`
	PaymentRef *string         `gorm:"uniqueIndex" json:"payment_ref,omitempty"`
	Total      decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total"`
	Items      []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// OrderItem snapshots name and price at add-to-cart time so historical orders
// stay stable against later product edits.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"index;not null" json:"order_id"`
	ProductID uint            `gorm:"not null" json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Quantity  int             `gorm:"not null" json:"quantity"`
}
