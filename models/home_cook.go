package models

import "time"

type AccountStatus string
type SubscriptionStatus string

const (
	// Payment-provider account statuses
	AccountStatusNone       AccountStatus = "none"       // No provider account yet
	AccountStatusPending    AccountStatus = "pending"    // Onboarding started, charges not enabled
	AccountStatusEnabled    AccountStatus = "enabled"    // Fully onboarded, can receive payouts
	AccountStatusRestricted AccountStatus = "restricted" // Provider flagged the account

	// Subscription statuses (values mirrored verbatim from the provider)
	SubscriptionStatusInactive  SubscriptionStatus = "inactive"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusPastDue   SubscriptionStatus = "past_due"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// HomeCook is a seller profile. Account and subscription fields are a
// projection of provider state and are only written by the onboarding sync
// and webhook handlers.
type HomeCook struct {
	ID                   uint               `gorm:"primaryKey" json:"id"`
	UserID               string             `gorm:"uniqueIndex;not null" json:"user_id"`
	KitchenName          string             `gorm:"not null" json:"kitchen_name"`
	Bio                  string             `json:"bio"`
	Cuisine              string             `json:"cuisine"`
	PaymentAccountID     string             `gorm:"index" json:"payment_account_id"`
	PaymentAccountStatus AccountStatus      `gorm:"type:VARCHAR(20);default:'none'" json:"payment_account_status"`
	SubscriptionID       string             `json:"subscription_id"`
	SubscriptionStatus   SubscriptionStatus `gorm:"type:VARCHAR(20);default:'inactive'" json:"subscription_status"`
	SubscriptionEndsAt   *time.Time         `json:"subscription_ends_at,omitempty"`
	OnboardingCompleted  bool               `gorm:"default:false" json:"onboarding_completed"`
	Products             []Product          `gorm:"foreignKey:HomeCookID;constraint:OnDelete:CASCADE" json:"products,omitempty"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}
