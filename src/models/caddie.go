package models

import (
	"fairway/src/types"
	"time"
)

// CaddieProfile carries the caddie-side provider state. Subscription fields
// are written only by Stripe webhook handlers.
type CaddieProfile struct {
	ID                   uint                     `gorm:"primarykey" json:"id"`
	UserID               uint                     `gorm:"uniqueIndex" json:"user_id"`
	Bio                  string                   `json:"bio,omitempty"`
	Rate                 float64                  `json:"rate,omitempty"`
	Verified             bool                     `json:"verified"`
	SubscriptionStatus   types.SubscriptionStatus `gorm:"default:none" json:"subscription_status,omitempty"`
	SubscriptionEndsAt   *time.Time               `json:"subscription_ends_at,omitempty"`
	StripeCustomerId     *string                  `json:"-"`
	StripeSubscriptionId *string                  `json:"-"`
	StripeAccountId      *string                  `json:"-"`

	User *User `gorm:"foreignKey:user_id" json:"user,omitempty"`

	types.Timestamps
}
