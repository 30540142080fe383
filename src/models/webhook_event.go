package models

import "fairway/src/types"

// WebhookEvent records every processed Stripe event. Stripe delivers
// at-least-once; the unique index on event_id turns a redelivery into a
// duplicate-key error the webhook handler treats as a successful no-op.
type WebhookEvent struct {
	ID                uint    `gorm:"primarykey" json:"id"`
	EventID           string  `gorm:"uniqueIndex" json:"event_id"`
	Type              string  `json:"type,omitempty"`
	CheckoutSessionId *string `json:"checkout_session_id,omitempty"`

	types.Timestamps
}
