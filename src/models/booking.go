package models

import (
	"fairway/src/types"
	"time"
)

// Booking rows are never hard-deleted. Status moves only through the
// transitions permitted in common.CanTransition.
type Booking struct {
	ID                uint                `gorm:"primarykey" json:"id"`
	Status            types.BookingStatus `gorm:"default:pending" json:"status,omitempty"`
	ServiceID         uint                `json:"service_id,omitempty"`
	PlayerID          uint                `json:"player_id,omitempty"`
	ProviderID        uint                `json:"provider_id,omitempty"`
	ScheduledAt       *time.Time          `json:"scheduled_at,omitempty"`
	TotalPrice        float64             `json:"total_price,omitempty"`
	Notes             *string             `json:"notes,omitempty"`
	CheckoutSessionId *string             `gorm:"uniqueIndex" json:"-"`
	Metadata          types.Metadata      `gorm:"type:jsonb" json:"metadata,omitempty"`

	Service  *Service `gorm:"foreignKey:service_id" json:"service,omitempty"`
	Player   *User    `gorm:"foreignKey:player_id" json:"player,omitempty"`
	Provider *User    `gorm:"foreignKey:provider_id" json:"provider,omitempty"`
	Review   *Review  `gorm:"foreignKey:booking_id" json:"review,omitempty"`

	types.Timestamps
}
