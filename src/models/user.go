package models

import "fairway/src/types"

type User struct {
	ID               uint    `gorm:"primarykey" json:"id"`
	Name             string  `json:"name,omitempty"`
	Email            string  `gorm:"uniqueIndex" json:"email,omitempty"`
	Role             string  `json:"role,omitempty"`
	UID              string  `json:"uid,omitempty"`
	StripeCustomerId *string `json:"-"`

	Bookings []Booking `gorm:"foreignKey:player_id" json:"bookings,omitempty"`
	Services []Service `gorm:"foreignKey:provider_id" json:"services,omitempty"`

	types.Timestamps
}
