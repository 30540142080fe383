package models

import "fairway/src/types"

type InstructorProfile struct {
	ID              uint    `gorm:"primarykey" json:"id"`
	UserID          uint    `gorm:"uniqueIndex" json:"user_id"`
	Bio             string  `json:"bio,omitempty"`
	Rate            float64 `json:"rate,omitempty"`
	Verified        bool    `json:"verified"`
	StripeAccountId *string `json:"-"`

	User *User `gorm:"foreignKey:user_id" json:"user,omitempty"`

	types.Timestamps
}
