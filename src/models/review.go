package models

import "fairway/src/types"

// Review is one-to-one with a completed Booking and immutable once written.
type Review struct {
	ID         uint    `gorm:"primarykey" json:"id"`
	BookingID  uint    `gorm:"uniqueIndex" json:"booking_id"`
	ProviderID uint    `json:"provider_id,omitempty"`
	ReviewerID uint    `json:"reviewer_id,omitempty"`
	Rating     int     `json:"rating"`
	Comment    *string `json:"comment,omitempty"`

	Booking  *Booking `gorm:"foreignKey:booking_id" json:"booking,omitempty"`
	Reviewer *User    `gorm:"foreignKey:reviewer_id" json:"reviewer,omitempty"`

	types.Timestamps
}
