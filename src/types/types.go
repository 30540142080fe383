package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type BookingStatus string

const (
	BOOKING_PENDING   BookingStatus = "pending"
	BOOKING_CONFIRMED BookingStatus = "confirmed"
	BOOKING_DECLINED  BookingStatus = "declined"
	BOOKING_CANCELLED BookingStatus = "cancelled"
	BOOKING_COMPLETED BookingStatus = "completed"
)

type SubscriptionStatus string

const (
	SUBSCRIPTION_NONE      SubscriptionStatus = "none"
	SUBSCRIPTION_ACTIVE    SubscriptionStatus = "active"
	SUBSCRIPTION_PAST_DUE  SubscriptionStatus = "past_due"
	SUBSCRIPTION_CANCELLED SubscriptionStatus = "cancelled"
)

type VettingStatus string

const (
	VETTING_PENDING  VettingStatus = "pending"
	VETTING_APPROVED VettingStatus = "approved"
	VETTING_REJECTED VettingStatus = "rejected"
)

const (
	ROLE_GOLFER     string = "golfer"
	ROLE_CADDIE     string = "caddie"
	ROLE_INSTRUCTOR string = "instructor"
	ROLE_ADMIN      string = "admin"
)

type Metadata map[string]string

func (m Metadata) Value() (driver.Value, error) {
	valueString, err := json.Marshal(m)
	return string(valueString), err
}
func (m *Metadata) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, m)
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type CreateBookingRequestBody struct {
	ServiceID   uint    `json:"service_id" binding:"required"`
	ProviderID  uint    `json:"provider_id" binding:"required"`
	ScheduledAt string  `json:"scheduled_at" binding:"required,bookabledate" time_format:"2006-01-02 15:04:05 -07:00"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Notes       *string `json:"notes,omitempty"`
}

type CreateCheckoutRequestBody struct {
	ServiceID   uint    `json:"service_id" binding:"required"`
	ProviderID  uint    `json:"provider_id" binding:"required"`
	ScheduledAt string  `json:"scheduled_at" binding:"required,bookabledate" time_format:"2006-01-02 15:04:05 -07:00"`
	Notes       *string `json:"notes,omitempty"`
}

type UpdateBookingStatusRequestBody struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed declined cancelled completed"`
}

type CreateReviewRequestBody struct {
	Rating  int     `json:"rating" binding:"required,min=1,max=5"`
	Comment *string `json:"comment,omitempty"`
}

type CreateServiceRequestBody struct {
	Title        string  `json:"title" binding:"required"`
	Description  string  `json:"description,omitempty"`
	Price        float64 `json:"price" binding:"required,gt=0"`
	DurationMins uint    `json:"duration_mins" binding:"required,gt=0"`
}

type UpdateServiceAvailabilityRequestBody struct {
	Available *bool `json:"available" binding:"required"`
}

type ProviderOnboardingRequestBody struct {
	Role string  `json:"role" binding:"required,oneof=caddie instructor"`
	Bio  string  `json:"bio,omitempty"`
	Rate float64 `json:"rate" binding:"required,gt=0"`
}

type VettingRequestBody struct {
	ExperienceAnswer string `json:"experience_answer" binding:"required,min=40"`
	EtiquetteAnswer  string `json:"etiquette_answer" binding:"required,min=40"`
	CourseAnswer     string `json:"course_answer" binding:"required,min=40"`
}

type ReviewVettingRequestBody struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
}

type AuthTokenRequestBody struct {
	Email string `json:"email" binding:"required,email"`
}
