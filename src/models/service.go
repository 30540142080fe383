package models

import "fairway/src/types"

type Service struct {
	ID           uint    `gorm:"primarykey" json:"id"`
	Title        string  `json:"title,omitempty"`
	Slug         string  `gorm:"index" json:"slug,omitempty"`
	Description  string  `json:"description,omitempty"`
	Price        float64 `json:"price,omitempty"`
	DurationMins uint    `json:"duration_mins,omitempty"`
	Available    bool    `gorm:"default:true" json:"available"`
	ProviderID   uint    `json:"provider_id,omitempty"`

	Provider *User `gorm:"foreignKey:provider_id" json:"provider,omitempty"`

	types.Timestamps
}
