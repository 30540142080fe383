package models

import "fairway/src/types"

// VettingSubmission holds a caddie's one-time application answers. The
// unique index on caddie_id rejects resubmission at the store level.
type VettingSubmission struct {
	ID               uint                `gorm:"primarykey" json:"id"`
	CaddieID         uint                `gorm:"uniqueIndex" json:"caddie_id"`
	ExperienceAnswer string              `json:"experience_answer,omitempty"`
	EtiquetteAnswer  string              `json:"etiquette_answer,omitempty"`
	CourseAnswer     string              `json:"course_answer,omitempty"`
	Status           types.VettingStatus `gorm:"default:pending" json:"status,omitempty"`

	Caddie *CaddieProfile `gorm:"foreignKey:caddie_id" json:"caddie,omitempty"`

	types.Timestamps
}
