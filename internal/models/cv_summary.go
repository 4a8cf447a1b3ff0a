package models

import (
	"time"

	"gorm.io/datatypes"
)

// DetectedSkills groups the skills extracted from a CV.
type DetectedSkills struct {
	Technical      []string `json:"technical"`
	Organizational []string `json:"organizational"`
}

// CVSummary is the derived artefact produced by the CV processing pipeline.
// Processed implies Summary and Skills are populated, possibly with fallbacks.
type CVSummary struct {
	ID               uint                               `gorm:"primaryKey" json:"id"`
	StudentProfileID uint                               `gorm:"uniqueIndex;not null" json:"student_profile_id"`
	ExtractedText    string                             `gorm:"type:text" json:"-"`
	Summary          string                             `gorm:"type:text" json:"summary"`
	Skills           datatypes.JSONType[DetectedSkills] `json:"skills"`
	Processed        bool                               `gorm:"not null;default:false;index" json:"processed"`
	ProcessedAt      *time.Time                         `json:"processed_at"`
	CreatedAt        time.Time                          `json:"created_at"`
	UpdatedAt        time.Time                          `json:"updated_at"`
}

// DetectedSkills returns the decoded skills payload.
func (s CVSummary) DetectedSkills() DetectedSkills {
	return s.Skills.Data()
}
