package models

import "time"

// OfferStatus is the publication state of an offer.
type OfferStatus string

const (
	OfferStatusActive   OfferStatus = "active"
	OfferStatusInactive OfferStatus = "inactive"
	OfferStatusClosed   OfferStatus = "closed"
)

// Valid reports whether the status is one of the known values.
func (s OfferStatus) Valid() bool {
	switch s {
	case OfferStatusActive, OfferStatusInactive, OfferStatusClosed:
		return true
	default:
		return false
	}
}

// AcceptsApplications reports whether students may apply.
func (s OfferStatus) AcceptsApplications() bool {
	return s == OfferStatusActive
}

// ContractType categorises offers.
type ContractType string

const (
	ContractInternship     ContractType = "stage"
	ContractApprenticeship ContractType = "alternance"
	ContractPermanent      ContractType = "cdi"
	ContractFixedTerm      ContractType = "cdd"
)

// Offer is a job, internship or apprenticeship posting owned by a company.
type Offer struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CompanyID    uint           `gorm:"not null;index" json:"company_id"`
	Company      CompanyProfile `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"company"`
	Title        string         `gorm:"size:255;not null" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	ContractType ContractType   `gorm:"size:32;not null" json:"contract_type"`
	City         string         `gorm:"size:120;index" json:"city"`
	Remote       bool           `gorm:"not null;default:false" json:"remote"`
	Status       OfferStatus    `gorm:"size:16;not null;index" json:"status"`
	Skills       []OfferSkill   `gorm:"foreignKey:OfferID" json:"skills,omitempty"`
	Test         *ScreeningTest `gorm:"foreignKey:OfferID" json:"test,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Skill is a normalised competence name shared by students and offers.
type Skill struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:120;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// OfferSkill links an offer to a required skill with the expected level.
type OfferSkill struct {
	ID      uint  `gorm:"primaryKey" json:"id"`
	OfferID uint  `gorm:"not null;uniqueIndex:idx_offer_skill" json:"offer_id"`
	SkillID uint  `gorm:"not null;uniqueIndex:idx_offer_skill" json:"skill_id"`
	Skill   Skill `json:"skill"`
	Level   int   `gorm:"not null;default:1" json:"level"`
}

// StudentSkill links a student to a declared skill with a self-assessed level.
type StudentSkill struct {
	ID               uint  `gorm:"primaryKey" json:"id"`
	StudentProfileID uint  `gorm:"not null;uniqueIndex:idx_student_skill" json:"student_profile_id"`
	SkillID          uint  `gorm:"not null;uniqueIndex:idx_student_skill" json:"skill_id"`
	Skill            Skill `json:"skill"`
	Level            int   `gorm:"not null;default:1" json:"level"`
}
