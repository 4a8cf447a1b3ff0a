package models

import "time"

// Role identifies the kind of account acting on the platform.
type Role string

const (
	RoleStudent Role = "student"
	RoleCompany Role = "company"
	RoleAdmin   Role = "admin"
)

// ParseRole normalises a raw role claim. Unknown values yield an empty role.
func ParseRole(raw string) Role {
	switch Role(raw) {
	case RoleStudent, RoleCompany, RoleAdmin:
		return Role(raw)
	default:
		return ""
	}
}

// User is the authentication identity shared by students, companies and administrators.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         Role      `gorm:"size:16;not null;index" json:"role"`
	Active       bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StudentProfile carries the student facing data and the uploaded CV reference.
type StudentProfile struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	User      User           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	FirstName string         `gorm:"size:120" json:"first_name"`
	LastName  string         `gorm:"size:120" json:"last_name"`
	School    string         `gorm:"size:255" json:"school"`
	Level     string         `gorm:"size:64" json:"level"`
	City      string         `gorm:"size:120" json:"city"`
	Bio       string         `gorm:"type:text" json:"bio"`
	CVPath    *string        `gorm:"size:512" json:"cv_path"`
	Skills    []StudentSkill `gorm:"foreignKey:StudentProfileID" json:"skills,omitempty"`
	CVSummary *CVSummary     `gorm:"foreignKey:StudentProfileID" json:"cv_summary,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// HasCV reports whether the student uploaded a CV file.
func (p StudentProfile) HasCV() bool {
	return p.CVPath != nil && *p.CVPath != ""
}

// FullName joins the first and last names.
func (p StudentProfile) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}

// CompanyProfile describes a recruiting organisation.
type CompanyProfile struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	User        User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Sector      string    `gorm:"size:120" json:"sector"`
	City        string    `gorm:"size:120" json:"city"`
	Website     string    `gorm:"size:255" json:"website"`
	Description string    `gorm:"type:text" json:"description"`
	LogoURL     string    `gorm:"size:512" json:"logo_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
