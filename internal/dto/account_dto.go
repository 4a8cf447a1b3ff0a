package dto

import (
	"time"

	"github.com/noah-isme/stagehub-api/internal/models"
)

// RegisterRequest creates a student or company account.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	Role        string `json:"role" validate:"required,oneof=student company"`
	FirstName   string `json:"first_name" validate:"required_if=Role student,max=120"`
	LastName    string `json:"last_name" validate:"required_if=Role student,max=120"`
	CompanyName string `json:"company_name" validate:"required_if=Role company,max=255"`
}

// UserResponse serializes an account.
type UserResponse struct {
	ID        uint        `json:"id"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	Active    bool        `json:"active"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewUserResponse converts a user model into a DTO.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Role:      user.Role,
		Active:    user.Active,
		CreatedAt: user.CreatedAt,
	}
}

// SkillInput declares a skill with its level from 1 to 5.
type SkillInput struct {
	Name  string `json:"name" validate:"required,min=1,max=120"`
	Level int    `json:"level" validate:"required,min=1,max=5"`
}

// SkillsReplaceRequest replaces the declared skills of a student.
type SkillsReplaceRequest struct {
	Skills []SkillInput `json:"skills" validate:"max=50,dive"`
}

// SkillResponse serializes a skill link.
type SkillResponse struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// NewStudentSkillResponses converts student skill links into DTOs.
func NewStudentSkillResponses(skills []models.StudentSkill) []SkillResponse {
	out := make([]SkillResponse, 0, len(skills))
	for _, skill := range skills {
		out = append(out, SkillResponse{Name: skill.Skill.Name, Level: skill.Level})
	}
	return out
}

// NewOfferSkillResponses converts offer skill links into DTOs.
func NewOfferSkillResponses(skills []models.OfferSkill) []SkillResponse {
	out := make([]SkillResponse, 0, len(skills))
	for _, skill := range skills {
		out = append(out, SkillResponse{Name: skill.Skill.Name, Level: skill.Level})
	}
	return out
}

// StudentProfileUpdateRequest captures partial profile updates.
type StudentProfileUpdateRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=1,max=120"`
	LastName  *string `json:"last_name" validate:"omitempty,min=1,max=120"`
	School    *string `json:"school" validate:"omitempty,max=255"`
	Level     *string `json:"level" validate:"omitempty,max=64"`
	City      *string `json:"city" validate:"omitempty,max=120"`
	Bio       *string `json:"bio" validate:"omitempty,max=4000"`
}

// CVSummaryResponse serializes the processed CV summary.
type CVSummaryResponse struct {
	Summary     string                `json:"summary"`
	Skills      models.DetectedSkills `json:"skills"`
	Processed   bool                  `json:"processed"`
	ProcessedAt *time.Time            `json:"processed_at"`
}

// NewCVSummaryResponse converts a CV summary model into a DTO.
func NewCVSummaryResponse(summary models.CVSummary) CVSummaryResponse {
	return CVSummaryResponse{
		Summary:     summary.Summary,
		Skills:      summary.DetectedSkills(),
		Processed:   summary.Processed,
		ProcessedAt: summary.ProcessedAt,
	}
}

// StudentProfileResponse serializes a student profile.
type StudentProfileResponse struct {
	ID        uint               `json:"id"`
	UserID    uint               `json:"user_id"`
	FirstName string             `json:"first_name"`
	LastName  string             `json:"last_name"`
	School    string             `json:"school"`
	Level     string             `json:"level"`
	City      string             `json:"city"`
	Bio       string             `json:"bio"`
	HasCV     bool               `json:"has_cv"`
	Skills    []SkillResponse    `json:"skills"`
	CVSummary *CVSummaryResponse `json:"cv_summary,omitempty"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// NewStudentProfileResponse converts a profile into a DTO.
func NewStudentProfileResponse(profile models.StudentProfile) StudentProfileResponse {
	response := StudentProfileResponse{
		ID:        profile.ID,
		UserID:    profile.UserID,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		School:    profile.School,
		Level:     profile.Level,
		City:      profile.City,
		Bio:       profile.Bio,
		HasCV:     profile.HasCV(),
		Skills:    NewStudentSkillResponses(profile.Skills),
		UpdatedAt: profile.UpdatedAt,
	}
	if profile.CVSummary != nil && profile.CVSummary.Processed {
		summary := NewCVSummaryResponse(*profile.CVSummary)
		response.CVSummary = &summary
	}
	return response
}

// CompanyProfileUpdateRequest captures partial company updates.
type CompanyProfileUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Sector      *string `json:"sector" validate:"omitempty,max=120"`
	City        *string `json:"city" validate:"omitempty,max=120"`
	Website     *string `json:"website" validate:"omitempty,url,max=255"`
	Description *string `json:"description" validate:"omitempty,max=4000"`
}

// CompanyProfileResponse serializes a company profile.
type CompanyProfileResponse struct {
	ID          uint      `json:"id"`
	UserID      uint      `json:"user_id"`
	Name        string    `json:"name"`
	Sector      string    `json:"sector"`
	City        string    `json:"city"`
	Website     string    `json:"website"`
	Description string    `json:"description"`
	LogoURL     string    `json:"logo_url"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewCompanyProfileResponse converts a company profile into a DTO.
func NewCompanyProfileResponse(company models.CompanyProfile) CompanyProfileResponse {
	return CompanyProfileResponse{
		ID:          company.ID,
		UserID:      company.UserID,
		Name:        company.Name,
		Sector:      company.Sector,
		City:        company.City,
		Website:     company.Website,
		Description: company.Description,
		LogoURL:     company.LogoURL,
		UpdatedAt:   company.UpdatedAt,
	}
}
