package dto

import (
	"time"

	"github.com/noah-isme/stagehub-api/internal/models"
)

// ApplyRequest carries the optional cover letter of an application.
type ApplyRequest struct {
	CoverLetter string `json:"cover_letter" validate:"omitempty,max=5000"`
}

// ApplicationStatusRequest drives a company status transition.
// Interview scheduling fields are required when moving to entretien.
type ApplicationStatusRequest struct {
	Status            string     `json:"status" validate:"required,oneof=vue entretien acceptee refusee"`
	InterviewDate     *time.Time `json:"interview_date" validate:"required_if=Status entretien"`
	InterviewType     string     `json:"interview_type" validate:"required_if=Status entretien,omitempty,oneof=presentiel visio telephone"`
	InterviewLocation string     `json:"interview_location" validate:"required_if=InterviewType presentiel,max=255"`
	InterviewLink     string     `json:"interview_link" validate:"required_if=InterviewType visio,omitempty,url,max=512"`
	Message           string     `json:"message" validate:"omitempty,max=2000"`
}

// ApplicationListRequest filters application listings.
type ApplicationListRequest struct {
	ListRequest
	Status string `query:"status" validate:"omitempty,oneof=en_attente vue entretien acceptee refusee"`
}

// ApplicationResponse serializes an application.
type ApplicationResponse struct {
	ID                uint                     `json:"id"`
	StudentID         uint                     `json:"student_id"`
	StudentName       string                   `json:"student_name,omitempty"`
	OfferID           uint                     `json:"offer_id"`
	OfferTitle        string                   `json:"offer_title,omitempty"`
	CompanyName       string                   `json:"company_name,omitempty"`
	Status            models.ApplicationStatus `json:"status"`
	CoverLetter       string                   `json:"cover_letter"`
	TestComplete      bool                     `json:"test_complete"`
	Score             *int                     `json:"score"`
	InterviewDate     *time.Time               `json:"interview_date,omitempty"`
	InterviewType     *models.InterviewType    `json:"interview_type,omitempty"`
	InterviewLocation string                   `json:"interview_location,omitempty"`
	InterviewLink     string                   `json:"interview_link,omitempty"`
	CreatedAt         time.Time                `json:"created_at"`
	UpdatedAt         time.Time                `json:"updated_at"`
}

// NewApplicationResponse converts an application into a DTO.
func NewApplicationResponse(application models.Application) ApplicationResponse {
	return ApplicationResponse{
		ID:                application.ID,
		StudentID:         application.StudentProfileID,
		StudentName:       application.Student.FullName(),
		OfferID:           application.OfferID,
		OfferTitle:        application.Offer.Title,
		CompanyName:       application.Offer.Company.Name,
		Status:            application.Status,
		CoverLetter:       application.CoverLetter,
		TestComplete:      application.TestComplete,
		Score:             application.Score,
		InterviewDate:     application.InterviewDate,
		InterviewType:     application.InterviewType,
		InterviewLocation: application.InterviewLocation,
		InterviewLink:     application.InterviewLink,
		CreatedAt:         application.CreatedAt,
		UpdatedAt:         application.UpdatedAt,
	}
}

// ApplicationListResponse wraps a paginated application list.
type ApplicationListResponse struct {
	Items      []ApplicationResponse `json:"items"`
	Pagination PaginationMeta        `json:"pagination"`
}

// AnswerChoice is a (question, chosen answer) pair.
type AnswerChoice struct {
	QuestionID uint `json:"question_id" validate:"required"`
	AnswerID   uint `json:"answer_id" validate:"required"`
}

// TestSubmissionRequest carries a candidate's answers.
type TestSubmissionRequest struct {
	Answers []AnswerChoice `json:"answers" validate:"max=200,dive"`
}

// TestSubmissionResponse reports the recorded score. Accepted is false when
// the test had already been submitted and the prior score is returned.
type TestSubmissionResponse struct {
	ApplicationID uint `json:"application_id"`
	Score         int  `json:"score"`
	Accepted      bool `json:"accepted"`
	Answered      int  `json:"answered"`
	Correct       int  `json:"correct"`
	Total         int  `json:"total"`
}
