package dto

import (
	"time"

	"github.com/noah-isme/stagehub-api/internal/models"
)

// OfferCreateRequest captures a new offer.
type OfferCreateRequest struct {
	Title        string       `json:"title" validate:"required,min=3,max=255"`
	Description  string       `json:"description" validate:"required,min=10,max=10000"`
	ContractType string       `json:"contract_type" validate:"required,oneof=stage alternance cdi cdd"`
	City         string       `json:"city" validate:"omitempty,max=120"`
	Remote       bool         `json:"remote"`
	Status       string       `json:"status" validate:"omitempty,oneof=active inactive"`
	Skills       []SkillInput `json:"skills" validate:"max=30,dive"`
}

// OfferUpdateRequest captures partial offer updates. A nil Skills keeps the current list.
type OfferUpdateRequest struct {
	Title        *string       `json:"title" validate:"omitempty,min=3,max=255"`
	Description  *string       `json:"description" validate:"omitempty,min=10,max=10000"`
	ContractType *string       `json:"contract_type" validate:"omitempty,oneof=stage alternance cdi cdd"`
	City         *string       `json:"city" validate:"omitempty,max=120"`
	Remote       *bool         `json:"remote"`
	Skills       *[]SkillInput `json:"skills" validate:"omitempty,max=30,dive"`
}

// OfferStatusRequest changes the publication status of an offer.
type OfferStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive closed"`
}

// OfferListRequest filters public offer listings.
type OfferListRequest struct {
	ListRequest
	Search       string `query:"search" validate:"omitempty,max=120"`
	ContractType string `query:"contract_type" validate:"omitempty,oneof=stage alternance cdi cdd"`
	City         string `query:"city" validate:"omitempty,max=120"`
}

// OfferResponse serializes an offer.
type OfferResponse struct {
	ID           uint                `json:"id"`
	CompanyID    uint                `json:"company_id"`
	CompanyName  string              `json:"company_name"`
	CompanyLogo  string              `json:"company_logo,omitempty"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	ContractType models.ContractType `json:"contract_type"`
	City         string              `json:"city"`
	Remote       bool                `json:"remote"`
	Status       models.OfferStatus  `json:"status"`
	Skills       []SkillResponse     `json:"skills"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// NewOfferResponse converts an offer into a DTO.
func NewOfferResponse(offer models.Offer) OfferResponse {
	return OfferResponse{
		ID:           offer.ID,
		CompanyID:    offer.CompanyID,
		CompanyName:  offer.Company.Name,
		CompanyLogo:  offer.Company.LogoURL,
		Title:        offer.Title,
		Description:  offer.Description,
		ContractType: offer.ContractType,
		City:         offer.City,
		Remote:       offer.Remote,
		Status:       offer.Status,
		Skills:       NewOfferSkillResponses(offer.Skills),
		CreatedAt:    offer.CreatedAt,
		UpdatedAt:    offer.UpdatedAt,
	}
}

// NewOfferResponses converts offers into DTOs.
func NewOfferResponses(offers []models.Offer) []OfferResponse {
	out := make([]OfferResponse, 0, len(offers))
	for _, offer := range offers {
		out = append(out, NewOfferResponse(offer))
	}
	return out
}

// OfferListResponse wraps a paginated offer list.
type OfferListResponse struct {
	Items      []OfferResponse `json:"items"`
	Pagination PaginationMeta  `json:"pagination"`
}

// AnswerInput is one candidate choice of a question.
type AnswerInput struct {
	Label   string `json:"label" validate:"required,min=1,max=512"`
	Correct bool   `json:"correct"`
}

// QuestionInput is one question with at least two choices.
type QuestionInput struct {
	Prompt  string        `json:"prompt" validate:"required,min=3,max=2000"`
	Answers []AnswerInput `json:"answers" validate:"required,min=2,max=10,dive"`
}

// ScreeningTestRequest creates or replaces the test of an offer.
type ScreeningTestRequest struct {
	Title     string          `json:"title" validate:"omitempty,max=255"`
	Questions []QuestionInput `json:"questions" validate:"required,min=1,max=50,dive"`
}

// AnswerResponse serializes a choice. Correct is only set for the offer owner.
type AnswerResponse struct {
	ID      uint   `json:"id"`
	Label   string `json:"label"`
	Correct *bool  `json:"correct,omitempty"`
}

// QuestionResponse serializes a question.
type QuestionResponse struct {
	ID       uint             `json:"id"`
	Position int              `json:"position"`
	Prompt   string           `json:"prompt"`
	Answers  []AnswerResponse `json:"answers"`
}

// ScreeningTestResponse serializes a screening test.
type ScreeningTestResponse struct {
	ID        uint               `json:"id"`
	OfferID   uint               `json:"offer_id"`
	Title     string             `json:"title"`
	Questions []QuestionResponse `json:"questions"`
}

// NewScreeningTestResponse converts a test into a DTO, revealing correct flags only when asked.
func NewScreeningTestResponse(test models.ScreeningTest, revealCorrect bool) ScreeningTestResponse {
	questions := make([]QuestionResponse, 0, len(test.Questions))
	for _, question := range test.Questions {
		answers := make([]AnswerResponse, 0, len(question.Answers))
		for _, answer := range question.Answers {
			item := AnswerResponse{ID: answer.ID, Label: answer.Label}
			if revealCorrect {
				correct := answer.Correct
				item.Correct = &correct
			}
			answers = append(answers, item)
		}
		questions = append(questions, QuestionResponse{
			ID:       question.ID,
			Position: question.Position,
			Prompt:   question.Prompt,
			Answers:  answers,
		})
	}

	return ScreeningTestResponse{
		ID:        test.ID,
		OfferID:   test.OfferID,
		Title:     test.Title,
		Questions: questions,
	}
}
