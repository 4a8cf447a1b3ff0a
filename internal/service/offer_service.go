package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/stagehub-api/internal/dto"
	"github.com/noah-isme/stagehub-api/internal/models"
	"github.com/noah-isme/stagehub-api/internal/repository"
)

var (
	// ErrOfferNotFound indicates the offer does not exist or is hidden from the caller.
	ErrOfferNotFound = errors.New("offer not found")
	// ErrOfferHasApplications indicates the offer can only be closed, not deleted.
	ErrOfferHasApplications = errors.New("offer has applications; close it instead")
	// ErrScreeningTestNotFound indicates the offer carries no screening test.
	ErrScreeningTestNotFound = errors.New("screening test not found")
	// ErrScreeningTestLocked indicates a candidate already completed the current test.
	ErrScreeningTestLocked = errors.New("screening test already completed by a candidate")
	// ErrInvalidScreeningTest indicates a question without exactly one correct answer.
	ErrInvalidScreeningTest = errors.New("each question needs exactly one correct answer")
)

// OfferService manages company offers and their screening tests.
type OfferService interface {
	Create(ctx context.Context, actor models.Principal, req dto.OfferCreateRequest) (dto.OfferResponse, error)
	Update(ctx context.Context, actor models.Principal, id uint, req dto.OfferUpdateRequest) (dto.OfferResponse, error)
	ChangeStatus(ctx context.Context, actor models.Principal, id uint, req dto.OfferStatusRequest) (dto.OfferResponse, error)
	Delete(ctx context.Context, actor models.Principal, id uint) error
	Get(ctx context.Context, actor models.Principal, id uint) (dto.OfferResponse, error)
	ListPublic(ctx context.Context, req dto.OfferListRequest) (dto.OfferListResponse, error)
	ListMine(ctx context.Context, actor models.Principal, req dto.ListRequest) (dto.OfferListResponse, error)
	ReplaceTest(ctx context.Context, actor models.Principal, offerID uint, req dto.ScreeningTestRequest) (dto.ScreeningTestResponse, error)
	OwnerTest(ctx context.Context, actor models.Principal, offerID uint) (dto.ScreeningTestResponse, error)
}

type offerService struct {
	offers       repository.OfferRepository
	companies    repository.CompanyRepository
	tests        repository.ScreeningTestRepository
	applications repository.ApplicationRepository
	validator    *validator.Validate
	logger       zerolog.Logger
}

// NewOfferService constructs the offer service.
func NewOfferService(offers repository.OfferRepository, companies repository.CompanyRepository, tests repository.ScreeningTestRepository, applications repository.ApplicationRepository, validate *validator.Validate, logger zerolog.Logger) OfferService {
	return &offerService{
		offers:       offers,
		companies:    companies,
		tests:        tests,
		applications: applications,
		validator:    validate,
		logger:       logger.With().Str("component", "offer_service").Logger(),
	}
}

func (s *offerService) Create(ctx context.Context, actor models.Principal, req dto.OfferCreateRequest) (dto.OfferResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.OfferResponse{}, err
	}

	company, err := currentCompany(ctx, s.companies, actor)
	if err != nil {
		return dto.OfferResponse{}, err
	}

	status := models.OfferStatus(req.Status)
	if status == "" {
		status = models.OfferStatusActive
	}

	offer := models.Offer{
		CompanyID:    company.ID,
		Title:        strings.TrimSpace(req.Title),
		Description:  strings.TrimSpace(req.Description),
		ContractType: models.ContractType(req.ContractType),
		City:         strings.TrimSpace(req.City),
		Remote:       req.Remote,
		Status:       status,
	}
	if err := s.offers.Create(ctx, &offer, skillLevels(req.Skills)); err != nil {
		return dto.OfferResponse{}, err
	}

	s.logger.Info().Uint("offer_id", offer.ID).Uint("company_id", company.ID).Msg("offer created")
	return dto.NewOfferResponse(offer), nil
}

func (s *offerService) Update(ctx context.Context, actor models.Principal, id uint, req dto.OfferUpdateRequest) (dto.OfferResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.OfferResponse{}, err
	}

	offer, err := s.ownedOffer(ctx, actor, id)
	if err != nil {
		return dto.OfferResponse{}, err
	}

	updates := map[string]interface{}{}
	setTrimmed(updates, "title", req.Title)
	setTrimmed(updates, "description", req.Description)
	setTrimmed(updates, "contract_type", req.ContractType)
	setTrimmed(updates, "city", req.City)
	if req.Remote != nil {
		updates["remote"] = *req.Remote
	}

	var skills *[]repository.SkillLevel
	if req.Skills != nil {
		levels := skillLevels(*req.Skills)
		skills = &levels
	}

	if len(updates) == 0 && skills == nil {
		return dto.NewOfferResponse(offer), nil
	}

	updated, err := s.offers.Update(ctx, offer.ID, updates, skills)
	if err != nil {
		return dto.OfferResponse{}, mapOfferErr(err)
	}
	return dto.NewOfferResponse(updated), nil
}

func (s *offerService) ChangeStatus(ctx context.Context, actor models.Principal, id uint, req dto.OfferStatusRequest) (dto.OfferResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.OfferResponse{}, err
	}

	offer, err := s.ownedOffer(ctx, actor, id)
	if err != nil {
		return dto.OfferResponse{}, err
	}

	status := models.OfferStatus(req.Status)
	if offer.Status == status {
		return dto.NewOfferResponse(offer), nil
	}

	updated, err := s.offers.Update(ctx, offer.ID, map[string]interface{}{"status": status}, nil)
	if err != nil {
		return dto.OfferResponse{}, mapOfferErr(err)
	}

	s.logger.Info().Uint("offer_id", offer.ID).Str("status", string(status)).Msg("offer status changed")
	return dto.NewOfferResponse(updated), nil
}

func (s *offerService) Delete(ctx context.Context, actor models.Principal, id uint) error {
	offer, err := s.ownedOffer(ctx, actor, id)
	if err != nil {
		return err
	}

	count, err := s.applications.CountByOffer(ctx, offer.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrOfferHasApplications
	}

	return mapOfferErr(s.offers.Delete(ctx, offer.ID))
}

func (s *offerService) Get(ctx context.Context, actor models.Principal, id uint) (dto.OfferResponse, error) {
	offer, err := s.offers.FindByID(ctx, id)
	if err != nil {
		return dto.OfferResponse{}, mapOfferErr(err)
	}

	if offer.Status != models.OfferStatusActive && !actor.Is(models.RoleAdmin) {
		if !actor.Is(models.RoleCompany) {
			return dto.OfferResponse{}, ErrOfferNotFound
		}
		company, err := currentCompany(ctx, s.companies, actor)
		if err != nil || company.ID != offer.CompanyID {
			return dto.OfferResponse{}, ErrOfferNotFound
		}
	}

	return dto.NewOfferResponse(offer), nil
}

func (s *offerService) ListPublic(ctx context.Context, req dto.OfferListRequest) (dto.OfferListResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.OfferListResponse{}, err
	}
	req.ListRequest = req.ListRequest.Normalize()

	offers, total, err := s.offers.List(ctx, repository.OfferFilter{
		Status:       models.OfferStatusActive,
		ContractType: models.ContractType(req.ContractType),
		City:         strings.TrimSpace(req.City),
		Search:       strings.TrimSpace(req.Search),
		Page:         repository.Page{Page: req.Page, PageSize: req.PageSize},
	})
	if err != nil {
		return dto.OfferListResponse{}, err
	}

	return dto.OfferListResponse{
		Items:      dto.NewOfferResponses(offers),
		Pagination: dto.NewPaginationMeta(req.Page, req.PageSize, total),
	}, nil
}

func (s *offerService) ListMine(ctx context.Context, actor models.Principal, req dto.ListRequest) (dto.OfferListResponse, error) {
	company, err := currentCompany(ctx, s.companies, actor)
	if err != nil {
		return dto.OfferListResponse{}, err
	}
	req = req.Normalize()

	offers, total, err := s.offers.List(ctx, repository.OfferFilter{
		CompanyID: company.ID,
		Page:      repository.Page{Page: req.Page, PageSize: req.PageSize},
	})
	if err != nil {
		return dto.OfferListResponse{}, err
	}

	return dto.OfferListResponse{
		Items:      dto.NewOfferResponses(offers),
		Pagination: dto.NewPaginationMeta(req.Page, req.PageSize, total),
	}, nil
}

func (s *offerService) ReplaceTest(ctx context.Context, actor models.Principal, offerID uint, req dto.ScreeningTestRequest) (dto.ScreeningTestResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ScreeningTestResponse{}, err
	}
	for _, question := range req.Questions {
		correct := 0
		for _, answer := range question.Answers {
			if answer.Correct {
				correct++
			}
		}
		if correct != 1 {
			return dto.ScreeningTestResponse{}, ErrInvalidScreeningTest
		}
	}

	offer, err := s.ownedOffer(ctx, actor, offerID)
	if err != nil {
		return dto.ScreeningTestResponse{}, err
	}

	test := models.ScreeningTest{
		OfferID:   offer.ID,
		Title:     strings.TrimSpace(req.Title),
		Questions: make([]models.Question, 0, len(req.Questions)),
	}
	if test.Title == "" {
		test.Title = offer.Title
	}
	for i, input := range req.Questions {
		question := models.Question{
			Position: i + 1,
			Prompt:   strings.TrimSpace(input.Prompt),
			Answers:  make([]models.Answer, 0, len(input.Answers)),
		}
		for _, answer := range input.Answers {
			question.Answers = append(question.Answers, models.Answer{
				Label:   strings.TrimSpace(answer.Label),
				Correct: answer.Correct,
			})
		}
		test.Questions = append(test.Questions, question)
	}

	if err := s.tests.Replace(ctx, &test); err != nil {
		if errors.Is(err, repository.ErrScreeningTestLocked) {
			return dto.ScreeningTestResponse{}, ErrScreeningTestLocked
		}
		return dto.ScreeningTestResponse{}, err
	}

	s.logger.Info().Uint("offer_id", offer.ID).Int("questions", len(test.Questions)).Msg("screening test replaced")
	return dto.NewScreeningTestResponse(test, true), nil
}

func (s *offerService) OwnerTest(ctx context.Context, actor models.Principal, offerID uint) (dto.ScreeningTestResponse, error) {
	offer, err := s.ownedOffer(ctx, actor, offerID)
	if err != nil {
		return dto.ScreeningTestResponse{}, err
	}

	test, err := s.tests.FindByOffer(ctx, offer.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ScreeningTestResponse{}, ErrScreeningTestNotFound
		}
		return dto.ScreeningTestResponse{}, err
	}
	return dto.NewScreeningTestResponse(test, true), nil
}

// ownedOffer loads the offer and checks it belongs to the calling company.
func (s *offerService) ownedOffer(ctx context.Context, actor models.Principal, id uint) (models.Offer, error) {
	company, err := currentCompany(ctx, s.companies, actor)
	if err != nil {
		return models.Offer{}, err
	}

	offer, err := s.offers.FindByID(ctx, id)
	if err != nil {
		return models.Offer{}, mapOfferErr(err)
	}
	if offer.CompanyID != company.ID {
		return models.Offer{}, ErrForbidden
	}
	return offer, nil
}

func mapOfferErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOfferNotFound
	}
	return err
}
