package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/stagehub-api/internal/dto"
	"github.com/noah-isme/stagehub-api/internal/models"
	"github.com/noah-isme/stagehub-api/internal/observability"
	"github.com/noah-isme/stagehub-api/internal/repository"
)

const maxLogoBytes = 2 * 1024 * 1024

var (
	// ErrCompanyNotFound indicates the caller has no company profile.
	ErrCompanyNotFound = errors.New("company profile not found")
	// ErrLogoRequired indicates the upload carried no file.
	ErrLogoRequired = errors.New("logo file is required")
	// ErrLogoInvalid indicates the logo is too large or not an image.
	ErrLogoInvalid = errors.New("logo must be a PNG, JPEG or WebP image under 2 MB")
	// ErrLogoUploadDisabled indicates no image host is configured.
	ErrLogoUploadDisabled = errors.New("logo uploads are not configured")
)

var allowedLogoTypes = []string{"image/png", "image/jpeg", "image/webp"}

// LogoUploader stores company logos on an image host.
type LogoUploader interface {
	UploadLogo(ctx context.Context, companyID uint, reader io.Reader) (string, error)
}

// CompanyService manages the company profile.
type CompanyService interface {
	Profile(ctx context.Context, actor models.Principal) (dto.CompanyProfileResponse, error)
	UpdateProfile(ctx context.Context, actor models.Principal, req dto.CompanyProfileUpdateRequest) (dto.CompanyProfileResponse, error)
	UploadLogo(ctx context.Context, actor models.Principal, file *multipart.FileHeader) (dto.CompanyProfileResponse, error)
}

type companyService struct {
	companies repository.CompanyRepository
	logos     LogoUploader
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCompanyService constructs the company service. logos may be nil.
func NewCompanyService(companies repository.CompanyRepository, logos LogoUploader, validate *validator.Validate, logger zerolog.Logger) CompanyService {
	return &companyService{
		companies: companies,
		logos:     logos,
		validator: validate,
		logger:    logger.With().Str("component", "company_service").Logger(),
	}
}

func (s *companyService) Profile(ctx context.Context, actor models.Principal) (dto.CompanyProfileResponse, error) {
	company, err := currentCompany(ctx, s.companies, actor)
	if err != nil {
		return dto.CompanyProfileResponse{}, err
	}
	return dto.NewCompanyProfileResponse(company), nil
}

func (s *companyService) UpdateProfile(ctx context.Context, actor models.Principal, req dto.CompanyProfileUpdateRequest) (dto.CompanyProfileResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.CompanyProfileResponse{}, err
	}

	company, err := currentCompany(ctx, s.companies, actor)
	if err != nil {
		return dto.CompanyProfileResponse{}, err
	}

	updates := map[string]interface{}{}
	setTrimmed(updates, "name", req.Name)
	setTrimmed(updates, "sector", req.Sector)
	setTrimmed(updates, "city", req.City)
	setTrimmed(updates, "website", req.Website)
	setTrimmed(updates, "description", req.Description)
	if len(updates) == 0 {
		return dto.NewCompanyProfileResponse(company), nil
	}

	updated, err := s.companies.Update(ctx, company.ID, updates)
	if err != nil {
		return dto.CompanyProfileResponse{}, err
	}
	return dto.NewCompanyProfileResponse(updated), nil
}

func (s *companyService) UploadLogo(ctx context.Context, actor models.Principal, file *multipart.FileHeader) (dto.CompanyProfileResponse, error) {
	if s.logos == nil {
		return dto.CompanyProfileResponse{}, ErrLogoUploadDisabled
	}
	if file == nil {
		return dto.CompanyProfileResponse{}, ErrLogoRequired
	}
	if file.Size > maxLogoBytes {
		observability.UploadsRejected().WithLabelValues("logo", "size").Inc()
		return dto.CompanyProfileResponse{}, ErrLogoInvalid
	}

	company, err := currentCompany(ctx, s.companies, actor)
	if err != nil {
		return dto.CompanyProfileResponse{}, err
	}

	handle, err := file.Open()
	if err != nil {
		return dto.CompanyProfileResponse{}, err
	}
	defer handle.Close()

	payload, err := io.ReadAll(io.LimitReader(handle, maxLogoBytes+1))
	if err != nil {
		return dto.CompanyProfileResponse{}, err
	}
	if len(payload) > maxLogoBytes {
		observability.UploadsRejected().WithLabelValues("logo", "size").Inc()
		return dto.CompanyProfileResponse{}, ErrLogoInvalid
	}
	if !isAllowedLogo(payload) {
		observability.UploadsRejected().WithLabelValues("logo", "type").Inc()
		return dto.CompanyProfileResponse{}, ErrLogoInvalid
	}

	url, err := s.logos.UploadLogo(ctx, company.ID, bytes.NewReader(payload))
	if err != nil {
		s.logger.Error().Err(err).Uint("company_id", company.ID).Msg("logo upload failed")
		return dto.CompanyProfileResponse{}, fmt.Errorf("upload logo: %w", err)
	}

	updated, err := s.companies.Update(ctx, company.ID, map[string]interface{}{"logo_url": url})
	if err != nil {
		return dto.CompanyProfileResponse{}, err
	}
	return dto.NewCompanyProfileResponse(updated), nil
}

func isAllowedLogo(payload []byte) bool {
	detected := mimetype.Detect(payload)
	for _, allowed := range allowedLogoTypes {
		if detected.Is(allowed) {
			return true
		}
	}
	return false
}

func currentCompany(ctx context.Context, companies repository.CompanyRepository, actor models.Principal) (models.CompanyProfile, error) {
	if !actor.Is(models.RoleCompany) {
		return models.CompanyProfile{}, ErrForbidden
	}
	company, err := companies.FindByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.CompanyProfile{}, ErrCompanyNotFound
		}
		return models.CompanyProfile{}, err
	}
	return company, nil
}
