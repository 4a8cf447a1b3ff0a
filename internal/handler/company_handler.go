package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/stagehub-api/internal/dto"
	"github.com/noah-isme/stagehub-api/internal/middleware"
	"github.com/noah-isme/stagehub-api/internal/service"
	"github.com/noah-isme/stagehub-api/internal/utils"
)

// CompanyHandler serves the company's own profile.
type CompanyHandler struct {
	service service.CompanyService
	logger  zerolog.Logger
}

// NewCompanyHandler constructs the handler.
func NewCompanyHandler(service service.CompanyService, logger zerolog.Logger) *CompanyHandler {
	return &CompanyHandler{
		service: service,
		logger:  logger.With().Str("component", "company_handler").Logger(),
	}
}

// Register binds the company routes on an authenticated router.
func (h *CompanyHandler) Register(router fiber.Router) {
	router.Get("/companies/me", middleware.WithAuth(h.profile, companyOnly))
	router.Patch("/companies/me", middleware.WithAuth(h.updateProfile, companyOnly))
	router.Post("/companies/me/logo", middleware.WithAuth(h.uploadLogo, companyOnly))
}

func (h *CompanyHandler) profile(c *fiber.Ctx) error {
	company, err := h.service.Profile(requestContext(c), principal(c))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "company retrieved", company)
}

func (h *CompanyHandler) updateProfile(c *fiber.Ctx) error {
	var req dto.CompanyProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	company, err := h.service.UpdateProfile(requestContext(c), principal(c), req)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "company updated", company)
}

func (h *CompanyHandler) uploadLogo(c *fiber.Ctx) error {
	file, err := c.FormFile("logo")
	if err != nil {
		return handleError(c, h.logger, service.ErrLogoRequired)
	}

	company, err := h.service.UploadLogo(requestContext(c), principal(c), file)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "logo updated", company)
}
