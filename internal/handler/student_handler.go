package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/stagehub-api/internal/dto"
	"github.com/noah-isme/stagehub-api/internal/middleware"
	"github.com/noah-isme/stagehub-api/internal/service"
	"github.com/noah-isme/stagehub-api/internal/utils"
)

// StudentHandler serves the student's own profile, skills and CV.
type StudentHandler struct {
	service service.StudentService
	logger  zerolog.Logger
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(service service.StudentService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		service: service,
		logger:  logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register binds the student routes on an authenticated router.
func (h *StudentHandler) Register(router fiber.Router) {
	router.Get("/students/me", middleware.WithAuth(h.profile, studentOnly))
	router.Patch("/students/me", middleware.WithAuth(h.updateProfile, studentOnly))
	router.Put("/students/me/skills", middleware.WithAuth(h.replaceSkills, studentOnly))
	router.Post("/students/me/cv", middleware.WithAuth(h.uploadCV, studentOnly))
	router.Get("/students/me/cv-summary", middleware.WithAuth(h.cvSummary, studentOnly))
}

func (h *StudentHandler) profile(c *fiber.Ctx) error {
	profile, err := h.service.Profile(requestContext(c), principal(c))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "profile retrieved", profile)
}

func (h *StudentHandler) updateProfile(c *fiber.Ctx) error {
	var req dto.StudentProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	profile, err := h.service.UpdateProfile(requestContext(c), principal(c), req)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "profile updated", profile)
}

func (h *StudentHandler) replaceSkills(c *fiber.Ctx) error {
	var req dto.SkillsReplaceRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	skills, err := h.service.ReplaceSkills(requestContext(c), principal(c), req)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "skills updated", skills)
}

func (h *StudentHandler) uploadCV(c *fiber.Ctx) error {
	file, err := c.FormFile("cv")
	if err != nil {
		return handleError(c, h.logger, service.ErrCVRequired)
	}

	profile, err := h.service.UploadCV(requestContext(c), principal(c), file)
	if err != nil {
		return handleError(c, h.logger, err)
	}

	requestLogger(h.logger, c).Info().Uint("student_id", profile.ID).Int64("size", file.Size).Msg("cv uploaded")
	return utils.SendSuccessWithStatus(c, fiber.StatusAccepted, "cv uploaded; analysis scheduled", profile)
}

func (h *StudentHandler) cvSummary(c *fiber.Ctx) error {
	summary, err := h.service.CVSummary(requestContext(c), principal(c))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "cv summary retrieved", summary)
}
