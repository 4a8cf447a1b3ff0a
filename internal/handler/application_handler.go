package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/stagehub-api/internal/dto"
	"github.com/noah-isme/stagehub-api/internal/middleware"
	"github.com/noah-isme/stagehub-api/internal/service"
	"github.com/noah-isme/stagehub-api/internal/utils"
)

// ApplicationHandler serves applications and the candidate side of screening tests.
type ApplicationHandler struct {
	applications service.ApplicationService
	screening    service.ScreeningService
	logger       zerolog.Logger
}

// NewApplicationHandler constructs the handler.
func NewApplicationHandler(applications service.ApplicationService, screening service.ScreeningService, logger zerolog.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		applications: applications,
		screening:    screening,
		logger:       logger.With().Str("component", "application_handler").Logger(),
	}
}

// Register binds the application routes on an authenticated router.
func (h *ApplicationHandler) Register(router fiber.Router) {
	router.Post("/offers/:id/apply", middleware.WithAuth(h.apply, studentOnly))
	router.Get("/offers/:id/applications", middleware.WithAuth(h.listForOffer, companyOnly))
	router.Get("/students/me/applications", middleware.WithAuth(h.listMine, studentOnly))
	router.Get("/applications/:id", middleware.WithAuth(h.get, anyUser))
	router.Delete("/applications/:id", middleware.WithAuth(h.cancel, studentOnly))
	router.Patch("/applications/:id/status", middleware.WithAuth(h.changeStatus, companyOnly))
	router.Get("/applications/:id/test", middleware.WithAuth(h.candidateTest, studentOnly))
	router.Post("/applications/:id/test", middleware.WithAuth(h.submitTest, studentOnly))
}

func (h *ApplicationHandler) apply(c *fiber.Ctx) error {
	offerID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	var req dto.ApplyRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	application, err := h.applications.Apply(requestContext(c), principal(c), offerID, req)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "application submitted", application)
}

func (h *ApplicationHandler) listMine(c *fiber.Ctx) error {
	var req dto.ApplicationListRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	applications, err := h.applications.ListMine(requestContext(c), principal(c), req)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.OK(c, applications.Items, "applications retrieved", applications.Pagination)
}

func (h *ApplicationHandler) listForOffer(c *fiber.Ctx) error {
	offerID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	var req dto.ApplicationListRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	applications, err := h.applications.ListForOffer(requestContext(c), principal(c), offerID, req)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.OK(c, applications.Items, "applications retrieved", applications.Pagination)
}

func (h *ApplicationHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	application, err := h.applications.Get(requestContext(c), principal(c), id)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "application retrieved", application)
}

func (h *ApplicationHandler) cancel(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.applications.Cancel(requestContext(c), principal(c), id); err != nil {
		return handleError(c, h.logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ApplicationHandler) changeStatus(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	var req dto.ApplicationStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	application, err := h.applications.ChangeStatus(requestContext(c), principal(c), id, req)
	if err != nil {
		return handleError(c, h.logger, err)
	}

	requestLogger(h.logger, c).Info().
		Uint("application_id", application.ID).
		Str("status", string(application.Status)).
		Msg("application status changed")
	return utils.SendSuccess(c, "application status updated", application)
}

func (h *ApplicationHandler) candidateTest(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	test, err := h.screening.CandidateTest(requestContext(c), principal(c), id)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "screening test retrieved", test)
}

func (h *ApplicationHandler) submitTest(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	var req dto.TestSubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.screening.Submit(requestContext(c), principal(c), id, req)
	if err != nil {
		return handleError(c, h.logger, err)
	}

	message := "screening test submitted"
	if !result.Accepted {
		message = "screening test already submitted"
	}
	return utils.SendSuccess(c, message, result)
}
