package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/stagehub-api/internal/middleware"
	"github.com/noah-isme/stagehub-api/internal/service"
	"github.com/noah-isme/stagehub-api/internal/utils"
)

// MatchingHandler ranks offers for students and candidates for companies.
type MatchingHandler struct {
	service service.MatchingService
	logger  zerolog.Logger
}

// NewMatchingHandler constructs the handler.
func NewMatchingHandler(service service.MatchingService, logger zerolog.Logger) *MatchingHandler {
	return &MatchingHandler{
		service: service,
		logger:  logger.With().Str("component", "matching_handler").Logger(),
	}
}

// Register binds the matching routes on an authenticated router.
func (h *MatchingHandler) Register(router fiber.Router) {
	router.Get("/students/me/recommendations", middleware.WithAuth(h.recommendations, studentOnly))
	router.Get("/offers/:id/candidates", middleware.WithAuth(h.candidates, companyOnly))
}

func (h *MatchingHandler) recommendations(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil || limit < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	items, err := h.service.Recommendations(requestContext(c), principal(c), limit)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "recommendations computed", items)
}

func (h *MatchingHandler) candidates(c *fiber.Ctx) error {
	offerID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	items, err := h.service.Candidates(requestContext(c), principal(c), offerID)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "candidates ranked", items)
}
