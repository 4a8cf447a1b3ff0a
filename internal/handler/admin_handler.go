package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/stagehub-api/internal/dto"
	"github.com/noah-isme/stagehub-api/internal/middleware"
	"github.com/noah-isme/stagehub-api/internal/service"
	"github.com/noah-isme/stagehub-api/internal/utils"
)

// AdminHandler serves the admin console. Routes expect an admin-only router.
type AdminHandler struct {
	service service.AdminService
	logger  zerolog.Logger
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(service service.AdminService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_handler").Logger(),
	}
}

// Register binds the admin routes.
func (h *AdminHandler) Register(router fiber.Router) {
	router.Get("/users", middleware.WithAuth(h.listUsers, adminOnly))
	router.Patch("/users/:id/status", middleware.WithAuth(h.setUserStatus, adminOnly))
	router.Get("/stats", middleware.WithAuth(h.stats, adminOnly))
	router.Post("/cv/process", middleware.WithAuth(h.processCVs, adminOnly))
	router.Get("/activity", middleware.WithAuth(h.activity, adminOnly))
}

func (h *AdminHandler) listUsers(c *fiber.Ctx) error {
	var req dto.AdminUserListRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	users, err := h.service.ListUsers(requestContext(c), principal(c), req)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.OK(c, users.Items, "users retrieved", users.Pagination)
}

func (h *AdminHandler) setUserStatus(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	var req dto.AdminUserStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.service.SetUserStatus(requestContext(c), principal(c), id, req)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "user status updated", user)
}

func (h *AdminHandler) stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(requestContext(c), principal(c))
	if err != nil {
		return handleError(c, h.logger, err)
	}
	if stats.CacheHit {
		c.Set("X-Cache-Hit", "true")
	}
	return utils.SendSuccess(c, "stats retrieved", stats)
}

func (h *AdminHandler) processCVs(c *fiber.Ctx) error {
	var req dto.CVProcessRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	result, err := h.service.ProcessCVs(requestContext(c), principal(c), req)
	if err != nil {
		return handleError(c, h.logger, err)
	}

	requestLogger(h.logger, c).Info().
		Str("mode", result.Mode).
		Int("processed", result.Processed).
		Int("failed", result.Failed).
		Msg("cv processing triggered")
	if result.Queued {
		return utils.SendSuccessWithStatus(c, fiber.StatusAccepted, "cv batch queued", result)
	}
	return utils.SendSuccess(c, "cv batch processed", result)
}

func (h *AdminHandler) activity(c *fiber.Ctx) error {
	var req dto.AdminActivityListRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	logs, err := h.service.Activity(requestContext(c), principal(c), req)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.OK(c, logs.Items, "activity retrieved", logs.Pagination)
}
