package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/stagehub-api/internal/middleware"
	"github.com/noah-isme/stagehub-api/internal/models"
	"github.com/noah-isme/stagehub-api/internal/service"
	"github.com/noah-isme/stagehub-api/internal/utils"
)

var (
	studentOnly = middleware.AuthOptions{Roles: []models.Role{models.RoleStudent}}
	companyOnly = middleware.AuthOptions{Roles: []models.Role{models.RoleCompany}}
	adminOnly   = middleware.AuthOptions{Roles: []models.Role{models.RoleAdmin}}
	anyUser     = middleware.AuthOptions{RequireUser: true}
)

type errorMapping struct {
	target  error
	status  int
	message string
}

// errorStatuses maps service sentinels to HTTP statuses. An empty message reuses the error text.
var errorStatuses = []errorMapping{
	{target: service.ErrForbidden, status: fiber.StatusForbidden, message: "insufficient permissions"},
	{target: service.ErrStudentNotFound, status: fiber.StatusNotFound},
	{target: service.ErrCompanyNotFound, status: fiber.StatusNotFound},
	{target: service.ErrOfferNotFound, status: fiber.StatusNotFound},
	{target: service.ErrScreeningTestNotFound, status: fiber.StatusNotFound},
	{target: service.ErrApplicationNotFound, status: fiber.StatusNotFound},
	{target: service.ErrCVSummaryNotFound, status: fiber.StatusNotFound},
	{target: service.ErrNotificationNotFound, status: fiber.StatusNotFound},
	{target: service.ErrRecipientNotFound, status: fiber.StatusNotFound},
	{target: service.ErrUserNotFound, status: fiber.StatusNotFound},
	{target: service.ErrEmailTaken, status: fiber.StatusConflict},
	{target: service.ErrApplicationExists, status: fiber.StatusConflict},
	{target: service.ErrOfferNotActive, status: fiber.StatusConflict},
	{target: service.ErrOfferHasApplications, status: fiber.StatusConflict},
	{target: service.ErrScreeningTestLocked, status: fiber.StatusConflict},
	{target: service.ErrInvalidTransition, status: fiber.StatusConflict},
	{target: service.ErrNotCancellable, status: fiber.StatusConflict},
	{target: service.ErrCVTooLarge, status: fiber.StatusRequestEntityTooLarge},
	{target: service.ErrCVNotPDF, status: fiber.StatusUnsupportedMediaType},
	{target: service.ErrLogoInvalid, status: fiber.StatusUnsupportedMediaType},
	{target: service.ErrCVRequired, status: fiber.StatusUnprocessableEntity},
	{target: service.ErrLogoRequired, status: fiber.StatusUnprocessableEntity},
	{target: service.ErrInvalidScreeningTest, status: fiber.StatusUnprocessableEntity},
	{target: service.ErrInterviewInPast, status: fiber.StatusUnprocessableEntity},
	{target: service.ErrMessageEmpty, status: fiber.StatusUnprocessableEntity},
	{target: service.ErrMessageToSelf, status: fiber.StatusUnprocessableEntity},
	{target: service.ErrSelfDeactivation, status: fiber.StatusUnprocessableEntity},
	{target: service.ErrLogoUploadDisabled, status: fiber.StatusServiceUnavailable},
	{target: service.ErrCVQueueUnavailable, status: fiber.StatusServiceUnavailable},
}

// handleError writes the envelope matching err and logs unexpected failures.
func handleError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	if details := utils.ValidationDetails(err); details != nil {
		return utils.Fail(c, fiber.StatusUnprocessableEntity, "validation failed", details)
	}

	for _, mapping := range errorStatuses {
		if errors.Is(err, mapping.target) {
			message := mapping.message
			if message == "" {
				message = mapping.target.Error()
			}
			return utils.SendError(c, mapping.status, message)
		}
	}

	requestLogger(logger, c).Error().Err(err).Str("path", c.Path()).Msg("request failed")
	return utils.Fail(c, fiber.StatusInternalServerError, "internal server error", fiber.Map{"error": err.Error()})
}

func principal(c *fiber.Ctx) models.Principal {
	p, _ := middleware.PrincipalFromContext(c)
	return p
}

func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	parsed, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid " + name)
	}
	return uint(parsed), nil
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}
