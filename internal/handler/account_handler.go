package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/stagehub-api/internal/dto"
	"github.com/noah-isme/stagehub-api/internal/service"
	"github.com/noah-isme/stagehub-api/internal/utils"
)

// AccountHandler exposes account registration.
type AccountHandler struct {
	service service.AccountService
	logger  zerolog.Logger
}

// NewAccountHandler constructs the handler.
func NewAccountHandler(service service.AccountService, logger zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		service: service,
		logger:  logger.With().Str("component", "account_handler").Logger(),
	}
}

// Register binds the public account routes on the /auth router.
func (h *AccountHandler) Register(router fiber.Router) {
	router.Post("/register", h.register)
}

func (h *AccountHandler) register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.service.Register(requestContext(c), req)
	if err != nil {
		return handleError(c, h.logger, err)
	}

	requestLogger(h.logger, c).Info().Uint("user_id", user.ID).Str("role", string(user.Role)).Msg("account registered")
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "account created", user)
}
