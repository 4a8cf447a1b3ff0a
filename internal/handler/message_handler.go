package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/stagehub-api/internal/dto"
	"github.com/noah-isme/stagehub-api/internal/middleware"
	"github.com/noah-isme/stagehub-api/internal/service"
	"github.com/noah-isme/stagehub-api/internal/utils"
)

// MessageHandler serves direct messages.
type MessageHandler struct {
	service service.MessagingService
	logger  zerolog.Logger
}

// NewMessageHandler constructs the handler.
func NewMessageHandler(service service.MessagingService, logger zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		service: service,
		logger:  logger.With().Str("component", "message_handler").Logger(),
	}
}

// Register binds the messaging routes on an authenticated router.
func (h *MessageHandler) Register(router fiber.Router) {
	router.Post("/messages", middleware.WithAuth(h.send, anyUser))
	router.Get("/messages", middleware.WithAuth(h.inbox, anyUser))
	router.Get("/messages/with/:userId", middleware.WithAuth(h.conversation, anyUser))
}

func (h *MessageHandler) send(c *fiber.Ctx) error {
	var req dto.MessageSendRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	message, err := h.service.Send(requestContext(c), principal(c), req)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "message sent", message)
}

func (h *MessageHandler) inbox(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	messages, err := h.service.Inbox(requestContext(c), principal(c), limit, offset)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "messages retrieved", messages)
}

func (h *MessageHandler) conversation(c *fiber.Ctx) error {
	peerID, err := parseIDParam(c, "userId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	var query dto.ConversationQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	messages, err := h.service.Conversation(requestContext(c), principal(c), peerID, query)
	if err != nil {
		return handleError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "conversation retrieved", messages)
}
