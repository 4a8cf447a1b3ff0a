package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/stagehub-api/internal/dto"
	"github.com/noah-isme/stagehub-api/internal/models"
	"github.com/noah-isme/stagehub-api/internal/repository"
)

var (
	// ErrRecipientNotFound indicates the target account does not exist or is disabled.
	ErrRecipientNotFound = errors.New("recipient not found")
	// ErrMessageToSelf is returned when the sender and recipient are the same account.
	ErrMessageToSelf = errors.New("cannot send a message to yourself")
	// ErrMessageEmpty is returned when nothing remains after sanitization.
	ErrMessageEmpty = errors.New("message content empty after sanitization")
)

// MessagingService exposes direct messaging between accounts.
type MessagingService interface {
	Send(ctx context.Context, actor models.Principal, req dto.MessageSendRequest) (dto.MessageResponse, error)
	Inbox(ctx context.Context, actor models.Principal, limit, offset int) ([]dto.MessageResponse, error)
	Conversation(ctx context.Context, actor models.Principal, peerID uint, query dto.ConversationQuery) ([]dto.MessageResponse, error)
}

type messagingService struct {
	messages      repository.MessageRepository
	users         repository.UserRepository
	notifications NotificationPublisher
	validator     *validator.Validate
	logger        zerolog.Logger
	tracer        trace.Tracer
	sanitizer     *bluemonday.Policy
	now           func() time.Time
}

// NewMessagingService constructs the messaging service.
func NewMessagingService(messages repository.MessageRepository, users repository.UserRepository, notifications NotificationPublisher, validate *validator.Validate, logger zerolog.Logger) MessagingService {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("br")

	return &messagingService{
		messages:      messages,
		users:         users,
		notifications: notifications,
		validator:     validate,
		logger:        logger.With().Str("component", "messaging_service").Logger(),
		tracer:        otel.Tracer("github.com/noah-isme/stagehub-api/internal/service/messaging"),
		sanitizer:     policy,
		now:           time.Now,
	}
}

func (s *messagingService) Send(ctx context.Context, actor models.Principal, req dto.MessageSendRequest) (dto.MessageResponse, error) {
	if !actor.Authenticated() {
		return dto.MessageResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.MessageResponse{}, err
	}
	if req.RecipientID == actor.UserID {
		return dto.MessageResponse{}, ErrMessageToSelf
	}

	content := strings.TrimSpace(s.sanitizer.Sanitize(req.Content))
	if content == "" {
		return dto.MessageResponse{}, ErrMessageEmpty
	}

	ctx, span := s.tracer.Start(ctx, "messaging.send", trace.WithAttributes(
		attribute.Int("message.sender_id", int(actor.UserID)),
		attribute.Int("message.recipient_id", int(req.RecipientID)),
	))
	defer span.End()

	recipient, err := s.users.FindByID(ctx, req.RecipientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MessageResponse{}, ErrRecipientNotFound
		}
		return dto.MessageResponse{}, err
	}
	if !recipient.Active {
		return dto.MessageResponse{}, ErrRecipientNotFound
	}

	message := models.Message{
		SenderID:    actor.UserID,
		RecipientID: recipient.ID,
		Subject:     strings.TrimSpace(bluemonday.StrictPolicy().Sanitize(req.Subject)),
		Content:     content,
	}
	if err := s.messages.Save(ctx, &message); err != nil {
		span.RecordError(err)
		return dto.MessageResponse{}, fmt.Errorf("save message: %w", err)
	}

	title := "New message"
	if message.Subject != "" {
		title = "New message: " + message.Subject
	}
	notifyQuietly(ctx, s.notifications, s.logger, dto.NotificationCreateRequest{
		RecipientID: recipient.ID,
		Title:       title,
		Body:        preview(content, 140),
		Type:        models.NotificationMessageReceived,
		Link:        fmt.Sprintf("/messages/with/%d", actor.UserID),
	})

	return dto.NewMessageResponse(message), nil
}

func (s *messagingService) Inbox(ctx context.Context, actor models.Principal, limit, offset int) ([]dto.MessageResponse, error) {
	if !actor.Authenticated() {
		return nil, ErrForbidden
	}
	messages, err := s.messages.ListInbox(ctx, actor.UserID, limit, offset)
	if err != nil {
		return nil, err
	}
	return dto.NewMessageResponseSlice(messages), nil
}

// Conversation returns the exchange with peerID, oldest first, and marks the
// peer's messages to the actor as read.
func (s *messagingService) Conversation(ctx context.Context, actor models.Principal, peerID uint, query dto.ConversationQuery) ([]dto.MessageResponse, error) {
	if !actor.Authenticated() {
		return nil, ErrForbidden
	}
	if err := s.validator.Struct(query); err != nil {
		return nil, err
	}

	var before time.Time
	if query.Before != nil {
		before = *query.Before
	}

	messages, err := s.messages.ListConversation(ctx, actor.UserID, peerID, before, query.Limit)
	if err != nil {
		return nil, err
	}

	readAt := s.now().UTC()
	marked, err := s.messages.MarkConversationRead(ctx, actor.UserID, peerID, readAt)
	if err != nil {
		return nil, err
	}
	if marked > 0 {
		for i := range messages {
			if messages[i].RecipientID == actor.UserID && messages[i].ReadAt == nil {
				messages[i].ReadAt = &readAt
			}
		}
	}

	return dto.NewMessageResponseSlice(messages), nil
}

func preview(content string, limit int) string {
	plain := strings.TrimSpace(bluemonday.StrictPolicy().Sanitize(content))
	runes := []rune(plain)
	if len(runes) <= limit {
		return plain
	}
	return string(runes[:limit]) + "…"
}
