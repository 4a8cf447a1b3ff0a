package dto

import (
	"time"

	"github.com/noah-isme/stagehub-api/internal/models"
)

// MessageSendRequest represents a direct message sent to another account.
type MessageSendRequest struct {
	RecipientID uint   `json:"recipient_id" validate:"required"`
	Subject     string `json:"subject" validate:"omitempty,max=255"`
	Content     string `json:"content" validate:"required,min=1,max=5000"`
}

// ConversationQuery pages backwards through a conversation.
type ConversationQuery struct {
	Before *time.Time `query:"before"`
	Limit  int        `query:"limit" validate:"omitempty,min=1,max=100"`
}

// MessageResponse is the serialized representation of a message.
type MessageResponse struct {
	ID          uint       `json:"id"`
	SenderID    uint       `json:"sender_id"`
	RecipientID uint       `json:"recipient_id"`
	Subject     string     `json:"subject,omitempty"`
	Content     string     `json:"content"`
	ReadAt      *time.Time `json:"read_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewMessageResponse converts a model into a DTO.
func NewMessageResponse(message models.Message) MessageResponse {
	return MessageResponse{
		ID:          message.ID,
		SenderID:    message.SenderID,
		RecipientID: message.RecipientID,
		Subject:     message.Subject,
		Content:     message.Content,
		ReadAt:      message.ReadAt,
		CreatedAt:   message.CreatedAt,
	}
}

// NewMessageResponseSlice converts a slice of models into DTOs.
func NewMessageResponseSlice(messages []models.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(messages))
	for _, message := range messages {
		out = append(out, NewMessageResponse(message))
	}
	return out
}

// NotificationCreateRequest describes the payload to create a notification.
type NotificationCreateRequest struct {
	RecipientID uint   `json:"recipient_id" validate:"required"`
	Title       string `json:"title" validate:"required,max=255"`
	Body        string `json:"body" validate:"omitempty,max=2000"`
	Type        string `json:"type" validate:"required,max=64"`
	Link        string `json:"link" validate:"omitempty,max=512"`
}

// NotificationResponse represents notification data returned to clients.
type NotificationResponse struct {
	ID          uint      `json:"id"`
	RecipientID uint      `json:"recipient_id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Type        string    `json:"type"`
	Read        bool      `json:"read"`
	Link        string    `json:"link,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewNotificationResponse converts a notification model to DTO.
func NewNotificationResponse(model models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:          model.ID,
		RecipientID: model.RecipientID,
		Title:       model.Title,
		Body:        model.Body,
		Type:        model.Type,
		Read:        model.Read,
		Link:        model.Link,
		CreatedAt:   model.CreatedAt,
	}
}

// NewNotificationResponseSlice converts notification models to DTOs.
func NewNotificationResponseSlice(items []models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewNotificationResponse(item))
	}
	return out
}

// NotificationListResponse wraps notifications with the unread counter.
type NotificationListResponse struct {
	Items  []NotificationResponse `json:"items"`
	Unread int64                  `json:"unread"`
}
