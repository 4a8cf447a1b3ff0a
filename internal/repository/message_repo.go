package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/stagehub-api/internal/models"
)

// MessageRepository persists direct messages between accounts.
type MessageRepository interface {
	Save(ctx context.Context, message *models.Message) error
	ListInbox(ctx context.Context, recipientID uint, limit, offset int) ([]models.Message, error)
	ListConversation(ctx context.Context, userID, peerID uint, before time.Time, limit int) ([]models.Message, error)
	MarkConversationRead(ctx context.Context, recipientID, senderID uint, at time.Time) (int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository constructs a message repository backed by GORM.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Save(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) ListInbox(ctx context.Context, recipientID uint, limit, offset int) ([]models.Message, error) {
	limit, offset = clampLimit(limit, offset)

	var messages []models.Message
	if err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, err
	}

	return messages, nil
}

func (r *messageRepository) ListConversation(ctx context.Context, userID, peerID uint, before time.Time, limit int) ([]models.Message, error) {
	limit, _ = clampLimit(limit, 0)

	query := r.db.WithContext(ctx).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)", userID, peerID, peerID, userID)
	if !before.IsZero() {
		query = query.Where("created_at < ?", before)
	}

	var messages []models.Message
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, err
	}

	// Oldest first for clients.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

func (r *messageRepository) MarkConversationRead(ctx context.Context, recipientID, senderID uint, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("recipient_id = ? AND sender_id = ? AND read_at IS NULL", recipientID, senderID).
		Update("read_at", at)
	return result.RowsAffected, result.Error
}
