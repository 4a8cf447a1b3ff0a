package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/stagehub-api/internal/models"
)

func TestMessageRepositoryConversation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	for i, message := range []models.Message{
		{SenderID: 1, RecipientID: 2, Content: "hello", CreatedAt: base},
		{SenderID: 2, RecipientID: 1, Content: "hi", CreatedAt: base.Add(time.Minute)},
		{SenderID: 3, RecipientID: 1, Content: "other", CreatedAt: base.Add(2 * time.Minute)},
		{SenderID: 1, RecipientID: 2, Content: "how are you", CreatedAt: base.Add(3 * time.Minute)},
	} {
		message := message
		require.NoError(t, repo.Save(ctx, &message), i)
	}

	conversation, err := repo.ListConversation(ctx, 1, 2, time.Time{}, 10)
	require.NoError(t, err)
	require.Len(t, conversation, 3)
	require.Equal(t, "hello", conversation[0].Content)
	require.Equal(t, "how are you", conversation[2].Content)

	marked, err := repo.MarkConversationRead(ctx, 2, 1, time.Now())
	require.NoError(t, err)
	require.Equal(t, int64(2), marked)

	inbox, err := repo.ListInbox(ctx, 1, 0, 0)
	require.NoError(t, err)
	require.Len(t, inbox, 2)
	require.Equal(t, "other", inbox[0].Content)
}

func TestNotificationRepositoryReadFlags(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	first := models.Notification{RecipientID: 9, Title: "one", Type: models.NotificationMessageReceived}
	second := models.Notification{RecipientID: 9, Title: "two", Type: models.NotificationStatusChanged}
	foreign := models.Notification{RecipientID: 10, Title: "three", Type: models.NotificationStatusChanged}
	require.NoError(t, repo.Create(ctx, &first))
	require.NoError(t, repo.Create(ctx, &second))
	require.NoError(t, repo.Create(ctx, &foreign))

	_, err := repo.MarkRead(ctx, foreign.ID, 9)
	require.Error(t, err)

	read, err := repo.MarkRead(ctx, first.ID, 9)
	require.NoError(t, err)
	require.True(t, read.Read)

	unread, err := repo.CountUnread(ctx, 9)
	require.NoError(t, err)
	require.Equal(t, int64(1), unread)

	updated, err := repo.MarkAllRead(ctx, 9)
	require.NoError(t, err)
	require.Equal(t, int64(1), updated)

	items, err := repo.ListByRecipient(ctx, 9, true, 10, 0)
	require.NoError(t, err)
	require.Empty(t, items)
}
