package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/stagehub-api/internal/dto"
	"github.com/noah-isme/stagehub-api/internal/models"
	"github.com/noah-isme/stagehub-api/internal/repository"
)

func TestMessagingServiceSendSanitizesAndNotifies(t *testing.T) {
	db := setupServiceDB(t)
	student := seedStudent(t, db, "ada@example.com", nil)
	company := seedCompany(t, db, "hr@acme.test")
	publisher := &recordingPublisher{}
	svc := NewMessagingService(repository.NewMessageRepository(db), repository.NewUserRepository(db), publisher, testValidator(), testLogger())

	message, err := svc.Send(context.Background(), company.Principal(), dto.MessageSendRequest{
		RecipientID: student.User.ID,
		Subject:     "Interview",
		Content:     "<script>alert(1)</script>Are you free on <b>Monday</b>?",
	})
	require.NoError(t, err)
	require.Equal(t, "Are you free on <b>Monday</b>?", message.Content)
	require.Equal(t, company.User.ID, message.SenderID)

	calls := publisher.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, student.User.ID, calls[0].RecipientID)
	require.Equal(t, models.NotificationMessageReceived, calls[0].Type)
	require.Equal(t, "Are you free on Monday?", calls[0].Body)
}

func TestMessagingServiceSendRejectsInvalidTargets(t *testing.T) {
	db := setupServiceDB(t)
	student := seedStudent(t, db, "ada@example.com", nil)
	company := seedCompany(t, db, "hr@acme.test")
	svc := NewMessagingService(repository.NewMessageRepository(db), repository.NewUserRepository(db), nil, testValidator(), testLogger())
	ctx := context.Background()

	_, err := svc.Send(ctx, student.Principal(), dto.MessageSendRequest{RecipientID: student.User.ID, Content: "hi"})
	require.ErrorIs(t, err, ErrMessageToSelf)

	_, err = svc.Send(ctx, student.Principal(), dto.MessageSendRequest{RecipientID: 9999, Content: "hi"})
	require.ErrorIs(t, err, ErrRecipientNotFound)

	_, err = svc.Send(ctx, student.Principal(), dto.MessageSendRequest{RecipientID: company.User.ID, Content: "<script>x</script>"})
	require.ErrorIs(t, err, ErrMessageEmpty)

	_, err = svc.Send(ctx, models.Principal{}, dto.MessageSendRequest{RecipientID: company.User.ID, Content: "hi"})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestMessagingServiceConversationMarksReceivedAsRead(t *testing.T) {
	db := setupServiceDB(t)
	student := seedStudent(t, db, "ada@example.com", nil)
	company := seedCompany(t, db, "hr@acme.test")
	svc := NewMessagingService(repository.NewMessageRepository(db), repository.NewUserRepository(db), nil, testValidator(), testLogger())
	ctx := context.Background()

	_, err := svc.Send(ctx, company.Principal(), dto.MessageSendRequest{RecipientID: student.User.ID, Content: "first"})
	require.NoError(t, err)
	_, err = svc.Send(ctx, student.Principal(), dto.MessageSendRequest{RecipientID: company.User.ID, Content: "second"})
	require.NoError(t, err)

	inbox, err := svc.Inbox(ctx, student.Principal(), 10, 0)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	require.Nil(t, inbox[0].ReadAt)

	conversation, err := svc.Conversation(ctx, student.Principal(), company.User.ID, dto.ConversationQuery{})
	require.NoError(t, err)
	require.Len(t, conversation, 2)
	require.Equal(t, "first", conversation[0].Content)
	require.NotNil(t, conversation[0].ReadAt)
	require.Nil(t, conversation[1].ReadAt)

	inbox, err = svc.Inbox(ctx, student.Principal(), 10, 0)
	require.NoError(t, err)
	require.NotNil(t, inbox[0].ReadAt)

	companyInbox, err := svc.Inbox(ctx, company.Principal(), 10, 0)
	require.NoError(t, err)
	require.Len(t, companyInbox, 1)
	require.Nil(t, companyInbox[0].ReadAt)
}
