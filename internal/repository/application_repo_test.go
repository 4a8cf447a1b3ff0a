package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/stagehub-api/internal/models"
)

func seedApplication(t *testing.T, repo ApplicationRepository, studentID, offerID uint, status models.ApplicationStatus) models.Application {
	t.Helper()
	application := models.Application{StudentProfileID: studentID, OfferID: offerID, Status: status}
	require.NoError(t, repo.Create(context.Background(), &application))
	return application
}

func TestApplicationRepositoryUniquePair(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApplicationRepository(db)
	company := seedCompany(t, db, "hr@acme.test")
	student := seedStudent(t, db, "unique@example.com", nil)
	offer := seedOffer(t, db, company.ID, "Backend intern", models.OfferStatusActive)

	seedApplication(t, repo, student.ID, offer.ID, models.ApplicationPending)

	exists, err := repo.Exists(context.Background(), student.ID, offer.ID)
	require.NoError(t, err)
	require.True(t, exists)

	duplicate := models.Application{StudentProfileID: student.ID, OfferID: offer.ID, Status: models.ApplicationPending}
	require.Error(t, repo.Create(context.Background(), &duplicate))
}

func TestApplicationRepositorySubmitTestOnce(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApplicationRepository(db)
	company := seedCompany(t, db, "hr@acme.test")
	student := seedStudent(t, db, "test@example.com", nil)
	offer := seedOffer(t, db, company.ID, "Data intern", models.OfferStatusActive)
	application := seedApplication(t, repo, student.ID, offer.ID, models.ApplicationPending)
	ctx := context.Background()

	applied, err := repo.SubmitTest(ctx, application.ID, 75, []models.SubmittedAnswer{{QuestionID: 1, AnswerID: 1, Correct: true}})
	require.NoError(t, err)
	require.True(t, applied)

	applied, err = repo.SubmitTest(ctx, application.ID, 10, []models.SubmittedAnswer{{QuestionID: 2, AnswerID: 5}})
	require.NoError(t, err)
	require.False(t, applied)

	stored, err := repo.FindByID(ctx, application.ID)
	require.NoError(t, err)
	require.True(t, stored.TestComplete)
	require.Equal(t, 75, stored.ScoreValue())

	var answers int64
	require.NoError(t, db.Model(&models.SubmittedAnswer{}).Where("application_id = ?", application.ID).Count(&answers).Error)
	require.Equal(t, int64(1), answers)
}

func TestApplicationRepositoryDeleteCancellable(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApplicationRepository(db)
	company := seedCompany(t, db, "hr@acme.test")
	student := seedStudent(t, db, "cancel@example.com", nil)
	first := seedOffer(t, db, company.ID, "First", models.OfferStatusActive)
	second := seedOffer(t, db, company.ID, "Second", models.OfferStatusActive)
	ctx := context.Background()

	viewed := seedApplication(t, repo, student.ID, first.ID, models.ApplicationViewed)
	accepted := seedApplication(t, repo, student.ID, second.ID, models.ApplicationAccepted)
	_, err := repo.SubmitTest(ctx, viewed.ID, 50, []models.SubmittedAnswer{{QuestionID: 1, AnswerID: 2}})
	require.NoError(t, err)

	deleted, err := repo.DeleteCancellable(ctx, accepted.ID)
	require.NoError(t, err)
	require.False(t, deleted)
	stored, err := repo.FindByID(ctx, accepted.ID)
	require.NoError(t, err)
	require.Equal(t, models.ApplicationAccepted, stored.Status)

	deleted, err = repo.DeleteCancellable(ctx, viewed.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	var answers int64
	require.NoError(t, db.Model(&models.SubmittedAnswer{}).Where("application_id = ?", viewed.ID).Count(&answers).Error)
	require.Zero(t, answers)
}

func TestApplicationRepositoryChangeStatusGuardsSourceState(t *testing.T) {
	db := setupTestDB(t)
	repo := NewApplicationRepository(db)
	company := seedCompany(t, db, "hr@acme.test")
	student := seedStudent(t, db, "status@example.com", nil)
	offer := seedOffer(t, db, company.ID, "Ops", models.OfferStatusActive)
	application := seedApplication(t, repo, student.ID, offer.ID, models.ApplicationPending)
	ctx := context.Background()

	date := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	kind := models.InterviewVideo
	changed, err := repo.ChangeStatus(ctx, application.ID, StatusChange{
		From:          models.ApplicationPending,
		To:            models.ApplicationInterview,
		InterviewDate: &date,
		InterviewType: &kind,
		InterviewLink: "https://meet.example.com/abc",
	})
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = repo.ChangeStatus(ctx, application.ID, StatusChange{From: models.ApplicationPending, To: models.ApplicationRejected})
	require.NoError(t, err)
	require.False(t, changed)

	stored, err := repo.FindByID(ctx, application.ID)
	require.NoError(t, err)
	require.Equal(t, models.ApplicationInterview, stored.Status)
	require.NotNil(t, stored.InterviewType)
	require.Equal(t, models.InterviewVideo, *stored.InterviewType)
	require.Equal(t, "https://meet.example.com/abc", stored.InterviewLink)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), counts[models.ApplicationInterview])
}
