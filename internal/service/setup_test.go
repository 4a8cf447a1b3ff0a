package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/stagehub-api/internal/dto"
	"github.com/noah-isme/stagehub-api/internal/models"
	"github.com/noah-isme/stagehub-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func ptrUint(v uint) *uint {
	return &v
}

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

type fixtureStudent struct {
	User    models.User
	Profile models.StudentProfile
}

func (f fixtureStudent) Principal() models.Principal {
	return models.Principal{UserID: f.User.ID, Role: models.RoleStudent}
}

type fixtureCompany struct {
	User    models.User
	Profile models.CompanyProfile
}

func (f fixtureCompany) Principal() models.Principal {
	return models.Principal{UserID: f.User.ID, Role: models.RoleCompany}
}

func seedStudent(t *testing.T, db *gorm.DB, email string, cvPath *string) fixtureStudent {
	t.Helper()
	user := models.User{Email: email, PasswordHash: "x", Role: models.RoleStudent, Active: true}
	profile := models.StudentProfile{FirstName: "Ada", LastName: "Lovelace", CVPath: cvPath}
	require.NoError(t, repository.NewUserRepository(db).CreateStudent(context.Background(), &user, &profile))
	return fixtureStudent{User: user, Profile: profile}
}

func seedCompany(t *testing.T, db *gorm.DB, email string) fixtureCompany {
	t.Helper()
	user := models.User{Email: email, PasswordHash: "x", Role: models.RoleCompany, Active: true}
	profile := models.CompanyProfile{Name: "Acme"}
	require.NoError(t, repository.NewUserRepository(db).CreateCompany(context.Background(), &user, &profile))
	return fixtureCompany{User: user, Profile: profile}
}

func seedOffer(t *testing.T, db *gorm.DB, companyID uint, status models.OfferStatus, skills ...string) models.Offer {
	t.Helper()
	offer := models.Offer{
		CompanyID:    companyID,
		Title:        "Backend intern",
		Description:  "Build APIs with the platform team",
		ContractType: models.ContractInternship,
		City:         "Lyon",
		Status:       status,
	}
	levels := make([]repository.SkillLevel, 0, len(skills))
	for _, skill := range skills {
		levels = append(levels, repository.SkillLevel{Name: skill, Level: 3})
	}
	require.NoError(t, repository.NewOfferRepository(db).Create(context.Background(), &offer, levels))
	return offer
}

type recordingPublisher struct {
	mu    sync.Mutex
	calls []dto.NotificationCreateRequest
	err   error
}

func (r *recordingPublisher) Publish(ctx context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, payload)
	if r.err != nil {
		return dto.NotificationResponse{}, r.err
	}
	return dto.NotificationResponse{ID: uint(len(r.calls)), RecipientID: payload.RecipientID, Title: payload.Title, Type: payload.Type}, nil
}

func (r *recordingPublisher) Calls() []dto.NotificationCreateRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]dto.NotificationCreateRequest(nil), r.calls...)
}

type recordingMailer struct {
	mu     sync.Mutex
	emails []Email
}

func (r *recordingMailer) Send(ctx context.Context, email Email) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emails = append(r.emails, email)
	return nil
}
