package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
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
	// ErrApplicationNotFound indicates the application does not exist.
	ErrApplicationNotFound = errors.New("application not found")
	// ErrApplicationExists indicates the student already applied to the offer.
	ErrApplicationExists = errors.New("already applied to this offer")
	// ErrOfferNotActive indicates the offer no longer accepts applications.
	ErrOfferNotActive = errors.New("offer is not accepting applications")
	// ErrInvalidTransition indicates the requested status is not reachable.
	ErrInvalidTransition = errors.New("status transition not allowed")
	// ErrNotCancellable indicates the application moved past the cancellable states.
	ErrNotCancellable = errors.New("application can no longer be cancelled")
	// ErrInterviewInPast indicates an interview date that already elapsed.
	ErrInterviewInPast = errors.New("interview date must be in the future")
)

// ApplicationService drives the application lifecycle.
type ApplicationService interface {
	Apply(ctx context.Context, actor models.Principal, offerID uint, req dto.ApplyRequest) (dto.ApplicationResponse, error)
	Cancel(ctx context.Context, actor models.Principal, id uint) error
	Get(ctx context.Context, actor models.Principal, id uint) (dto.ApplicationResponse, error)
	ListMine(ctx context.Context, actor models.Principal, req dto.ApplicationListRequest) (dto.ApplicationListResponse, error)
	ListForOffer(ctx context.Context, actor models.Principal, offerID uint, req dto.ApplicationListRequest) (dto.ApplicationListResponse, error)
	ChangeStatus(ctx context.Context, actor models.Principal, id uint, req dto.ApplicationStatusRequest) (dto.ApplicationResponse, error)
}

type applicationService struct {
	applications  repository.ApplicationRepository
	offers        repository.OfferRepository
	students      repository.StudentRepository
	companies     repository.CompanyRepository
	users         repository.UserRepository
	notifications NotificationPublisher
	mailer        Mailer
	validator     *validator.Validate
	logger        zerolog.Logger
	tracer        trace.Tracer
	now           func() time.Time
}

// ApplicationDeps groups the collaborators of the application service.
type ApplicationDeps struct {
	Applications  repository.ApplicationRepository
	Offers        repository.OfferRepository
	Students      repository.StudentRepository
	Companies     repository.CompanyRepository
	Users         repository.UserRepository
	Notifications NotificationPublisher
	Mailer        Mailer
}

// NewApplicationService constructs the application service.
func NewApplicationService(deps ApplicationDeps, validate *validator.Validate, logger zerolog.Logger) ApplicationService {
	return &applicationService{
		applications:  deps.Applications,
		offers:        deps.Offers,
		students:      deps.Students,
		companies:     deps.Companies,
		users:         deps.Users,
		notifications: deps.Notifications,
		mailer:        deps.Mailer,
		validator:     validate,
		logger:        logger.With().Str("component", "application_service").Logger(),
		tracer:        otel.Tracer("github.com/noah-isme/stagehub-api/internal/service/application"),
		now:           time.Now,
	}
}

func (s *applicationService) Apply(ctx context.Context, actor models.Principal, offerID uint, req dto.ApplyRequest) (dto.ApplicationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ApplicationResponse{}, err
	}

	student, err := s.currentStudent(ctx, actor)
	if err != nil {
		return dto.ApplicationResponse{}, err
	}

	offer, err := s.offers.FindByID(ctx, offerID)
	if err != nil {
		return dto.ApplicationResponse{}, mapOfferErr(err)
	}
	if !offer.Status.AcceptsApplications() {
		return dto.ApplicationResponse{}, ErrOfferNotActive
	}

	exists, err := s.applications.Exists(ctx, student.ID, offer.ID)
	if err != nil {
		return dto.ApplicationResponse{}, err
	}
	if exists {
		return dto.ApplicationResponse{}, ErrApplicationExists
	}

	application := models.Application{
		StudentProfileID: student.ID,
		OfferID:          offer.ID,
		Status:           models.ApplicationPending,
		CoverLetter:      strings.TrimSpace(req.CoverLetter),
	}
	if err := s.applications.Create(ctx, &application); err != nil {
		if again, checkErr := s.applications.Exists(ctx, student.ID, offer.ID); checkErr == nil && again {
			return dto.ApplicationResponse{}, ErrApplicationExists
		}
		return dto.ApplicationResponse{}, err
	}

	s.logger.Info().Uint("application_id", application.ID).Uint("offer_id", offer.ID).Uint("student_id", student.ID).Msg("application created")

	notifyQuietly(ctx, s.notifications, s.logger, dto.NotificationCreateRequest{
		RecipientID: offer.Company.UserID,
		Title:       "New application",
		Body:        fmt.Sprintf("%s applied to %s", student.FullName(), offer.Title),
		Type:        models.NotificationApplicationReceived,
		Link:        fmt.Sprintf("/applications/%d", application.ID),
	})

	stored, err := s.applications.FindByID(ctx, application.ID)
	if err != nil {
		return dto.ApplicationResponse{}, err
	}
	return dto.NewApplicationResponse(stored), nil
}

func (s *applicationService) Cancel(ctx context.Context, actor models.Principal, id uint) error {
	application, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !actor.Is(models.RoleStudent) || application.Student.UserID != actor.UserID {
		return ErrForbidden
	}
	if !application.Status.Cancellable() {
		return ErrNotCancellable
	}

	deleted, err := s.applications.DeleteCancellable(ctx, application.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotCancellable
	}

	s.logger.Info().Uint("application_id", application.ID).Str("status", string(application.Status)).Msg("application cancelled")
	return nil
}

func (s *applicationService) Get(ctx context.Context, actor models.Principal, id uint) (dto.ApplicationResponse, error) {
	application, err := s.load(ctx, id)
	if err != nil {
		return dto.ApplicationResponse{}, err
	}

	switch actor.Role {
	case models.RoleAdmin:
		return dto.NewApplicationResponse(application), nil
	case models.RoleStudent:
		if application.Student.UserID != actor.UserID {
			return dto.ApplicationResponse{}, ErrForbidden
		}
		return dto.NewApplicationResponse(application), nil
	case models.RoleCompany:
		if application.Offer.Company.UserID != actor.UserID {
			return dto.ApplicationResponse{}, ErrForbidden
		}
	default:
		return dto.ApplicationResponse{}, ErrForbidden
	}

	if application.Status == models.ApplicationPending {
		changed, err := s.applications.ChangeStatus(ctx, application.ID, repository.StatusChange{
			From: models.ApplicationPending,
			To:   models.ApplicationViewed,
		})
		if err != nil {
			return dto.ApplicationResponse{}, err
		}
		if changed {
			application.Status = models.ApplicationViewed
			s.notifyStatus(ctx, application, "")
		}
	}

	return dto.NewApplicationResponse(application), nil
}

func (s *applicationService) ListMine(ctx context.Context, actor models.Principal, req dto.ApplicationListRequest) (dto.ApplicationListResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ApplicationListResponse{}, err
	}
	student, err := s.currentStudent(ctx, actor)
	if err != nil {
		return dto.ApplicationListResponse{}, err
	}
	return s.list(ctx, repository.ApplicationFilter{StudentID: student.ID}, req)
}

func (s *applicationService) ListForOffer(ctx context.Context, actor models.Principal, offerID uint, req dto.ApplicationListRequest) (dto.ApplicationListResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ApplicationListResponse{}, err
	}
	company, err := currentCompany(ctx, s.companies, actor)
	if err != nil {
		return dto.ApplicationListResponse{}, err
	}
	offer, err := s.offers.FindByID(ctx, offerID)
	if err != nil {
		return dto.ApplicationListResponse{}, mapOfferErr(err)
	}
	if offer.CompanyID != company.ID {
		return dto.ApplicationListResponse{}, ErrForbidden
	}
	return s.list(ctx, repository.ApplicationFilter{OfferID: offer.ID}, req)
}

func (s *applicationService) ChangeStatus(ctx context.Context, actor models.Principal, id uint, req dto.ApplicationStatusRequest) (dto.ApplicationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ApplicationResponse{}, err
	}

	next := models.ApplicationStatus(req.Status)
	ctx, span := s.tracer.Start(ctx, "applications.change_status", trace.WithAttributes(
		attribute.Int("application.id", int(id)),
		attribute.String("application.next_status", string(next)),
	))
	defer span.End()

	application, err := s.load(ctx, id)
	if err != nil {
		return dto.ApplicationResponse{}, err
	}
	if !actor.Is(models.RoleCompany) || application.Offer.Company.UserID != actor.UserID {
		return dto.ApplicationResponse{}, ErrForbidden
	}
	if !application.Status.CanTransitionTo(next) {
		return dto.ApplicationResponse{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, application.Status, next)
	}

	change := repository.StatusChange{From: application.Status, To: next}
	if next == models.ApplicationInterview {
		if req.InterviewDate == nil || !req.InterviewDate.After(s.now()) {
			return dto.ApplicationResponse{}, ErrInterviewInPast
		}
		interviewType := models.InterviewType(req.InterviewType)
		change.InterviewDate = req.InterviewDate
		change.InterviewType = &interviewType
		change.InterviewLocation = strings.TrimSpace(req.InterviewLocation)
		change.InterviewLink = strings.TrimSpace(req.InterviewLink)
	}

	changed, err := s.applications.ChangeStatus(ctx, application.ID, change)
	if err != nil {
		span.RecordError(err)
		return dto.ApplicationResponse{}, err
	}
	if !changed {
		return dto.ApplicationResponse{}, fmt.Errorf("%w: application changed concurrently", ErrInvalidTransition)
	}

	updated, err := s.applications.FindByID(ctx, application.ID)
	if err != nil {
		return dto.ApplicationResponse{}, err
	}

	s.logger.Info().
		Uint("application_id", updated.ID).
		Str("from", string(application.Status)).
		Str("to", string(next)).
		Msg("application status changed")

	s.notifyStatus(ctx, updated, strings.TrimSpace(req.Message))
	if next == models.ApplicationInterview {
		s.sendInterviewEmail(ctx, updated)
	}

	return dto.NewApplicationResponse(updated), nil
}

func (s *applicationService) list(ctx context.Context, filter repository.ApplicationFilter, req dto.ApplicationListRequest) (dto.ApplicationListResponse, error) {
	req.ListRequest = req.ListRequest.Normalize()
	filter.Status = models.ApplicationStatus(req.Status)
	filter.Page = repository.Page{Page: req.Page, PageSize: req.PageSize}

	applications, total, err := s.applications.List(ctx, filter)
	if err != nil {
		return dto.ApplicationListResponse{}, err
	}

	items := make([]dto.ApplicationResponse, 0, len(applications))
	for _, application := range applications {
		items = append(items, dto.NewApplicationResponse(application))
	}
	return dto.ApplicationListResponse{
		Items:      items,
		Pagination: dto.NewPaginationMeta(req.Page, req.PageSize, total),
	}, nil
}

func (s *applicationService) load(ctx context.Context, id uint) (models.Application, error) {
	application, err := s.applications.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Application{}, ErrApplicationNotFound
		}
		return models.Application{}, err
	}
	return application, nil
}

func (s *applicationService) currentStudent(ctx context.Context, actor models.Principal) (models.StudentProfile, error) {
	if !actor.Is(models.RoleStudent) {
		return models.StudentProfile{}, ErrForbidden
	}
	student, err := s.students.FindByUserID(ctx, actor.UserID)
	if err != nil {
		return models.StudentProfile{}, mapStudentErr(err)
	}
	return student, nil
}

func (s *applicationService) notifyStatus(ctx context.Context, application models.Application, message string) {
	payload := dto.NotificationCreateRequest{
		RecipientID: application.Student.UserID,
		Title:       fmt.Sprintf("Application %s", statusLabel(application.Status)),
		Body:        fmt.Sprintf("%s at %s", application.Offer.Title, application.Offer.Company.Name),
		Type:        models.NotificationStatusChanged,
		Link:        fmt.Sprintf("/applications/%d", application.ID),
	}
	if application.Status == models.ApplicationInterview {
		payload.Type = models.NotificationInterviewScheduled
		payload.Title = "Interview scheduled"
		if application.InterviewDate != nil {
			payload.Body = fmt.Sprintf("%s on %s", payload.Body, application.InterviewDate.Format(time.RFC1123))
		}
	}
	if message != "" {
		payload.Body = payload.Body + ": " + message
	}
	notifyQuietly(ctx, s.notifications, s.logger, payload)
}

func (s *applicationService) sendInterviewEmail(ctx context.Context, application models.Application) {
	if s.mailer == nil || s.users == nil {
		return
	}
	user, err := s.users.FindByID(ctx, application.Student.UserID)
	if err != nil {
		s.logger.Warn().Err(err).Uint("application_id", application.ID).Msg("failed to load student for interview email")
		return
	}

	var where string
	switch {
	case application.InterviewType == nil:
	case *application.InterviewType == models.InterviewOnSite:
		where = "Location: " + application.InterviewLocation
	case *application.InterviewType == models.InterviewVideo:
		where = "Link: " + application.InterviewLink
	default:
		where = "By phone"
	}

	var when string
	if application.InterviewDate != nil {
		when = application.InterviewDate.Format(time.RFC1123)
	}

	email := Email{
		To:      user.Email,
		Subject: fmt.Sprintf("Interview for %s", application.Offer.Title),
		Body:    fmt.Sprintf("Hello %s,\n\n%s invites you to an interview on %s.\n%s\n", application.Student.FullName(), application.Offer.Company.Name, when, where),
	}
	if err := s.mailer.Send(ctx, email); err != nil {
		s.logger.Warn().Err(err).Uint("application_id", application.ID).Msg("failed to send interview email")
	}
}

func statusLabel(status models.ApplicationStatus) string {
	switch status {
	case models.ApplicationViewed:
		return "viewed"
	case models.ApplicationInterview:
		return "moved to interview"
	case models.ApplicationAccepted:
		return "accepted"
	case models.ApplicationRejected:
		return "declined"
	default:
		return "pending"
	}
}
