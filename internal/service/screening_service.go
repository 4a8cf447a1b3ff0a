package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/stagehub-api/internal/dto"
	"github.com/noah-isme/stagehub-api/internal/models"
	"github.com/noah-isme/stagehub-api/internal/observability"
	"github.com/noah-isme/stagehub-api/internal/repository"
)

// ScreeningService lets candidates read and submit the screening test of their application.
type ScreeningService interface {
	CandidateTest(ctx context.Context, actor models.Principal, applicationID uint) (dto.ScreeningTestResponse, error)
	Submit(ctx context.Context, actor models.Principal, applicationID uint, req dto.TestSubmissionRequest) (dto.TestSubmissionResponse, error)
}

type screeningService struct {
	applications  repository.ApplicationRepository
	tests         repository.ScreeningTestRepository
	notifications NotificationPublisher
	validator     *validator.Validate
	logger        zerolog.Logger
	tracer        trace.Tracer
}

// NewScreeningService constructs the screening test engine.
func NewScreeningService(applications repository.ApplicationRepository, tests repository.ScreeningTestRepository, notifications NotificationPublisher, validate *validator.Validate, logger zerolog.Logger) ScreeningService {
	return &screeningService{
		applications:  applications,
		tests:         tests,
		notifications: notifications,
		validator:     validate,
		logger:        logger.With().Str("component", "screening_service").Logger(),
		tracer:        otel.Tracer("github.com/noah-isme/stagehub-api/internal/service/screening"),
	}
}

func (s *screeningService) CandidateTest(ctx context.Context, actor models.Principal, applicationID uint) (dto.ScreeningTestResponse, error) {
	application, err := s.candidateApplication(ctx, actor, applicationID)
	if err != nil {
		return dto.ScreeningTestResponse{}, err
	}

	test, err := s.loadTest(ctx, application.OfferID)
	if err != nil {
		return dto.ScreeningTestResponse{}, err
	}
	return dto.NewScreeningTestResponse(test, false), nil
}

// Submit scores the answers once per application. Pairs naming a question
// outside the offer's test, or an answer outside its question, are skipped.
func (s *screeningService) Submit(ctx context.Context, actor models.Principal, applicationID uint, req dto.TestSubmissionRequest) (dto.TestSubmissionResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.TestSubmissionResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "screening.submit", trace.WithAttributes(
		attribute.Int("application.id", int(applicationID)),
		attribute.Int("screening.pairs", len(req.Answers)),
	))
	defer span.End()

	application, err := s.candidateApplication(ctx, actor, applicationID)
	if err != nil {
		return dto.TestSubmissionResponse{}, err
	}
	if application.TestComplete {
		observability.ScreeningSubmissions().WithLabelValues("duplicate").Inc()
		return priorSubmission(application), nil
	}

	test, err := s.loadTest(ctx, application.OfferID)
	if err != nil {
		return dto.TestSubmissionResponse{}, err
	}

	answers, correct := gradeAnswers(test, req.Answers)
	total := len(test.Questions)
	score := scorePercent(correct, total)
	span.SetAttributes(attribute.Int("screening.score", score))

	accepted, err := s.applications.SubmitTest(ctx, application.ID, score, answers)
	if err != nil {
		span.RecordError(err)
		return dto.TestSubmissionResponse{}, fmt.Errorf("record test submission: %w", err)
	}
	if !accepted {
		observability.ScreeningSubmissions().WithLabelValues("duplicate").Inc()
		current, err := s.applications.FindByID(ctx, application.ID)
		if err != nil {
			return dto.TestSubmissionResponse{}, err
		}
		return priorSubmission(current), nil
	}

	observability.ScreeningSubmissions().WithLabelValues("accepted").Inc()
	s.logger.Info().Uint("application_id", application.ID).Int("score", score).Int("correct", correct).Int("total", total).Msg("screening test submitted")

	notifyQuietly(ctx, s.notifications, s.logger, dto.NotificationCreateRequest{
		RecipientID: application.Offer.Company.UserID,
		Title:       "Screening test completed",
		Body:        fmt.Sprintf("%s scored %d%% on %s", application.Student.FullName(), score, application.Offer.Title),
		Type:        models.NotificationTestSubmitted,
		Link:        fmt.Sprintf("/applications/%d", application.ID),
	})

	return dto.TestSubmissionResponse{
		ApplicationID: application.ID,
		Score:         score,
		Accepted:      true,
		Answered:      len(answers),
		Correct:       correct,
		Total:         total,
	}, nil
}

func (s *screeningService) candidateApplication(ctx context.Context, actor models.Principal, applicationID uint) (models.Application, error) {
	if !actor.Is(models.RoleStudent) {
		return models.Application{}, ErrForbidden
	}
	application, err := s.applications.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Application{}, ErrApplicationNotFound
		}
		return models.Application{}, err
	}
	if application.Student.UserID != actor.UserID {
		return models.Application{}, ErrForbidden
	}
	return application, nil
}

func (s *screeningService) loadTest(ctx context.Context, offerID uint) (models.ScreeningTest, error) {
	test, err := s.tests.FindByOffer(ctx, offerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ScreeningTest{}, ErrScreeningTestNotFound
		}
		return models.ScreeningTest{}, err
	}
	return test, nil
}

func gradeAnswers(test models.ScreeningTest, choices []dto.AnswerChoice) ([]models.SubmittedAnswer, int) {
	questions := make(map[uint]models.Question, len(test.Questions))
	for _, question := range test.Questions {
		questions[question.ID] = question
	}

	answers := make([]models.SubmittedAnswer, 0, len(choices))
	seen := make(map[uint]struct{}, len(choices))
	correct := 0
	for _, choice := range choices {
		question, ok := questions[choice.QuestionID]
		if !ok {
			continue
		}
		if _, dup := seen[choice.QuestionID]; dup {
			continue
		}
		answer, ok := findAnswer(question, choice.AnswerID)
		if !ok {
			continue
		}
		seen[choice.QuestionID] = struct{}{}
		if answer.Correct {
			correct++
		}
		answers = append(answers, models.SubmittedAnswer{
			QuestionID: question.ID,
			AnswerID:   answer.ID,
			Correct:    answer.Correct,
		})
	}
	return answers, correct
}

func findAnswer(question models.Question, answerID uint) (models.Answer, bool) {
	for _, answer := range question.Answers {
		if answer.ID == answerID {
			return answer, true
		}
	}
	return models.Answer{}, false
}

func scorePercent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

func priorSubmission(application models.Application) dto.TestSubmissionResponse {
	return dto.TestSubmissionResponse{
		ApplicationID: application.ID,
		Score:         application.ScoreValue(),
		Accepted:      false,
	}
}
