package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/noah-isme/stagehub-api/internal/dto"
	"github.com/noah-isme/stagehub-api/internal/models"
	"github.com/noah-isme/stagehub-api/internal/observability"
	"github.com/noah-isme/stagehub-api/internal/repository"
	"github.com/noah-isme/stagehub-api/pkg/ai"
)

// errCVTextEmpty marks a CV whose stored document yields no text. Batches count it as a failure.
var errCVTextEmpty = errors.New("cv text could not be extracted")

// TextExtractor turns a stored document into plain text. Failures yield "".
type TextExtractor interface {
	Extract(ctx context.Context, path string) string
}

// BatchResult counts the outcome of one batch run.
type BatchResult struct {
	Eligible  int `json:"eligible"`
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// CVPipeline turns uploaded CVs into CV summary records.
type CVPipeline interface {
	ProcessStudent(ctx context.Context, studentID uint) (*models.CVSummary, error)
	ProcessPending(ctx context.Context) (BatchResult, error)
}

// CVPipelineConfig tunes batch pacing.
type CVPipelineConfig struct {
	PauseEvery int
	Pause      time.Duration
}

type cvPipeline struct {
	students      repository.StudentRepository
	summaries     repository.CVSummaryRepository
	extractor     TextExtractor
	summarizer    ai.Summarizer
	notifications NotificationPublisher
	cfg           CVPipelineConfig
	logger        zerolog.Logger
	tracer        trace.Tracer
	now           func() time.Time
	sleep         func(ctx context.Context, d time.Duration) error
}

// NewCVPipeline constructs the CV processing pipeline. notifications may be nil.
func NewCVPipeline(students repository.StudentRepository, summaries repository.CVSummaryRepository, extractor TextExtractor, summarizer ai.Summarizer, notifications NotificationPublisher, cfg CVPipelineConfig, logger zerolog.Logger) CVPipeline {
	if cfg.PauseEvery <= 0 {
		cfg.PauseEvery = 10
	}
	return &cvPipeline{
		students:      students,
		summaries:     summaries,
		extractor:     extractor,
		summarizer:    summarizer,
		notifications: notifications,
		cfg:           cfg,
		logger:        logger.With().Str("component", "cv_pipeline").Logger(),
		tracer:        otel.Tracer("github.com/noah-isme/stagehub-api/internal/service/cv_pipeline"),
		now:           time.Now,
		sleep:         sleepContext,
	}
}

// ProcessStudent returns nil without error when the student has no CV or its text is empty.
func (p *cvPipeline) ProcessStudent(ctx context.Context, studentID uint) (*models.CVSummary, error) {
	student, err := p.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, mapStudentErr(err)
	}
	record, err := p.process(ctx, student)
	if errors.Is(err, errCVTextEmpty) {
		return nil, nil
	}
	return record, err
}

// ProcessPending walks every eligible student one at a time. Per-student
// failures are logged and counted; only a failing eligibility query or a
// cancelled context is returned.
func (p *cvPipeline) ProcessPending(ctx context.Context) (BatchResult, error) {
	ctx, span := p.tracer.Start(ctx, "cv.process_pending")
	defer span.End()

	pending, err := p.students.ListPendingCV(ctx)
	if err != nil {
		span.RecordError(err)
		return BatchResult{}, fmt.Errorf("list pending cvs: %w", err)
	}

	result := BatchResult{Eligible: len(pending)}
	for i, student := range pending {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		record, err := p.process(ctx, student)
		result.Processed++
		switch {
		case err != nil:
			result.Failed++
			p.logger.Error().Err(err).Uint("student_id", student.ID).Msg("cv processing failed")
		case record == nil:
			result.Skipped++
		default:
			result.Succeeded++
		}

		if result.Processed%p.cfg.PauseEvery == 0 && i < len(pending)-1 && p.cfg.Pause > 0 {
			if err := p.sleep(ctx, p.cfg.Pause); err != nil {
				return result, err
			}
		}
	}

	span.SetAttributes(
		attribute.Int("cv.eligible", result.Eligible),
		attribute.Int("cv.succeeded", result.Succeeded),
		attribute.Int("cv.failed", result.Failed),
	)
	p.logger.Info().
		Int("eligible", result.Eligible).
		Int("succeeded", result.Succeeded).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("cv batch finished")

	return result, nil
}

func (p *cvPipeline) process(ctx context.Context, student models.StudentProfile) (*models.CVSummary, error) {
	ctx, span := p.tracer.Start(ctx, "cv.process_student", trace.WithAttributes(attribute.Int("student.id", int(student.ID))))
	defer span.End()

	if !student.HasCV() {
		observability.CVPipelineOutcomes().WithLabelValues("no_cv").Inc()
		return nil, nil
	}

	text := p.extractor.Extract(ctx, *student.CVPath)
	if text == "" {
		observability.CVPipelineOutcomes().WithLabelValues("empty_text").Inc()
		p.logger.Warn().Uint("student_id", student.ID).Msg("cv text empty; leaving record unprocessed")
		return nil, errCVTextEmpty
	}

	summary := p.summarizer.Summarize(ctx, text)
	if summary.Degraded {
		p.logger.Warn().Uint("student_id", student.ID).Msg("cv summary degraded")
	}

	processedAt := p.now().UTC()
	skills := models.DetectedSkills{
		Technical:      nonNil(summary.Skills.Technical),
		Organizational: nonNil(summary.Skills.Organizational),
	}
	record := models.CVSummary{
		StudentProfileID: student.ID,
		ExtractedText:    text,
		Summary:          summary.Summary,
		Skills:           datatypes.NewJSONType(skills),
		Processed:        true,
		ProcessedAt:      &processedAt,
	}
	if err := p.summaries.Upsert(ctx, &record); err != nil {
		observability.CVPipelineOutcomes().WithLabelValues("failed").Inc()
		span.RecordError(err)
		return nil, fmt.Errorf("store cv summary for student %d: %w", student.ID, err)
	}

	observability.CVPipelineOutcomes().WithLabelValues("succeeded").Inc()
	notifyQuietly(ctx, p.notifications, p.logger, dto.NotificationCreateRequest{
		RecipientID: student.UserID,
		Title:       "CV analysed",
		Body:        "Your CV summary and detected skills are ready.",
		Type:        models.NotificationCVProcessed,
		Link:        "/students/me/cv-summary",
	})

	return &record, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
