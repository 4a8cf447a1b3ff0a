package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/stagehub-api/internal/dto"
	"github.com/noah-isme/stagehub-api/internal/models"
	"github.com/noah-isme/stagehub-api/internal/observability"
	"github.com/noah-isme/stagehub-api/internal/repository"
	"github.com/noah-isme/stagehub-api/internal/storage"
)

const pdfMime = "application/pdf"

var (
	// ErrStudentNotFound indicates the caller has no student profile.
	ErrStudentNotFound = errors.New("student profile not found")
	// ErrCVRequired indicates the upload carried no file.
	ErrCVRequired = errors.New("cv file is required")
	// ErrCVTooLarge indicates the payload exceeded the configured limit.
	ErrCVTooLarge = errors.New("cv exceeds maximum allowed size")
	// ErrCVNotPDF indicates the detected MIME type is not PDF.
	ErrCVNotPDF = errors.New("cv must be a PDF document")
	// ErrCVSummaryNotFound indicates no processed summary exists yet.
	ErrCVSummaryNotFound = errors.New("cv summary not available")
)

// CVJobEnqueuer schedules background CV processing.
type CVJobEnqueuer interface {
	EnqueueStudent(ctx context.Context, studentID uint) error
	EnqueueBatch(ctx context.Context) error
}

// StudentService manages the student profile, declared skills and CV.
type StudentService interface {
	Profile(ctx context.Context, actor models.Principal) (dto.StudentProfileResponse, error)
	UpdateProfile(ctx context.Context, actor models.Principal, req dto.StudentProfileUpdateRequest) (dto.StudentProfileResponse, error)
	ReplaceSkills(ctx context.Context, actor models.Principal, req dto.SkillsReplaceRequest) ([]dto.SkillResponse, error)
	UploadCV(ctx context.Context, actor models.Principal, file *multipart.FileHeader) (dto.StudentProfileResponse, error)
	CVSummary(ctx context.Context, actor models.Principal) (dto.CVSummaryResponse, error)
}

type studentService struct {
	students  repository.StudentRepository
	summaries repository.CVSummaryRepository
	documents storage.Store
	jobs      CVJobEnqueuer
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	maxSize   int64
}

// NewStudentService constructs the student service. A nil job enqueuer leaves
// uploaded CVs for the next batch run.
func NewStudentService(students repository.StudentRepository, summaries repository.CVSummaryRepository, documents storage.Store, jobs CVJobEnqueuer, maxBytes int64, validate *validator.Validate, logger zerolog.Logger) StudentService {
	if maxBytes <= 0 {
		maxBytes = 5 * 1024 * 1024
	}
	return &studentService{
		students:  students,
		summaries: summaries,
		documents: documents,
		jobs:      jobs,
		validator: validate,
		logger:    logger.With().Str("component", "student_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/stagehub-api/internal/service/student"),
		maxSize:   maxBytes,
	}
}

func (s *studentService) Profile(ctx context.Context, actor models.Principal) (dto.StudentProfileResponse, error) {
	profile, err := s.currentProfile(ctx, actor)
	if err != nil {
		return dto.StudentProfileResponse{}, err
	}
	return dto.NewStudentProfileResponse(profile), nil
}

func (s *studentService) UpdateProfile(ctx context.Context, actor models.Principal, req dto.StudentProfileUpdateRequest) (dto.StudentProfileResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.StudentProfileResponse{}, err
	}

	profile, err := s.currentProfile(ctx, actor)
	if err != nil {
		return dto.StudentProfileResponse{}, err
	}

	updates := map[string]interface{}{}
	setTrimmed(updates, "first_name", req.FirstName)
	setTrimmed(updates, "last_name", req.LastName)
	setTrimmed(updates, "school", req.School)
	setTrimmed(updates, "level", req.Level)
	setTrimmed(updates, "city", req.City)
	setTrimmed(updates, "bio", req.Bio)
	if len(updates) == 0 {
		return dto.NewStudentProfileResponse(profile), nil
	}

	updated, err := s.students.UpdateProfile(ctx, profile.ID, updates)
	if err != nil {
		return dto.StudentProfileResponse{}, err
	}
	return dto.NewStudentProfileResponse(updated), nil
}

func (s *studentService) ReplaceSkills(ctx context.Context, actor models.Principal, req dto.SkillsReplaceRequest) ([]dto.SkillResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	profile, err := s.currentProfile(ctx, actor)
	if err != nil {
		return nil, err
	}

	saved, err := s.students.ReplaceSkills(ctx, profile.ID, skillLevels(req.Skills))
	if err != nil {
		return nil, err
	}
	return dto.NewStudentSkillResponses(saved), nil
}

func (s *studentService) UploadCV(ctx context.Context, actor models.Principal, file *multipart.FileHeader) (dto.StudentProfileResponse, error) {
	ctx, span := s.tracer.Start(ctx, "student.upload_cv")
	defer span.End()
	span.SetAttributes(attribute.Int64("upload.max_bytes", s.maxSize))

	if file == nil {
		span.SetStatus(codes.Error, "validation failed")
		return dto.StudentProfileResponse{}, ErrCVRequired
	}
	if file.Size > s.maxSize {
		observability.UploadsRejected().WithLabelValues("cv", "size").Inc()
		span.SetStatus(codes.Error, "payload too large")
		return dto.StudentProfileResponse{}, ErrCVTooLarge
	}

	profile, err := s.currentProfile(ctx, actor)
	if err != nil {
		return dto.StudentProfileResponse{}, err
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		return dto.StudentProfileResponse{}, err
	}
	defer handle.Close()

	payload, err := s.readLimited(handle)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return dto.StudentProfileResponse{}, err
	}

	detected := mimetype.Detect(payload)
	span.SetAttributes(attribute.String("upload.detected_mime", detected.String()))
	if !detected.Is(pdfMime) {
		observability.UploadsRejected().WithLabelValues("cv", "type").Inc()
		span.SetStatus(codes.Error, "type not allowed")
		return dto.StudentProfileResponse{}, ErrCVNotPDF
	}

	path := storage.NewCVPath()
	if err := s.documents.Save(ctx, path, bytes.NewReader(payload)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return dto.StudentProfileResponse{}, fmt.Errorf("store cv: %w", err)
	}

	if err := s.students.ReplaceCV(ctx, profile.ID, path); err != nil {
		if cleanupErr := s.documents.Delete(ctx, path); cleanupErr != nil {
			s.logger.Warn().Err(cleanupErr).Str("path", path).Msg("failed to remove orphaned cv")
		}
		span.RecordError(err)
		return dto.StudentProfileResponse{}, err
	}

	if profile.CVPath != nil && *profile.CVPath != "" && *profile.CVPath != path {
		if err := s.documents.Delete(ctx, *profile.CVPath); err != nil {
			s.logger.Warn().Err(err).Uint("student_id", profile.ID).Msg("failed to delete superseded cv")
		}
	}

	if s.jobs != nil {
		if err := s.jobs.EnqueueStudent(ctx, profile.ID); err != nil {
			s.logger.Warn().Err(err).Uint("student_id", profile.ID).Msg("failed to enqueue cv processing")
		}
	}

	span.SetStatus(codes.Ok, "stored")
	s.logger.Info().Uint("student_id", profile.ID).Int("size_bytes", len(payload)).Msg("cv uploaded")

	updated, err := s.students.FindByID(ctx, profile.ID)
	if err != nil {
		return dto.StudentProfileResponse{}, err
	}
	return dto.NewStudentProfileResponse(updated), nil
}

func (s *studentService) CVSummary(ctx context.Context, actor models.Principal) (dto.CVSummaryResponse, error) {
	profile, err := s.currentProfile(ctx, actor)
	if err != nil {
		return dto.CVSummaryResponse{}, err
	}

	summary, err := s.summaries.FindByStudent(ctx, profile.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CVSummaryResponse{}, ErrCVSummaryNotFound
		}
		return dto.CVSummaryResponse{}, err
	}
	return dto.NewCVSummaryResponse(summary), nil
}

func (s *studentService) currentProfile(ctx context.Context, actor models.Principal) (models.StudentProfile, error) {
	if !actor.Is(models.RoleStudent) {
		return models.StudentProfile{}, ErrForbidden
	}
	profile, err := s.students.FindByUserID(ctx, actor.UserID)
	if err != nil {
		return models.StudentProfile{}, mapStudentErr(err)
	}
	return profile, nil
}

func mapStudentErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrStudentNotFound
	}
	return err
}

func (s *studentService) readLimited(reader io.Reader) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(reader, s.maxSize+1)); err != nil {
		return nil, err
	}
	if int64(buf.Len()) > s.maxSize {
		observability.UploadsRejected().WithLabelValues("cv", "size").Inc()
		return nil, ErrCVTooLarge
	}
	return buf.Bytes(), nil
}

func setTrimmed(updates map[string]interface{}, column string, value *string) {
	if value == nil {
		return
	}
	updates[column] = strings.TrimSpace(*value)
}

func skillLevels(inputs []dto.SkillInput) []repository.SkillLevel {
	levels := make([]repository.SkillLevel, 0, len(inputs))
	for _, input := range inputs {
		levels = append(levels, repository.SkillLevel{Name: input.Name, Level: input.Level})
	}
	return levels
}
