package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/stagehub-api/internal/dto"
	"github.com/noah-isme/stagehub-api/internal/models"
	"github.com/noah-isme/stagehub-api/internal/repository"
)

const adminStatsCacheKey = "admin:stats"

// CV processing modes accepted by the admin console and the CLI.
const (
	CVModeSync  = "sync"
	CVModeQueue = "queue"
)

var (
	// ErrUserNotFound indicates the account does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrSelfDeactivation is returned when an administrator disables their own account.
	ErrSelfDeactivation = errors.New("administrators cannot deactivate themselves")
	// ErrCVQueueUnavailable is returned when queued mode is requested without a queue.
	ErrCVQueueUnavailable = errors.New("cv job queue unavailable")
)

// CVBatchRunner runs a whole CV batch, including any retry policy.
type CVBatchRunner interface {
	RunBatch(ctx context.Context) (BatchResult, error)
}

// AdminDeps groups the collaborators of the admin console.
type AdminDeps struct {
	Users        repository.UserRepository
	Offers       repository.OfferRepository
	Applications repository.ApplicationRepository
	Summaries    repository.CVSummaryRepository
	Activity     ActivityService
	Runner       CVBatchRunner
	Jobs         CVJobEnqueuer
	Cache        *redis.Client
	StatsTTL     time.Duration
}

// AdminService exposes administrator use-cases.
type AdminService interface {
	ListUsers(ctx context.Context, actor models.Principal, req dto.AdminUserListRequest) (dto.AdminUserListResponse, error)
	SetUserStatus(ctx context.Context, actor models.Principal, userID uint, req dto.AdminUserStatusRequest) (dto.UserResponse, error)
	Stats(ctx context.Context, actor models.Principal) (dto.AdminStatsResponse, error)
	ProcessCVs(ctx context.Context, actor models.Principal, req dto.CVProcessRequest) (dto.CVProcessResponse, error)
	Activity(ctx context.Context, actor models.Principal, req dto.AdminActivityListRequest) (dto.AdminActivityListResponse, error)
}

type adminService struct {
	deps      AdminDeps
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewAdminService constructs the admin console service.
func NewAdminService(deps AdminDeps, validate *validator.Validate, logger zerolog.Logger) AdminService {
	return &adminService{
		deps:      deps,
		validator: validate,
		logger:    logger.With().Str("component", "admin_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/stagehub-api/internal/service/admin"),
		now:       time.Now,
	}
}

func (s *adminService) ListUsers(ctx context.Context, actor models.Principal, req dto.AdminUserListRequest) (dto.AdminUserListResponse, error) {
	if !actor.Is(models.RoleAdmin) {
		return dto.AdminUserListResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.AdminUserListResponse{}, err
	}

	req.ListRequest = req.ListRequest.Normalize()
	filter := repository.UserFilter{
		Role:   models.Role(req.Role),
		Search: req.Search,
		Page:   repository.Page{Page: req.Page, PageSize: req.PageSize},
	}
	switch req.Status {
	case "active":
		active := true
		filter.Active = &active
	case "inactive":
		active := false
		filter.Active = &active
	}

	users, total, err := s.deps.Users.List(ctx, filter)
	if err != nil {
		return dto.AdminUserListResponse{}, err
	}

	items := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, dto.NewUserResponse(user))
	}

	return dto.AdminUserListResponse{
		Items:      items,
		Pagination: dto.NewPaginationMeta(req.Page, req.PageSize, total),
	}, nil
}

func (s *adminService) SetUserStatus(ctx context.Context, actor models.Principal, userID uint, req dto.AdminUserStatusRequest) (dto.UserResponse, error) {
	if !actor.Is(models.RoleAdmin) {
		return dto.UserResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}
	if userID == actor.UserID && !*req.Active {
		return dto.UserResponse{}, ErrSelfDeactivation
	}

	user, err := s.deps.Users.UpdateActive(ctx, userID, *req.Active)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	action := "user.deactivated"
	if user.Active {
		action = "user.activated"
	}
	s.record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     action,
		EntityType: "user",
		EntityID:   &user.ID,
		Metadata:   map[string]interface{}{"email": user.Email, "role": string(user.Role)},
	})
	s.invalidateStats(ctx)

	return dto.NewUserResponse(user), nil
}

func (s *adminService) Stats(ctx context.Context, actor models.Principal) (dto.AdminStatsResponse, error) {
	if !actor.Is(models.RoleAdmin) {
		return dto.AdminStatsResponse{}, ErrForbidden
	}

	ctx, span := s.tracer.Start(ctx, "admin.stats")
	span.SetAttributes(attribute.String("admin.cache_key", adminStatsCacheKey))
	defer span.End()

	if s.deps.Cache != nil {
		cached, err := s.deps.Cache.Get(ctx, adminStatsCacheKey).Result()
		if err == nil {
			var response dto.AdminStatsResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				span.SetAttributes(attribute.Bool("admin.cache_hit", true))
				return response, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read stats cache")
			span.RecordError(err)
		}
	}

	stats, err := s.aggregate(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "aggregate_failed")
		return dto.AdminStatsResponse{}, err
	}

	if s.deps.Cache != nil {
		payload, err := json.Marshal(stats)
		if err == nil {
			if err := s.deps.Cache.Set(ctx, adminStatsCacheKey, payload, s.deps.StatsTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store stats cache")
				span.RecordError(err)
			}
		}
	}

	return stats, nil
}

func (s *adminService) aggregate(ctx context.Context) (dto.AdminStatsResponse, error) {
	roles, err := s.deps.Users.CountByRole(ctx)
	if err != nil {
		return dto.AdminStatsResponse{}, fmt.Errorf("count users: %w", err)
	}
	offers, err := s.deps.Offers.CountByStatus(ctx)
	if err != nil {
		return dto.AdminStatsResponse{}, fmt.Errorf("count offers: %w", err)
	}
	applications, err := s.deps.Applications.CountByStatus(ctx)
	if err != nil {
		return dto.AdminStatsResponse{}, fmt.Errorf("count applications: %w", err)
	}
	processed, pending, err := s.deps.Summaries.CountByProcessed(ctx)
	if err != nil {
		return dto.AdminStatsResponse{}, fmt.Errorf("count cv summaries: %w", err)
	}

	stats := dto.AdminStatsResponse{
		UsersByRole:          map[string]int64{},
		OffersByStatus:       map[string]int64{},
		ApplicationsByStatus: map[string]int64{},
		CV:                   dto.CVStats{Processed: processed, Pending: pending},
		GeneratedAt:          s.now().UTC(),
	}
	for role, total := range roles {
		stats.UsersByRole[string(role)] = total
	}
	for status, total := range offers {
		stats.OffersByStatus[string(status)] = total
	}
	for status, total := range applications {
		stats.ApplicationsByStatus[string(status)] = total
	}
	return stats, nil
}

func (s *adminService) ProcessCVs(ctx context.Context, actor models.Principal, req dto.CVProcessRequest) (dto.CVProcessResponse, error) {
	if !actor.Is(models.RoleAdmin) {
		return dto.CVProcessResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.CVProcessResponse{}, err
	}

	mode := req.Mode
	if mode == "" {
		mode = CVModeQueue
	}

	response := dto.CVProcessResponse{Mode: mode}
	if mode == CVModeQueue {
		if s.deps.Jobs == nil {
			return dto.CVProcessResponse{}, ErrCVQueueUnavailable
		}
		if err := s.deps.Jobs.EnqueueBatch(ctx); err != nil {
			return dto.CVProcessResponse{}, fmt.Errorf("enqueue cv batch: %w", err)
		}
		response.Queued = true
	} else {
		result, err := s.deps.Runner.RunBatch(ctx)
		if err != nil {
			return dto.CVProcessResponse{}, err
		}
		response.Processed = result.Processed
		response.Succeeded = result.Succeeded
		response.Failed = result.Failed
		response.Skipped = result.Skipped
		s.invalidateStats(ctx)
	}

	s.record(ctx, ActivityEntry{
		Actor:      actor,
		Action:     "cv.process",
		EntityType: "cv_batch",
		Metadata:   map[string]interface{}{"mode": mode, "processed": response.Processed, "failed": response.Failed},
	})

	return response, nil
}

func (s *adminService) Activity(ctx context.Context, actor models.Principal, req dto.AdminActivityListRequest) (dto.AdminActivityListResponse, error) {
	if !actor.Is(models.RoleAdmin) {
		return dto.AdminActivityListResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.AdminActivityListResponse{}, err
	}
	return s.deps.Activity.List(ctx, req)
}

func (s *adminService) record(ctx context.Context, entry ActivityEntry) {
	if s.deps.Activity == nil {
		return
	}
	if _, err := s.deps.Activity.Record(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Str("action", entry.Action).Msg("failed to record admin activity")
	}
}

func (s *adminService) invalidateStats(ctx context.Context) {
	if s.deps.Cache == nil {
		return
	}
	if err := s.deps.Cache.Del(ctx, adminStatsCacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate stats cache")
	}
}
