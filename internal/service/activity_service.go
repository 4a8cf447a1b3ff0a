package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/stagehub-api/internal/dto"
	"github.com/noah-isme/stagehub-api/internal/models"
	"github.com/noah-isme/stagehub-api/internal/repository"
)

// sensitiveMetadataKeys are masked wherever they appear inside a metadata key.
var sensitiveMetadataKeys = []string{"email", "password", "token", "phone", "cv_path"}

// ActivityEntry is one audit event before persistence.
type ActivityEntry struct {
	Actor      models.Principal
	Action     string
	EntityType string
	EntityID   *uint
	Metadata   map[string]interface{}
}

// ActivityRecorder persists audit events.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry) (dto.AdminActivityResponse, error)
}

// ActivityService records and lists the admin audit trail.
type ActivityService interface {
	ActivityRecorder
	List(ctx context.Context, req dto.AdminActivityListRequest) (dto.AdminActivityListResponse, error)
}

type activityService struct {
	repo   repository.ActivityLogRepository
	now    func() time.Time
	logger zerolog.Logger
}

// NewActivityService constructs the activity log service.
func NewActivityService(repo repository.ActivityLogRepository, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:   repo,
		now:    time.Now,
		logger: logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) (dto.AdminActivityResponse, error) {
	action := normalizeToken(entry.Action)
	entityType := normalizeToken(entry.EntityType)
	switch {
	case action == "":
		return dto.AdminActivityResponse{}, fmt.Errorf("activity action is required")
	case entityType == "":
		return dto.AdminActivityResponse{}, fmt.Errorf("activity entity type is required")
	}

	model := models.ActivityLog{
		ActorID:    entry.Actor.UserID,
		ActorRole:  actorRole(entry.Actor),
		Action:     action,
		EntityType: entityType,
		EntityID:   entry.EntityID,
		Metadata:   maskMetadata(entry.Metadata),
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		s.logger.Error().Err(err).Str("action", action).Str("entity_type", entityType).Msg("failed to persist activity log")
		return dto.AdminActivityResponse{}, err
	}

	return dto.NewAdminActivityResponse(model), nil
}

func (s *activityService) List(ctx context.Context, req dto.AdminActivityListRequest) (dto.AdminActivityListResponse, error) {
	req.ListRequest = req.ListRequest.Normalize()
	filter := repository.ActivityLogFilter{
		Action:     normalizeToken(req.Action),
		EntityType: normalizeToken(req.EntityType),
		Page:       repository.Page{Page: req.Page, PageSize: req.PageSize},
	}
	if req.ActorID > 0 {
		filter.ActorID = &req.ActorID
	}
	if req.EntityID > 0 {
		filter.EntityID = &req.EntityID
	}
	if req.SinceHours > 0 {
		filter.Since = s.now().Add(-time.Duration(req.SinceHours) * time.Hour)
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.AdminActivityListResponse{}, err
	}

	items := make([]dto.AdminActivityResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.NewAdminActivityResponse(entry))
	}

	return dto.AdminActivityListResponse{
		Items:      items,
		Pagination: dto.NewPaginationMeta(req.Page, req.PageSize, total),
	}, nil
}

func maskMetadata(metadata map[string]interface{}) datatypes.JSONMap {
	masked := make(datatypes.JSONMap, len(metadata))
	for key, value := range metadata {
		if isSensitiveKey(key) {
			value = "***"
		}
		masked[key] = value
	}
	return masked
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, sensitive := range sensitiveMetadataKeys {
		if strings.Contains(lower, sensitive) {
			return true
		}
	}
	return false
}

func normalizeToken(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// actorRole labels events without an authenticated actor, such as CLI batches, as system.
func actorRole(actor models.Principal) string {
	if role := normalizeToken(string(actor.Role)); role != "" {
		return role
	}
	return "system"
}
