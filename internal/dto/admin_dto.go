package dto

import (
	"time"

	"github.com/noah-isme/stagehub-api/internal/models"
)

// AdminUserListRequest defines filters for listing accounts.
type AdminUserListRequest struct {
	ListRequest
	Role   string `query:"role" validate:"omitempty,oneof=student company admin"`
	Status string `query:"status" validate:"omitempty,oneof=active inactive"`
	Search string `query:"search" validate:"omitempty,max=120"`
}

// AdminUserListResponse wraps a paginated account list.
type AdminUserListResponse struct {
	Items      []UserResponse `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

// AdminUserStatusRequest toggles an account.
type AdminUserStatusRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// CVStats counts CV summary records by processing state.
type CVStats struct {
	Processed int64 `json:"processed"`
	Pending   int64 `json:"pending"`
}

// AdminStatsResponse aggregates platform counters for administrators.
type AdminStatsResponse struct {
	UsersByRole          map[string]int64 `json:"users_by_role"`
	OffersByStatus       map[string]int64 `json:"offers_by_status"`
	ApplicationsByStatus map[string]int64 `json:"applications_by_status"`
	CV                   CVStats          `json:"cv"`
	GeneratedAt          time.Time        `json:"generated_at"`
	CacheHit             bool             `json:"cache_hit"`
}

// CVProcessRequest selects how a CV batch runs.
type CVProcessRequest struct {
	Mode string `query:"mode" validate:"omitempty,oneof=sync queue"`
}

// CVProcessResponse reports a synchronous batch or an enqueued job.
type CVProcessResponse struct {
	Mode      string `json:"mode"`
	Queued    bool   `json:"queued"`
	Processed int    `json:"processed"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Skipped   int    `json:"skipped"`
}

// AdminActivityListRequest defines filters for retrieving activity logs.
type AdminActivityListRequest struct {
	ListRequest
	ActorID    uint   `query:"actor_id"`
	EntityID   uint   `query:"entity_id"`
	Action     string `query:"action" validate:"omitempty,max=64"`
	EntityType string `query:"entity_type" validate:"omitempty,max=64"`
	SinceHours int    `query:"since_hours" validate:"omitempty,min=1,max=720"`
}

// AdminActivityResponse serializes activity log entries.
type AdminActivityResponse struct {
	ID         uint                   `json:"id"`
	ActorID    uint                   `json:"actor_id"`
	ActorRole  string                 `json:"actor_role"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   *uint                  `json:"entity_id"`
	Metadata   map[string]interface{} `json:"metadata"`
	CreatedAt  time.Time              `json:"created_at"`
}

// NewAdminActivityResponse converts an activity log model into a DTO.
func NewAdminActivityResponse(model models.ActivityLog) AdminActivityResponse {
	metadata := map[string]interface{}{}
	for key, value := range model.Metadata {
		metadata[key] = value
	}

	return AdminActivityResponse{
		ID:         model.ID,
		ActorID:    model.ActorID,
		ActorRole:  model.ActorRole,
		Action:     model.Action,
		EntityType: model.EntityType,
		EntityID:   model.EntityID,
		Metadata:   metadata,
		CreatedAt:  model.CreatedAt,
	}
}

// AdminActivityListResponse wraps paginated activity logs.
type AdminActivityListResponse struct {
	Items      []AdminActivityResponse `json:"items"`
	Pagination PaginationMeta          `json:"pagination"`
}
