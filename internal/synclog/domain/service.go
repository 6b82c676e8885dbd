package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/coursesync/pkg/db/pagination"
)

type ListSyncLogRequest struct {
	pagination.Pagination
	UserID  *int64
	Action  string
	StartAt *time.Time
	EndAt   *time.Time
}

type ListSyncLogResponse struct {
	pagination.PageInfo
	SyncLogs []SyncLog `json:"sync_logs"`
}

type Service interface {
	// Record writes a log entry. Failures are logged and swallowed so
	// logging never blocks a sync action.
	Record(ctx context.Context, userID *int64, action string, message string, metadata map[string]any)
	List(ctx context.Context, req ListSyncLogRequest) (ListSyncLogResponse, error)
}

var (
	ErrInvalidAction    = errors.New("invalid_action")
	ErrInvalidPageToken = errors.New("invalid_page_token")
	ErrInvalidTimeRange = errors.New("invalid_time_range")
)
