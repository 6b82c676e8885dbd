package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/coursesync/internal/clock"
	synclogdomain "github.com/smallbiznis/coursesync/internal/synclog/domain"
	"github.com/smallbiznis/coursesync/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  synclogdomain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  synclogdomain.Repository
}

func NewService(p ServiceParam) synclogdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("synclog.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, userID *int64, action string, message string, metadata map[string]any) {
	action = strings.TrimSpace(action)
	if action == "" {
		return
	}

	payload := map[string]any{}
	for key, value := range metadata {
		if key == "" {
			continue
		}
		payload[key] = value
	}

	entry := synclogdomain.SyncLog{
		ID:        s.genID.Generate(),
		UserID:    userID,
		Action:    action,
		Message:   strings.TrimSpace(message),
		Metadata:  datatypes.JSONMap(payload),
		CreatedAt: s.clock.Now(),
	}

	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		s.log.Warn("failed to write sync log", zap.String("action", action), zap.Error(err))
	}
}

func (s *Service) List(ctx context.Context, req synclogdomain.ListSyncLogRequest) (synclogdomain.ListSyncLogResponse, error) {
	if req.StartAt != nil && req.EndAt != nil && req.StartAt.After(*req.EndAt) {
		return synclogdomain.ListSyncLogResponse{}, synclogdomain.ErrInvalidTimeRange
	}

	var cursor *synclogdomain.SyncCursor
	if strings.TrimSpace(req.PageToken) != "" {
		decoded, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return synclogdomain.ListSyncLogResponse{}, synclogdomain.ErrInvalidPageToken
		}
		createdAt, err := time.Parse(time.RFC3339Nano, decoded.CreatedAt)
		if err != nil {
			return synclogdomain.ListSyncLogResponse{}, synclogdomain.ErrInvalidPageToken
		}
		id, err := snowflake.ParseString(strings.TrimSpace(decoded.ID))
		if err != nil || id == 0 {
			return synclogdomain.ListSyncLogResponse{}, synclogdomain.ErrInvalidPageToken
		}
		cursor = &synclogdomain.SyncCursor{
			ID:        id,
			CreatedAt: createdAt,
		}
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	if pageSize > 250 {
		pageSize = 250
	}

	logs, err := s.repo.List(ctx, s.db, synclogdomain.ListFilter{
		UserID:  req.UserID,
		Action:  strings.TrimSpace(req.Action),
		StartAt: req.StartAt,
		EndAt:   req.EndAt,
		Cursor:  cursor,
		Limit:   pageSize,
	})
	if err != nil {
		return synclogdomain.ListSyncLogResponse{}, err
	}

	hasMore := len(logs) > pageSize
	if hasMore {
		logs = logs[:pageSize]
	}

	resp := synclogdomain.ListSyncLogResponse{
		SyncLogs: make([]synclogdomain.SyncLog, 0, len(logs)),
	}
	for _, entry := range logs {
		resp.SyncLogs = append(resp.SyncLogs, *entry)
	}
	resp.HasMore = hasMore

	if hasMore && len(logs) > 0 {
		last := logs[len(logs)-1]
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        last.ID.String(),
			CreatedAt: last.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return synclogdomain.ListSyncLogResponse{}, err
		}
		resp.NextPageToken = token
	}

	return resp, nil
}
