// Package domain contains persistence models for sync activity logs.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// SyncLog records one enrollment or permission action taken by the service.
type SyncLog struct {
	ID        snowflake.ID      `gorm:"primaryKey"`
	UserID    *int64            `gorm:"index"`
	Action    string            `gorm:"type:text;not null"`
	Message   string            `gorm:"type:text;not null;default:''"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_sync_logs_created_at,sort:desc"`
}

// TableName sets the database table name.
func (SyncLog) TableName() string { return "sync_logs" }

// SyncCursor marks a position in the reverse-chronological log listing.
type SyncCursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

// ListFilter narrows a sync log listing.
type ListFilter struct {
	UserID  *int64
	Action  string
	StartAt *time.Time
	EndAt   *time.Time
	Cursor  *SyncCursor
	Limit   int
}
