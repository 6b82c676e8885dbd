// Package domain contains persistence models for download permissions.
package domain

import (
	"encoding/base64"
	"time"

	"github.com/bwmarrin/snowflake"
)

// DownloadPermission grants a user a counted number of downloads for a
// product file. One row exists per (user, product).
type DownloadPermission struct {
	PermissionID  snowflake.ID `gorm:"column:permission_id;primaryKey"`
	DownloadID    string       `gorm:"column:download_id;type:text;not null"`
	ProductID     int64        `gorm:"not null;index:idx_download_permissions_user_product,priority:2"`
	UserID        int64        `gorm:"not null;index:idx_download_permissions_user_product,priority:1"`
	DownloadCount int          `gorm:"not null;default:0"`
	AccessGranted time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (DownloadPermission) TableName() string { return "downloadable_product_permissions_new" }

// DownloadIDForFile derives the stable download identifier from a file URL.
func DownloadIDForFile(fileURL string) string {
	return base64.StdEncoding.EncodeToString([]byte(fileURL))
}
