package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByUserAndProduct(ctx context.Context, db *gorm.DB, userID, productID int64) (*DownloadPermission, error)
	Insert(ctx context.Context, db *gorm.DB, permission *DownloadPermission) error
	Decrement(ctx context.Context, db *gorm.DB, permissionID snowflake.ID, updatedAt time.Time) error
	Touch(ctx context.Context, db *gorm.DB, permissionID snowflake.ID, updatedAt time.Time) error
	ListByUser(ctx context.Context, db *gorm.DB, userID int64) ([]DownloadPermission, error)
}
