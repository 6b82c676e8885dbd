package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	downloaddomain "github.com/smallbiznis/coursesync/internal/download/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() downloaddomain.Repository {
	return &repo{}
}

func (r *repo) FindByUserAndProduct(ctx context.Context, db *gorm.DB, userID, productID int64) (*downloaddomain.DownloadPermission, error) {
	var permission downloaddomain.DownloadPermission
	if err := db.WithContext(ctx).Raw(
		`SELECT permission_id, download_id, product_id, user_id, download_count, access_granted, created_at, updated_at
		FROM downloadable_product_permissions_new WHERE user_id = ? AND product_id = ?`,
		userID,
		productID,
	).Scan(&permission).Error; err != nil {
		return nil, err
	}
	if permission.PermissionID == 0 {
		return nil, nil
	}
	return &permission, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, permission *downloaddomain.DownloadPermission) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO downloadable_product_permissions_new (
			permission_id, download_id, product_id, user_id, download_count,
			access_granted, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		permission.PermissionID,
		permission.DownloadID,
		permission.ProductID,
		permission.UserID,
		permission.DownloadCount,
		permission.AccessGranted,
		permission.CreatedAt,
		permission.UpdatedAt,
	).Error
}

func (r *repo) Decrement(ctx context.Context, db *gorm.DB, permissionID snowflake.ID, updatedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE downloadable_product_permissions_new
		SET download_count = download_count - 1, updated_at = ?
		WHERE permission_id = ? AND download_count > 0`,
		updatedAt,
		permissionID,
	).Error
}

func (r *repo) Touch(ctx context.Context, db *gorm.DB, permissionID snowflake.ID, updatedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE downloadable_product_permissions_new SET updated_at = ? WHERE permission_id = ?`,
		updatedAt,
		permissionID,
	).Error
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID int64) ([]downloaddomain.DownloadPermission, error) {
	var permissions []downloaddomain.DownloadPermission
	if err := db.WithContext(ctx).Raw(
		`SELECT permission_id, download_id, product_id, user_id, download_count, access_granted, created_at, updated_at
		FROM downloadable_product_permissions_new WHERE user_id = ? ORDER BY product_id`,
		userID,
	).Scan(&permissions).Error; err != nil {
		return nil, err
	}
	return permissions, nil
}
