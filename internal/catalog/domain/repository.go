package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Course, error)
	ListPublished(ctx context.Context, db *gorm.DB) ([]Course, error)
	ListByProductID(ctx context.Context, db *gorm.DB, productID int64) ([]Course, error)
}
