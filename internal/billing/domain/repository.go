package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindProduct(ctx context.Context, db *gorm.DB, id int64) (*Product, error)
	FindOrder(ctx context.Context, db *gorm.DB, id int64) (*Order, error)
	ListOrderItems(ctx context.Context, db *gorm.DB, orderID int64) ([]OrderItem, error)
	FindSubscription(ctx context.Context, db *gorm.DB, id int64) (*Subscription, error)
	HasActiveSubscription(ctx context.Context, db *gorm.DB, userID int64) (bool, error)
	HasPurchased(ctx context.Context, db *gorm.DB, userID, productID int64, statuses []string) (bool, error)
	ListSubscriberIDs(ctx context.Context, db *gorm.DB, afterUserID int64, limit int) ([]int64, error)
}
