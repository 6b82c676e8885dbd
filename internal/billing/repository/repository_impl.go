package repository

import (
	"context"

	billingdomain "github.com/smallbiznis/coursesync/internal/billing/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() billingdomain.Repository {
	return &repo{}
}

func (r *repo) FindProduct(ctx context.Context, db *gorm.DB, id int64) (*billingdomain.Product, error) {
	var product billingdomain.Product
	if err := db.WithContext(ctx).Raw(
		`SELECT id, name, downloadable, file_url, download_limit, created_at FROM products WHERE id = ?`,
		id,
	).Scan(&product).Error; err != nil {
		return nil, err
	}
	if product.ID == 0 {
		return nil, nil
	}
	return &product, nil
}

func (r *repo) FindOrder(ctx context.Context, db *gorm.DB, id int64) (*billingdomain.Order, error) {
	var order billingdomain.Order
	if err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, status, created_at, updated_at FROM orders WHERE id = ?`,
		id,
	).Scan(&order).Error; err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) ListOrderItems(ctx context.Context, db *gorm.DB, orderID int64) ([]billingdomain.OrderItem, error) {
	var items []billingdomain.OrderItem
	if err := db.WithContext(ctx).Raw(
		`SELECT id, order_id, product_id, quantity FROM order_items WHERE order_id = ? ORDER BY id`,
		orderID,
	).Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindSubscription(ctx context.Context, db *gorm.DB, id int64) (*billingdomain.Subscription, error) {
	var subscription billingdomain.Subscription
	if err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, product_id, status, created_at, updated_at FROM subscriptions WHERE id = ?`,
		id,
	).Scan(&subscription).Error; err != nil {
		return nil, err
	}
	if subscription.ID == 0 {
		return nil, nil
	}
	return &subscription, nil
}

func (r *repo) HasActiveSubscription(ctx context.Context, db *gorm.DB, userID int64) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM subscriptions WHERE user_id = ? AND status = ?`,
		userID,
		billingdomain.SubscriptionStatusActive,
	).Scan(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) HasPurchased(ctx context.Context, db *gorm.DB, userID, productID int64, statuses []string) (bool, error) {
	if len(statuses) == 0 {
		return false, nil
	}
	var count int64
	if err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1)
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		WHERE o.user_id = ? AND oi.product_id = ? AND o.status IN ?`,
		userID,
		productID,
		statuses,
	).Scan(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) ListSubscriberIDs(ctx context.Context, db *gorm.DB, afterUserID int64, limit int) ([]int64, error) {
	var ids []int64
	if err := db.WithContext(ctx).Raw(
		`SELECT DISTINCT user_id FROM subscriptions WHERE user_id > ? ORDER BY user_id LIMIT ?`,
		afterUserID,
		limit,
	).Scan(&ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
