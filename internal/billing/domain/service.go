package domain

import (
	"context"
	"errors"
)

type Service interface {
	GetProduct(ctx context.Context, id int64) (Product, error)
	GetOrder(ctx context.Context, id int64) (Order, error)
	GetOrderItems(ctx context.Context, orderID int64) ([]OrderItem, error)
	GetSubscription(ctx context.Context, id int64) (Subscription, error)
	// HasActiveSubscription reports whether the user holds any active
	// subscription, regardless of product.
	HasActiveSubscription(ctx context.Context, userID int64) (bool, error)
	HasPurchased(ctx context.Context, userID, productID int64) (bool, error)
	ListSubscriberIDs(ctx context.Context, afterUserID int64, limit int) ([]int64, error)
}

var (
	ErrProductNotFound      = errors.New("product_not_found")
	ErrOrderNotFound        = errors.New("order_not_found")
	ErrSubscriptionNotFound = errors.New("subscription_not_found")
	ErrInvalidID            = errors.New("invalid_id")
)
