// Package domain contains persistence models for commerce state.
// Orders, products and subscriptions are owned by the storefront and
// only read here.
package domain

import "time"

// SubscriptionStatus represents storefront subscription lifecycle states.
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusOnHold    SubscriptionStatus = "on-hold"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
)

// OrderStatus represents storefront order lifecycle states.
type OrderStatus string

const (
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusRefunded   OrderStatus = "refunded"
	OrderStatusFailed     OrderStatus = "failed"
)

// Product is a sellable item, optionally carrying a downloadable file.
type Product struct {
	ID           int64  `gorm:"primaryKey"`
	Name         string `gorm:"type:text;not null"`
	Downloadable bool   `gorm:"not null;default:false"`
	FileURL      string `gorm:"column:file_url;type:text"`
	// DownloadLimit of -1 means unlimited downloads.
	DownloadLimit int       `gorm:"not null;default:-1"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Product) TableName() string { return "products" }

// Order is a storefront purchase.
type Order struct {
	ID        int64       `gorm:"primaryKey"`
	UserID    int64       `gorm:"not null;index"`
	Status    OrderStatus `gorm:"type:text;not null"`
	CreatedAt time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Order) TableName() string { return "orders" }

// OrderItem links an order to a purchased product.
type OrderItem struct {
	ID        int64 `gorm:"primaryKey"`
	OrderID   int64 `gorm:"not null;index"`
	ProductID int64 `gorm:"not null;index"`
	Quantity  int   `gorm:"not null;default:1"`
}

// TableName sets the database table name.
func (OrderItem) TableName() string { return "order_items" }

// Subscription is a recurring storefront agreement for one product.
type Subscription struct {
	ID        int64              `gorm:"primaryKey"`
	UserID    int64              `gorm:"not null;index"`
	ProductID int64              `gorm:"not null;index"`
	Status    SubscriptionStatus `gorm:"type:text;not null"`
	CreatedAt time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "subscriptions" }
