package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	billingdomain "github.com/smallbiznis/coursesync/internal/billing/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupBillingDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&billingdomain.Product{},
		&billingdomain.Order{},
		&billingdomain.OrderItem{},
		&billingdomain.Subscription{},
	))
	return db
}

func TestHasPurchased(t *testing.T) {
	db := setupBillingDB(t)
	r := Provide()

	require.NoError(t, db.Create(&billingdomain.Order{ID: 900, UserID: 10, Status: billingdomain.OrderStatusCompleted}).Error)
	require.NoError(t, db.Create(&billingdomain.OrderItem{ID: 1, OrderID: 900, ProductID: 500, Quantity: 1}).Error)
	require.NoError(t, db.Create(&billingdomain.Order{ID: 901, UserID: 10, Status: billingdomain.OrderStatusRefunded}).Error)
	require.NoError(t, db.Create(&billingdomain.OrderItem{ID: 2, OrderID: 901, ProductID: 600, Quantity: 1}).Error)

	statuses := []string{"completed", "processing"}

	purchased, err := r.HasPurchased(context.Background(), db, 10, 500, statuses)
	require.NoError(t, err)
	require.True(t, purchased)

	// Refunded orders do not count.
	purchased, err = r.HasPurchased(context.Background(), db, 10, 600, statuses)
	require.NoError(t, err)
	require.False(t, purchased)

	purchased, err = r.HasPurchased(context.Background(), db, 20, 500, statuses)
	require.NoError(t, err)
	require.False(t, purchased)

	purchased, err = r.HasPurchased(context.Background(), db, 10, 500, nil)
	require.NoError(t, err)
	require.False(t, purchased)
}

func TestHasActiveSubscription(t *testing.T) {
	db := setupBillingDB(t)
	r := Provide()

	require.NoError(t, db.Create(&billingdomain.Subscription{ID: 700, UserID: 10, ProductID: 500, Status: billingdomain.SubscriptionStatusActive}).Error)
	require.NoError(t, db.Create(&billingdomain.Subscription{ID: 701, UserID: 20, ProductID: 500, Status: billingdomain.SubscriptionStatusCancelled}).Error)

	active, err := r.HasActiveSubscription(context.Background(), db, 10)
	require.NoError(t, err)
	require.True(t, active)

	active, err = r.HasActiveSubscription(context.Background(), db, 20)
	require.NoError(t, err)
	require.False(t, active)
}

func TestListSubscriberIDsKeyset(t *testing.T) {
	db := setupBillingDB(t)
	r := Provide()

	for i, userID := range []int64{10, 10, 20, 30} {
		require.NoError(t, db.Create(&billingdomain.Subscription{
			ID:        int64(700 + i),
			UserID:    userID,
			ProductID: 500,
			Status:    billingdomain.SubscriptionStatusActive,
		}).Error)
	}

	ids, err := r.ListSubscriberIDs(context.Background(), db, 0, 2)
	require.NoError(t, err)
	require.Equal(t, []int64{10, 20}, ids)

	ids, err = r.ListSubscriberIDs(context.Background(), db, 20, 2)
	require.NoError(t, err)
	require.Equal(t, []int64{30}, ids)
}

func TestFindProduct(t *testing.T) {
	db := setupBillingDB(t)
	r := Provide()

	require.NoError(t, db.Create(&billingdomain.Product{
		ID:           500,
		Name:         "Course bundle",
		Downloadable: true,
		FileURL:      "https://cdn.example.com/course.zip",
		DownloadLimit: 3,
	}).Error)

	product, err := r.FindProduct(context.Background(), db, 500)
	require.NoError(t, err)
	require.NotNil(t, product)
	require.True(t, product.Downloadable)
	require.Equal(t, "https://cdn.example.com/course.zip", product.FileURL)
	require.Equal(t, 3, product.DownloadLimit)
}

func TestFindProductMissing(t *testing.T) {
	db := setupBillingDB(t)
	r := Provide()

	product, err := r.FindProduct(context.Background(), db, 999)
	require.NoError(t, err)
	require.Nil(t, product)
}
