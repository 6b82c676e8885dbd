package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	billingdomain "github.com/smallbiznis/coursesync/internal/billing/domain"
	"github.com/smallbiznis/coursesync/internal/clock"
	"github.com/smallbiznis/coursesync/internal/config"
	downloaddomain "github.com/smallbiznis/coursesync/internal/download/domain"
	"github.com/smallbiznis/coursesync/internal/download/repository"
	synclogdomain "github.com/smallbiznis/coursesync/internal/synclog/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type billingStub struct {
	products   map[int64]billingdomain.Product
	orders     map[int64]billingdomain.Order
	orderItems map[int64][]billingdomain.OrderItem
}

func (b *billingStub) GetProduct(ctx context.Context, id int64) (billingdomain.Product, error) {
	product, ok := b.products[id]
	if !ok {
		return billingdomain.Product{}, billingdomain.ErrProductNotFound
	}
	return product, nil
}

func (b *billingStub) GetOrder(ctx context.Context, id int64) (billingdomain.Order, error) {
	order, ok := b.orders[id]
	if !ok {
		return billingdomain.Order{}, billingdomain.ErrOrderNotFound
	}
	return order, nil
}

func (b *billingStub) GetOrderItems(ctx context.Context, orderID int64) ([]billingdomain.OrderItem, error) {
	return b.orderItems[orderID], nil
}

func (b *billingStub) GetSubscription(ctx context.Context, id int64) (billingdomain.Subscription, error) {
	return billingdomain.Subscription{}, billingdomain.ErrSubscriptionNotFound
}

func (b *billingStub) HasActiveSubscription(ctx context.Context, userID int64) (bool, error) {
	return false, nil
}

func (b *billingStub) HasPurchased(ctx context.Context, userID, productID int64) (bool, error) {
	return false, nil
}

func (b *billingStub) ListSubscriberIDs(ctx context.Context, afterUserID int64, limit int) ([]int64, error) {
	return nil, nil
}

type synclogStub struct{}

func (s *synclogStub) Record(ctx context.Context, userID *int64, action string, message string, metadata map[string]any) {
}

func (s *synclogStub) List(ctx context.Context, req synclogdomain.ListSyncLogRequest) (synclogdomain.ListSyncLogResponse, error) {
	return synclogdomain.ListSyncLogResponse{}, nil
}

type downloadFixture struct {
	svc     downloaddomain.Service
	db      *gorm.DB
	clock   *clock.FakeClock
	billing *billingStub
}

func setupDownloadService(t *testing.T) *downloadFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&downloaddomain.DownloadPermission{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fixture := &downloadFixture{
		db:    db,
		clock: clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
		billing: &billingStub{
			products:   map[int64]billingdomain.Product{},
			orders:     map[int64]billingdomain.Order{},
			orderItems: map[int64][]billingdomain.OrderItem{},
		},
	}
	fixture.svc = NewService(ServiceParam{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      fixture.clock,
		Repo:       repository.Provide(),
		Policy:     config.NewStaticSyncPolicyHolder(config.DefaultSyncPolicy()),
		BillingSvc: fixture.billing,
		SynclogSvc: &synclogStub{},
	})
	return fixture
}

func (f *downloadFixture) addOrder(orderID, userID int64, products ...billingdomain.Product) {
	f.billing.orders[orderID] = billingdomain.Order{ID: orderID, UserID: userID, Status: billingdomain.OrderStatusCompleted}
	for i, product := range products {
		f.billing.products[product.ID] = product
		f.billing.orderItems[orderID] = append(f.billing.orderItems[orderID], billingdomain.OrderItem{
			ID:        int64(i + 1),
			OrderID:   orderID,
			ProductID: product.ID,
			Quantity:  1,
		})
	}
}

func (f *downloadFixture) permissionCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Raw(`SELECT COUNT(*) FROM downloadable_product_permissions_new`).Scan(&count).Error)
	return count
}

func TestGrantForOrderCreatesPermission(t *testing.T) {
	f := setupDownloadService(t)
	f.addOrder(900, 10, billingdomain.Product{ID: 500, Downloadable: true, FileURL: "https://cdn.example.com/course.zip", DownloadLimit: 3})

	require.NoError(t, f.svc.GrantForOrder(context.Background(), 900))

	perms, err := f.svc.ListByUser(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, perms, 1)
	require.EqualValues(t, 500, perms[0].ProductID)
	require.Equal(t, 3, perms[0].DownloadCount)
	require.Equal(t, downloaddomain.DownloadIDForFile("https://cdn.example.com/course.zip"), perms[0].DownloadID)
}

func TestGrantForOrderSkipsProductWithoutFile(t *testing.T) {
	f := setupDownloadService(t)
	f.addOrder(900, 10, billingdomain.Product{ID: 500, Downloadable: true, DownloadLimit: 3})

	require.NoError(t, f.svc.GrantForOrder(context.Background(), 900))
	require.EqualValues(t, 0, f.permissionCount(t))
}

func TestGrantForOrderSkipsNonDownloadableProduct(t *testing.T) {
	f := setupDownloadService(t)
	// A stale file URL on a product whose downloadable flag is off must not grant.
	f.addOrder(900, 10, billingdomain.Product{ID: 500, FileURL: "https://cdn.example.com/course.zip", DownloadLimit: 3})

	require.NoError(t, f.svc.GrantForOrder(context.Background(), 900))
	require.EqualValues(t, 0, f.permissionCount(t))
}

func TestGrantForOrderUnlimitedLimit(t *testing.T) {
	f := setupDownloadService(t)
	f.addOrder(900, 10, billingdomain.Product{ID: 500, Downloadable: true, FileURL: "https://cdn.example.com/course.zip", DownloadLimit: -1})

	require.NoError(t, f.svc.GrantForOrder(context.Background(), 900))

	perms, err := f.svc.ListByUser(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, perms, 1)
	require.Equal(t, 999, perms[0].DownloadCount)
}

func TestGrantForOrderKeepsExistingGrant(t *testing.T) {
	f := setupDownloadService(t)
	f.addOrder(900, 10, billingdomain.Product{ID: 500, Downloadable: true, FileURL: "https://cdn.example.com/course.zip", DownloadLimit: 3})

	require.NoError(t, f.svc.GrantForOrder(context.Background(), 900))
	_, err := f.svc.RecordDownload(context.Background(), 10, 500)
	require.NoError(t, err)

	// Re-purchasing does not reset the remaining count.
	require.NoError(t, f.svc.GrantForOrder(context.Background(), 900))

	perms, err := f.svc.ListByUser(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, perms, 1)
	require.Equal(t, 2, perms[0].DownloadCount)
}

func TestRecordDownloadDecrementsUntilExhausted(t *testing.T) {
	f := setupDownloadService(t)
	f.addOrder(900, 10, billingdomain.Product{ID: 500, Downloadable: true, FileURL: "https://cdn.example.com/course.zip", DownloadLimit: 2})
	require.NoError(t, f.svc.GrantForOrder(context.Background(), 900))

	perm, err := f.svc.RecordDownload(context.Background(), 10, 500)
	require.NoError(t, err)
	require.Equal(t, 1, perm.DownloadCount)

	perm, err = f.svc.RecordDownload(context.Background(), 10, 500)
	require.NoError(t, err)
	require.Equal(t, 0, perm.DownloadCount)

	f.clock.Advance(time.Hour)
	perm, err = f.svc.RecordDownload(context.Background(), 10, 500)
	require.NoError(t, err)
	require.Equal(t, 0, perm.DownloadCount)
	require.Equal(t, f.clock.Now(), perm.UpdatedAt.UTC())
}

func TestRecordDownloadUnknownPermission(t *testing.T) {
	f := setupDownloadService(t)

	_, err := f.svc.RecordDownload(context.Background(), 10, 500)
	require.ErrorIs(t, err, downloaddomain.ErrPermissionNotFound)
}

func TestRecordDownloadInvalidIDs(t *testing.T) {
	f := setupDownloadService(t)

	_, err := f.svc.RecordDownload(context.Background(), 0, 500)
	require.ErrorIs(t, err, downloaddomain.ErrInvalidPermission)
}
