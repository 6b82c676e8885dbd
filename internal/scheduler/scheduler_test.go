package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	billingdomain "github.com/smallbiznis/coursesync/internal/billing/domain"
	"github.com/smallbiznis/coursesync/internal/clock"
	enrollmentdomain "github.com/smallbiznis/coursesync/internal/enrollment/domain"
	enrollmentrepo "github.com/smallbiznis/coursesync/internal/enrollment/repository"
	identitydomain "github.com/smallbiznis/coursesync/internal/identity/domain"
	obsmetrics "github.com/smallbiznis/coursesync/internal/observability/metrics"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type enrollmentSvcStub struct {
	mu     sync.Mutex
	synced []int64
	errFor map[int64]error
}

func (e *enrollmentSvcStub) ShouldHaveAccess(ctx context.Context, userID, courseID int64) (bool, error) {
	return false, nil
}

func (e *enrollmentSvcStub) SyncUser(ctx context.Context, userID int64, source string) (enrollmentdomain.SyncResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err, ok := e.errFor[userID]; ok {
		return enrollmentdomain.SyncResult{}, err
	}
	e.synced = append(e.synced, userID)
	return enrollmentdomain.SyncResult{UserID: userID}, nil
}

func (e *enrollmentSvcStub) HandleOrderCompleted(ctx context.Context, orderID int64) error {
	return nil
}

func (e *enrollmentSvcStub) HandleSubscriptionStatusChange(ctx context.Context, subscriptionID int64, status string) error {
	return nil
}

func (e *enrollmentSvcStub) syncedIDs() []int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]int64(nil), e.synced...)
}

type billingSvcStub struct {
	subscriberIDs []int64
}

func (b *billingSvcStub) GetProduct(ctx context.Context, id int64) (billingdomain.Product, error) {
	return billingdomain.Product{}, billingdomain.ErrProductNotFound
}

func (b *billingSvcStub) GetOrder(ctx context.Context, id int64) (billingdomain.Order, error) {
	return billingdomain.Order{}, billingdomain.ErrOrderNotFound
}

func (b *billingSvcStub) GetOrderItems(ctx context.Context, orderID int64) ([]billingdomain.OrderItem, error) {
	return nil, nil
}

func (b *billingSvcStub) GetSubscription(ctx context.Context, id int64) (billingdomain.Subscription, error) {
	return billingdomain.Subscription{}, billingdomain.ErrSubscriptionNotFound
}

func (b *billingSvcStub) HasActiveSubscription(ctx context.Context, userID int64) (bool, error) {
	return false, nil
}

func (b *billingSvcStub) HasPurchased(ctx context.Context, userID, productID int64) (bool, error) {
	return false, nil
}

func (b *billingSvcStub) ListSubscriberIDs(ctx context.Context, afterUserID int64, limit int) ([]int64, error) {
	var out []int64
	for _, id := range b.subscriberIDs {
		if id > afterUserID {
			out = append(out, id)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func swapPrometheusRegistry(registry *prometheus.Registry) func() {
	oldRegisterer := prometheus.DefaultRegisterer
	oldGatherer := prometheus.DefaultGatherer
	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry
	obsmetrics.ResetSchedulerMetricsForTest()
	return func() {
		prometheus.DefaultRegisterer = oldRegisterer
		prometheus.DefaultGatherer = oldGatherer
		obsmetrics.ResetSchedulerMetricsForTest()
	}
}

func setupScheduler(t *testing.T, enrollment *enrollmentSvcStub, billing *billingSvcStub) (*Scheduler, *gorm.DB) {
	t.Helper()
	t.Cleanup(swapPrometheusRegistry(prometheus.NewRegistry()))

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&enrollmentdomain.Enrollment{}))

	s, err := New(Params{
		DB:             db,
		Log:            zap.NewNop(),
		EnrollmentSvc:  enrollment,
		EnrollmentRepo: enrollmentrepo.Provide(),
		BillingSvc:     billing,
		Clock:          clock.NewFakeClock(time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC)),
		Config:         Config{RunInterval: time.Hour, BatchSize: 2, JobTimeout: time.Minute},
	})
	require.NoError(t, err)
	return s, db
}

func insertEnrollment(t *testing.T, db *gorm.DB, id, courseID, userID int64) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, db.Exec(
		`INSERT INTO course_enrollments (id, course_id, user_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, courseID, userID, enrollmentdomain.EnrollmentStatusCompleted, now, now,
	).Error)
}

func TestRunOnceSweepsSubscribersAndEnrolledUsers(t *testing.T) {
	enrollment := &enrollmentSvcStub{}
	billing := &billingSvcStub{subscriberIDs: []int64{10, 20, 30}}
	s, db := setupScheduler(t, enrollment, billing)

	// User 20 overlaps both sources, user 40 is only enrolled.
	insertEnrollment(t, db, 1, 100, 20)
	insertEnrollment(t, db, 2, 100, 40)

	require.NoError(t, s.RunOnce(context.Background()))
	require.ElementsMatch(t, []int64{10, 20, 30, 40}, enrollment.syncedIDs())
}

func TestRunOnceBatchesLargerThanBatchSize(t *testing.T) {
	enrollment := &enrollmentSvcStub{}
	billing := &billingSvcStub{subscriberIDs: []int64{1, 2, 3, 4, 5}}
	s, _ := setupScheduler(t, enrollment, billing)

	require.NoError(t, s.RunOnce(context.Background()))
	require.ElementsMatch(t, []int64{1, 2, 3, 4, 5}, enrollment.syncedIDs())
}

func TestRunOnceContinuesPastFailingUser(t *testing.T) {
	failure := errors.New("db down")
	enrollment := &enrollmentSvcStub{errFor: map[int64]error{20: failure}}
	billing := &billingSvcStub{subscriberIDs: []int64{10, 20, 30}}
	s, _ := setupScheduler(t, enrollment, billing)

	err := s.RunOnce(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, failure)
	require.ElementsMatch(t, []int64{10, 30}, enrollment.syncedIDs())
}

func TestRunOnceSkipsUnknownUsers(t *testing.T) {
	enrollment := &enrollmentSvcStub{errFor: map[int64]error{20: identitydomain.ErrUserNotFound}}
	billing := &billingSvcStub{subscriberIDs: []int64{10, 20, 30}}
	s, _ := setupScheduler(t, enrollment, billing)

	require.NoError(t, s.RunOnce(context.Background()))
	require.ElementsMatch(t, []int64{10, 30}, enrollment.syncedIDs())
}

// laggingBillingStub advances the fake clock on every sweep so the run
// loop falls behind its schedule.
type laggingBillingStub struct {
	billingSvcStub
	clock *clock.FakeClock
	step  time.Duration
}

func (b *laggingBillingStub) ListSubscriberIDs(ctx context.Context, afterUserID int64, limit int) ([]int64, error) {
	b.clock.Advance(b.step)
	return nil, nil
}

func TestRunForeverMeasuresLagWithInjectedClock(t *testing.T) {
	registry := prometheus.NewRegistry()
	restore := swapPrometheusRegistry(registry)
	defer restore()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&enrollmentdomain.Enrollment{}))

	// The fake clock sits far ahead of the wall clock, so lag only shows
	// up if the loop measures it against the injected clock.
	fc := clock.NewFakeClock(time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC))
	s, err := New(Params{
		DB:             db,
		Log:            zap.NewNop(),
		EnrollmentSvc:  &enrollmentSvcStub{},
		EnrollmentRepo: enrollmentrepo.Provide(),
		BillingSvc:     &laggingBillingStub{clock: fc, step: 50 * time.Millisecond},
		Clock:          fc,
		Config:         Config{RunInterval: 10 * time.Millisecond, BatchSize: 2, JobTimeout: time.Minute},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.RunForever(ctx)
	}()
	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	require.NotZero(t, histogramSampleCount(t, registry, "coursesync_scheduler_runloop_lag_seconds"))
}

func histogramSampleCount(t *testing.T, registry *prometheus.Registry, name string) uint64 {
	t.Helper()
	families, err := registry.Gather()
	require.NoError(t, err)
	var count uint64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			count += m.GetHistogram().GetSampleCount()
		}
	}
	return count
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(Params{})
	require.ErrorIs(t, err, ErrInvalidConfig)
}
