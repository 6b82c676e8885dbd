package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	downloaddomain "github.com/smallbiznis/coursesync/internal/download/domain"
	enrollmentdomain "github.com/smallbiznis/coursesync/internal/enrollment/domain"
	"github.com/smallbiznis/coursesync/internal/events"
	identitydomain "github.com/smallbiznis/coursesync/internal/identity/domain"
	"github.com/smallbiznis/coursesync/internal/observability"
	synclogdomain "github.com/smallbiznis/coursesync/internal/synclog/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeIdentityService struct {
	users map[int64]identitydomain.User
}

func (f *fakeIdentityService) GetUser(ctx context.Context, id int64) (identitydomain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return identitydomain.User{}, identitydomain.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeIdentityService) GetUserByEmail(ctx context.Context, email string) (identitydomain.User, error) {
	return identitydomain.User{}, identitydomain.ErrUserNotFound
}

type fakeEnrollmentService struct {
	syncCalls   int
	syncSource  string
	orderCalls  int
	orderErr    error
	knownUserID int64
}

func (f *fakeEnrollmentService) ShouldHaveAccess(ctx context.Context, userID, courseID int64) (bool, error) {
	return false, nil
}

func (f *fakeEnrollmentService) SyncUser(ctx context.Context, userID int64, source string) (enrollmentdomain.SyncResult, error) {
	if userID != f.knownUserID {
		return enrollmentdomain.SyncResult{}, identitydomain.ErrUserNotFound
	}
	f.syncCalls++
	f.syncSource = source
	return enrollmentdomain.SyncResult{UserID: userID, Enrolled: 1}, nil
}

func (f *fakeEnrollmentService) HandleOrderCompleted(ctx context.Context, orderID int64) error {
	f.orderCalls++
	return f.orderErr
}

func (f *fakeEnrollmentService) HandleSubscriptionStatusChange(ctx context.Context, subscriptionID int64, status string) error {
	return nil
}

type fakeDownloadService struct {
	permissions map[int64][]downloaddomain.DownloadPermission
	grantCalls  int
}

func (f *fakeDownloadService) GrantForOrder(ctx context.Context, orderID int64) error {
	f.grantCalls++
	return nil
}

func (f *fakeDownloadService) RecordDownload(ctx context.Context, userID, productID int64) (downloaddomain.DownloadPermission, error) {
	perms := f.permissions[userID]
	for _, perm := range perms {
		if perm.ProductID == productID {
			return perm, nil
		}
	}
	return downloaddomain.DownloadPermission{}, downloaddomain.ErrPermissionNotFound
}

func (f *fakeDownloadService) ListByUser(ctx context.Context, userID int64) ([]downloaddomain.DownloadPermission, error) {
	return f.permissions[userID], nil
}

type fakeSynclogService struct{}

func (f *fakeSynclogService) Record(ctx context.Context, userID *int64, action string, message string, metadata map[string]any) {
}

func (f *fakeSynclogService) List(ctx context.Context, req synclogdomain.ListSyncLogRequest) (synclogdomain.ListSyncLogResponse, error) {
	return synclogdomain.ListSyncLogResponse{}, nil
}

type serverFixture struct {
	server     *Server
	enrollment *fakeEnrollmentService
	download   *fakeDownloadService
}

func setupServer(t *testing.T) *serverFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	enrollment := &fakeEnrollmentService{knownUserID: 10}
	download := &fakeDownloadService{permissions: map[int64][]downloaddomain.DownloadPermission{}}
	identity := &fakeIdentityService{users: map[int64]identitydomain.User{
		10: {ID: 10, Email: "user@example.com"},
	}}

	dispatcher := events.NewDispatcher(zap.NewNop())
	dispatcher.Subscribe(events.KindOrderCompleted, func(ctx context.Context, event events.Event) error {
		return enrollment.HandleOrderCompleted(ctx, event.OrderID)
	})
	dispatcher.Subscribe(events.KindOrderCompleted, func(ctx context.Context, event events.Event) error {
		return download.GrantForOrder(ctx, event.OrderID)
	})
	dispatcher.Subscribe(events.KindUserLoggedIn, func(ctx context.Context, event events.Event) error {
		_, err := enrollment.SyncUser(ctx, event.UserID, "login")
		return err
	})

	srv := NewServer(ServerParams{
		Gin:           NewEngine(observability.Config{}, nil),
		Log:           zap.NewNop(),
		Dispatcher:    dispatcher,
		IdentitySvc:   identity,
		EnrollmentSvc: enrollment,
		DownloadSvc:   download,
		SynclogSvc:    &fakeSynclogService{},
	})
	return &serverFixture{server: srv, enrollment: enrollment, download: download}
}

func (f *serverFixture) request(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.server.Engine().ServeHTTP(rec, req)
	return rec
}

func TestSyncUserEndpoint(t *testing.T) {
	f := setupServer(t)

	rec := f.request(t, http.MethodPost, "/v1/users/10/sync", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, f.enrollment.syncCalls)
	require.Equal(t, "manual", f.enrollment.syncSource)
}

func TestSyncUserEndpointUnknownUser(t *testing.T) {
	f := setupServer(t)

	rec := f.request(t, http.MethodPost, "/v1/users/99/sync", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSyncUserEndpointInvalidID(t *testing.T) {
	f := setupServer(t)

	rec := f.request(t, http.MethodPost, "/v1/users/abc/sync", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderCompletedEndpoint(t *testing.T) {
	f := setupServer(t)

	rec := f.request(t, http.MethodPost, "/v1/events/order-completed", map[string]any{"order_id": 900})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, f.enrollment.orderCalls)
	require.Equal(t, 1, f.download.grantCalls)
}

func TestOrderCompletedEndpointUnknownReference(t *testing.T) {
	f := setupServer(t)
	f.enrollment.orderErr = identitydomain.ErrUserNotFound

	// An event pointing at an unknown entity is accepted and ignored.
	rec := f.request(t, http.MethodPost, "/v1/events/order-completed", map[string]any{"order_id": 900})
	require.Equal(t, http.StatusAccepted, rec.Code)
	// The failing handler does not stop the rest of the chain.
	require.Equal(t, 1, f.download.grantCalls)
}

func TestOrderCompletedEndpointHardFailure(t *testing.T) {
	f := setupServer(t)
	f.enrollment.orderErr = errors.New("db down")

	rec := f.request(t, http.MethodPost, "/v1/events/order-completed", map[string]any{"order_id": 900})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestOrderCompletedEndpointInvalidBody(t *testing.T) {
	f := setupServer(t)

	rec := f.request(t, http.MethodPost, "/v1/events/order-completed", map[string]any{"order_id": 0})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, 0, f.enrollment.orderCalls)
}

func TestSubscriptionStatusEndpoint(t *testing.T) {
	f := setupServer(t)

	var gotStatus string
	f.server.dispatcher.Subscribe(events.KindSubscriptionStatusChanged, func(ctx context.Context, event events.Event) error {
		gotStatus = event.Status
		return nil
	})

	rec := f.request(t, http.MethodPost, "/v1/events/subscription-status", map[string]any{
		"subscription_id": 700,
		"new_status":      "cancelled",
		"old_status":      "active",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "cancelled", gotStatus)

	rec = f.request(t, http.MethodPost, "/v1/events/subscription-status", map[string]any{"subscription_id": 700})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserLoginEndpoint(t *testing.T) {
	f := setupServer(t)

	rec := f.request(t, http.MethodPost, "/v1/events/user-login", map[string]any{"user_id": 10})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "login", f.enrollment.syncSource)

	rec = f.request(t, http.MethodPost, "/v1/events/user-login", map[string]any{"user_id": 99})
	require.Equal(t, http.StatusAccepted, rec.Code)
}

func TestDownloadEndpoint(t *testing.T) {
	f := setupServer(t)
	f.download.permissions[10] = []downloaddomain.DownloadPermission{{
		ProductID:     500,
		UserID:        10,
		DownloadCount: 2,
	}}

	rec := f.request(t, http.MethodPost, "/v1/events/download", map[string]any{"user_id": 10, "product_id": 500})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestDownloadEndpointUnknownPermission(t *testing.T) {
	f := setupServer(t)

	rec := f.request(t, http.MethodPost, "/v1/events/download", map[string]any{"user_id": 10, "product_id": 500})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListDownloadPermissionsEndpoint(t *testing.T) {
	f := setupServer(t)
	f.download.permissions[10] = []downloaddomain.DownloadPermission{{
		ProductID:     500,
		UserID:        10,
		DownloadCount: 2,
	}}

	rec := f.request(t, http.MethodGet, "/v1/users/10/download-permissions", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.request(t, http.MethodGet, "/v1/users/99/download-permissions", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListSyncLogsEndpoint(t *testing.T) {
	f := setupServer(t)

	rec := f.request(t, http.MethodGet, "/v1/sync-logs?page_size=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.request(t, http.MethodGet, "/v1/sync-logs?user_id=abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	f := setupServer(t)

	rec := f.request(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
