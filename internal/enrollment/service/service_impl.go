package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/smallbiznis/coursesync/internal/billing/domain"
	catalogdomain "github.com/smallbiznis/coursesync/internal/catalog/domain"
	"github.com/smallbiznis/coursesync/internal/clock"
	"github.com/smallbiznis/coursesync/internal/config"
	enrollmentdomain "github.com/smallbiznis/coursesync/internal/enrollment/domain"
	identitydomain "github.com/smallbiznis/coursesync/internal/identity/domain"
	obsmetrics "github.com/smallbiznis/coursesync/internal/observability/metrics"
	synclogdomain "github.com/smallbiznis/coursesync/internal/synclog/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	repo   enrollmentdomain.Repository
	policy *config.SyncPolicyHolder

	catalogSvc  catalogdomain.Service
	identitySvc identitydomain.Service
	billingSvc  billingdomain.Service
	synclogSvc  synclogdomain.Service
	metrics     *obsmetrics.Metrics
}

type ServiceParam struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Repo   enrollmentdomain.Repository
	Policy *config.SyncPolicyHolder

	CatalogSvc  catalogdomain.Service
	IdentitySvc identitydomain.Service
	BillingSvc  billingdomain.Service
	SynclogSvc  synclogdomain.Service
	Metrics     *obsmetrics.Metrics `optional:"true"`
}

func NewService(p ServiceParam) enrollmentdomain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("enrollment.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		repo:   p.Repo,
		policy: p.Policy,

		catalogSvc:  p.CatalogSvc,
		identitySvc: p.IdentitySvc,
		billingSvc:  p.BillingSvc,
		synclogSvc:  p.SynclogSvc,
		metrics:     p.Metrics,
	}
}

func (s *Service) ShouldHaveAccess(ctx context.Context, userID, courseID int64) (bool, error) {
	user, err := s.identitySvc.GetUser(ctx, userID)
	if err != nil {
		return false, err
	}
	course, err := s.catalogSvc.GetCourse(ctx, courseID)
	if err != nil {
		return false, err
	}
	return s.shouldHaveAccess(ctx, user, course)
}

func (s *Service) shouldHaveAccess(ctx context.Context, user identitydomain.User, course catalogdomain.Course) (bool, error) {
	// Any active subscription grants access to every course.
	active, err := s.billingSvc.HasActiveSubscription(ctx, user.ID)
	if err != nil {
		return false, err
	}
	if active {
		return true, nil
	}

	if course.ProductID != nil {
		purchased, err := s.billingSvc.HasPurchased(ctx, user.ID, *course.ProductID)
		if err != nil {
			return false, err
		}
		if purchased {
			return true, nil
		}
	}

	return course.IsVIP(user.Email), nil
}

func (s *Service) SyncUser(ctx context.Context, userID int64, source string) (enrollmentdomain.SyncResult, error) {
	user, err := s.identitySvc.GetUser(ctx, userID)
	if err != nil {
		return enrollmentdomain.SyncResult{}, err
	}

	courses, err := s.catalogSvc.ListPublishedCourses(ctx)
	if err != nil {
		return enrollmentdomain.SyncResult{}, err
	}

	result := enrollmentdomain.SyncResult{UserID: user.ID}

	// Revocations run first so a user moved between products is never
	// left with overlapping access mid-pass.
	for _, course := range courses {
		revoked, err := s.reconcileCancellation(ctx, user, course, source)
		if err != nil {
			return result, err
		}
		if revoked {
			result.Revoked++
		}
	}

	for _, course := range courses {
		enrolled, err := s.reconcileActivation(ctx, user, course, source)
		if err != nil {
			return result, err
		}
		if enrolled {
			result.Enrolled++
		}
	}

	s.metrics.RecordSyncRun(ctx, source)
	s.log.Debug("user sync completed",
		zap.Int64("user_id", user.ID),
		zap.String("source", source),
		zap.Int("enrolled", result.Enrolled),
		zap.Int("revoked", result.Revoked),
	)

	return result, nil
}

func (s *Service) HandleOrderCompleted(ctx context.Context, orderID int64) error {
	order, err := s.billingSvc.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	user, err := s.identitySvc.GetUser(ctx, order.UserID)
	if err != nil {
		return err
	}
	items, err := s.billingSvc.GetOrderItems(ctx, order.ID)
	if err != nil {
		return err
	}

	for _, item := range items {
		courses, err := s.catalogSvc.ListCoursesByProduct(ctx, item.ProductID)
		if err != nil {
			return err
		}
		for _, course := range courses {
			if _, err := s.reconcileActivation(ctx, user, course, "order"); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Service) HandleSubscriptionStatusChange(ctx context.Context, subscriptionID int64, status string) error {
	subscription, err := s.billingSvc.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return err
	}
	user, err := s.identitySvc.GetUser(ctx, subscription.UserID)
	if err != nil {
		return err
	}

	status = strings.ToLower(strings.TrimSpace(status))
	policy := s.policy.Get()

	// A status change re-evaluates every course, not just the one linked
	// to the subscription's product.
	courses, err := s.catalogSvc.ListPublishedCourses(ctx)
	if err != nil {
		return err
	}

	switch {
	case status == string(billingdomain.SubscriptionStatusActive):
		for _, course := range courses {
			if _, err := s.reconcileActivation(ctx, user, course, "subscription"); err != nil {
				return err
			}
		}
	case policy.IsInactiveStatus(status):
		for _, course := range courses {
			if _, err := s.reconcileCancellation(ctx, user, course, "subscription"); err != nil {
				return err
			}
		}
	default:
		s.log.Debug("ignoring subscription status",
			zap.Int64("subscription_id", subscriptionID),
			zap.String("status", status),
		)
	}
	return nil
}

// reconcileActivation enrolls the user when they are entitled but not
// enrolled. Returns true when an enrollment was created or reactivated.
func (s *Service) reconcileActivation(ctx context.Context, user identitydomain.User, course catalogdomain.Course, source string) (bool, error) {
	enrollment, err := s.repo.FindByUserAndCourse(ctx, s.db, user.ID, course.ID)
	if err != nil {
		return false, err
	}
	if enrollment != nil && enrollment.IsActive() {
		return false, nil
	}

	access, err := s.shouldHaveAccess(ctx, user, course)
	if err != nil {
		return false, err
	}
	if !access {
		return false, nil
	}

	now := s.clock.Now()
	if enrollment != nil {
		if err := s.repo.SetStatus(ctx, s.db, enrollment.ID, enrollmentdomain.EnrollmentStatusCompleted, now); err != nil {
			return false, err
		}
	} else {
		if err := s.repo.Insert(ctx, s.db, &enrollmentdomain.Enrollment{
			ID:        s.genID.Generate().Int64(),
			CourseID:  course.ID,
			UserID:    user.ID,
			Status:    enrollmentdomain.EnrollmentStatusCompleted,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			return false, err
		}
	}

	s.metrics.RecordEnrollmentChange(ctx, "activated", source)
	s.synclogSvc.Record(ctx, &user.ID, "enrollment.activated", "enrolled user in course", map[string]any{
		"course_id": course.ID,
		"source":    source,
	})
	return true, nil
}

// reconcileCancellation revokes the enrollment when the user is enrolled
// but no longer entitled. Returns true when an enrollment was cancelled.
func (s *Service) reconcileCancellation(ctx context.Context, user identitydomain.User, course catalogdomain.Course, source string) (bool, error) {
	enrollment, err := s.repo.FindByUserAndCourse(ctx, s.db, user.ID, course.ID)
	if err != nil {
		return false, err
	}
	if enrollment == nil || !enrollment.IsActive() {
		return false, nil
	}

	access, err := s.shouldHaveAccess(ctx, user, course)
	if err != nil {
		return false, err
	}
	if access {
		return false, nil
	}

	if err := s.repo.SetStatus(ctx, s.db, enrollment.ID, enrollmentdomain.EnrollmentStatusCancelled, s.clock.Now()); err != nil {
		return false, err
	}

	s.metrics.RecordEnrollmentChange(ctx, "cancelled", source)
	s.synclogSvc.Record(ctx, &user.ID, "enrollment.cancelled", "revoked course access", map[string]any{
		"course_id": course.ID,
		"source":    source,
	})
	return true, nil
}
