package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	billingdomain "github.com/smallbiznis/coursesync/internal/billing/domain"
	"github.com/smallbiznis/coursesync/internal/clock"
	enrollmentdomain "github.com/smallbiznis/coursesync/internal/enrollment/domain"
	identitydomain "github.com/smallbiznis/coursesync/internal/identity/domain"
	obsmetrics "github.com/smallbiznis/coursesync/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("scheduler requires db, logger, clock and services")

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger

	EnrollmentSvc  enrollmentdomain.Service
	EnrollmentRepo enrollmentdomain.Repository
	BillingSvc     billingdomain.Service

	Clock  clock.Clock
	Config Config `optional:"true"`
}

// Scheduler sweeps all known users on an interval so enrollments converge
// even when a storefront hook was missed.
type Scheduler struct {
	db    *gorm.DB
	log   *zap.Logger
	cfg   Config
	clock clock.Clock

	enrollmentSvc  enrollmentdomain.Service
	enrollmentRepo enrollmentdomain.Repository
	billingSvc     billingdomain.Service
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.EnrollmentSvc == nil || p.EnrollmentRepo == nil || p.BillingSvc == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	cfg := p.Config.withDefaults()
	return &Scheduler{
		db:             p.DB,
		log:            p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:            cfg,
		clock:          p.Clock,
		enrollmentSvc:  p.EnrollmentSvc,
		enrollmentRepo: p.EnrollmentRepo,
		billingSvc:     p.BillingSvc,
	}, nil
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	timeout time.Duration,
	fn func(ctx context.Context) error,
) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	log := s.log.With(zap.String("job", name))
	schedMetrics := obsmetrics.Scheduler()
	schedMetrics.IncJobRun(name)

	err := fn(ctx)
	schedMetrics.ObserveJobDuration(name, s.clock.Now().Sub(start))
	if err == nil {
		return nil
	}

	isTimeout := errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
	if isTimeout {
		schedMetrics.IncJobTimeout(name)
	}
	schedMetrics.IncJobError(name, err)
	if isTimeout {
		log.Warn("job timed out",
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		return nil
	}

	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	return s.runJob(parent, "daily_sync", s.cfg.JobTimeout, s.DailySyncJob)
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()
	nextRun := s.clock.Now().Add(s.cfg.RunInterval)
	schedMetrics := obsmetrics.Scheduler()

	for {
		runLag := s.clock.Now().Sub(nextRun)
		if runLag > 0 {
			schedMetrics.ObserveRunLoopLag(runLag)
		}
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}
		nextRun = nextRun.Add(s.cfg.RunInterval)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// DailySyncJob reconciles every subscriber and every enrolled user.
// A failing user does not stop the sweep.
func (s *Scheduler) DailySyncJob(ctx context.Context) error {
	schedMetrics := obsmetrics.Scheduler()
	var jobErr error

	processed := 0
	for _, userID := range s.candidateUserIDs(ctx, &jobErr) {
		if ctx.Err() != nil {
			return errors.Join(jobErr, ctx.Err())
		}

		result, err := s.enrollmentSvc.SyncUser(ctx, userID, "cron")
		if err != nil {
			if errors.Is(err, identitydomain.ErrUserNotFound) {
				s.log.Warn("skipping unknown user", zap.Int64("user_id", userID))
				continue
			}
			jobErr = errors.Join(jobErr, err)
			s.log.Warn("user sync failed",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
			continue
		}
		processed++
		if result.Enrolled > 0 || result.Revoked > 0 {
			s.log.Info("user sync applied changes",
				zap.Int64("user_id", userID),
				zap.Int("enrolled", result.Enrolled),
				zap.Int("revoked", result.Revoked),
			)
		}
	}

	schedMetrics.AddBatchProcessed("daily_sync", "users", processed)
	return jobErr
}

// candidateUserIDs unions subscriber ids and enrolled user ids in
// keyset-paged batches.
func (s *Scheduler) candidateUserIDs(ctx context.Context, jobErr *error) []int64 {
	seen := make(map[int64]struct{})
	var ids []int64

	collect := func(list func(ctx context.Context, afterUserID int64, limit int) ([]int64, error)) {
		var after int64
		for {
			batch, err := list(ctx, after, s.cfg.BatchSize)
			if err != nil {
				*jobErr = errors.Join(*jobErr, err)
				return
			}
			if len(batch) == 0 {
				return
			}
			for _, id := range batch {
				if _, ok := seen[id]; !ok {
					seen[id] = struct{}{}
					ids = append(ids, id)
				}
			}
			after = batch[len(batch)-1]
		}
	}

	collect(s.billingSvc.ListSubscriberIDs)
	collect(func(ctx context.Context, afterUserID int64, limit int) ([]int64, error) {
		return s.enrollmentRepo.ListEnrolledUserIDs(ctx, s.db, afterUserID, limit)
	})

	return ids
}
