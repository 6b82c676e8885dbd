package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/smallbiznis/coursesync/internal/billing/domain"
	"github.com/smallbiznis/coursesync/internal/clock"
	"github.com/smallbiznis/coursesync/internal/config"
	downloaddomain "github.com/smallbiznis/coursesync/internal/download/domain"
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
	repo   downloaddomain.Repository
	policy *config.SyncPolicyHolder

	billingSvc billingdomain.Service
	synclogSvc synclogdomain.Service
	metrics    *obsmetrics.Metrics
}

type ServiceParam struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Repo   downloaddomain.Repository
	Policy *config.SyncPolicyHolder

	BillingSvc billingdomain.Service
	SynclogSvc synclogdomain.Service
	Metrics    *obsmetrics.Metrics `optional:"true"`
}

func NewService(p ServiceParam) downloaddomain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("download.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		repo:   p.Repo,
		policy: p.Policy,

		billingSvc: p.BillingSvc,
		synclogSvc: p.SynclogSvc,
		metrics:    p.Metrics,
	}
}

func (s *Service) GrantForOrder(ctx context.Context, orderID int64) error {
	order, err := s.billingSvc.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	items, err := s.billingSvc.GetOrderItems(ctx, order.ID)
	if err != nil {
		return err
	}

	for _, item := range items {
		product, err := s.billingSvc.GetProduct(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if err := s.grant(ctx, order.UserID, product); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) grant(ctx context.Context, userID int64, product billingdomain.Product) error {
	if !product.Downloadable {
		return nil
	}
	if product.FileURL == "" {
		s.log.Warn("product has no downloadable file, skipping grant",
			zap.Int64("user_id", userID),
			zap.Int64("product_id", product.ID),
		)
		return nil
	}

	existing, err := s.repo.FindByUserAndProduct(ctx, s.db, userID, product.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	count := product.DownloadLimit
	if count == -1 {
		count = s.policy.Get().UnlimitedDownloadCount
	}

	now := s.clock.Now()
	permission := downloaddomain.DownloadPermission{
		PermissionID:  s.genID.Generate(),
		DownloadID:    downloaddomain.DownloadIDForFile(product.FileURL),
		ProductID:     product.ID,
		UserID:        userID,
		DownloadCount: count,
		AccessGranted: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Insert(ctx, s.db, &permission); err != nil {
		return err
	}

	s.metrics.RecordDownloadGrant(ctx, "order")
	s.synclogSvc.Record(ctx, &userID, "permission.granted", "granted download permission", map[string]any{
		"product_id":     product.ID,
		"download_count": count,
	})
	return nil
}

func (s *Service) RecordDownload(ctx context.Context, userID, productID int64) (downloaddomain.DownloadPermission, error) {
	if userID <= 0 || productID <= 0 {
		return downloaddomain.DownloadPermission{}, downloaddomain.ErrInvalidPermission
	}

	permission, err := s.repo.FindByUserAndProduct(ctx, s.db, userID, productID)
	if err != nil {
		return downloaddomain.DownloadPermission{}, err
	}
	if permission == nil {
		return downloaddomain.DownloadPermission{}, downloaddomain.ErrPermissionNotFound
	}

	now := s.clock.Now()
	if permission.DownloadCount > 0 {
		if err := s.repo.Decrement(ctx, s.db, permission.PermissionID, now); err != nil {
			return downloaddomain.DownloadPermission{}, err
		}
		permission.DownloadCount--
		s.metrics.RecordDownloadEvent(ctx, "counted")
	} else {
		if err := s.repo.Touch(ctx, s.db, permission.PermissionID, now); err != nil {
			return downloaddomain.DownloadPermission{}, err
		}
		s.metrics.RecordDownloadEvent(ctx, "exhausted")
	}
	permission.UpdatedAt = now

	return *permission, nil
}

func (s *Service) ListByUser(ctx context.Context, userID int64) ([]downloaddomain.DownloadPermission, error) {
	if userID <= 0 {
		return nil, downloaddomain.ErrInvalidPermission
	}
	return s.repo.ListByUser(ctx, s.db, userID)
}
