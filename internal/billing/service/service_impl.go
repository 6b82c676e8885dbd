package service

import (
	"context"

	billingdomain "github.com/smallbiznis/coursesync/internal/billing/domain"
	"github.com/smallbiznis/coursesync/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	repo   billingdomain.Repository
	policy *config.SyncPolicyHolder
}

type ServiceParam struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Repo   billingdomain.Repository
	Policy *config.SyncPolicyHolder
}

func NewService(p ServiceParam) billingdomain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("billing.service"),
		repo:   p.Repo,
		policy: p.Policy,
	}
}

func (s *Service) GetProduct(ctx context.Context, id int64) (billingdomain.Product, error) {
	if id <= 0 {
		return billingdomain.Product{}, billingdomain.ErrInvalidID
	}
	product, err := s.repo.FindProduct(ctx, s.db, id)
	if err != nil {
		return billingdomain.Product{}, err
	}
	if product == nil {
		return billingdomain.Product{}, billingdomain.ErrProductNotFound
	}
	return *product, nil
}

func (s *Service) GetOrder(ctx context.Context, id int64) (billingdomain.Order, error) {
	if id <= 0 {
		return billingdomain.Order{}, billingdomain.ErrInvalidID
	}
	order, err := s.repo.FindOrder(ctx, s.db, id)
	if err != nil {
		return billingdomain.Order{}, err
	}
	if order == nil {
		return billingdomain.Order{}, billingdomain.ErrOrderNotFound
	}
	return *order, nil
}

func (s *Service) GetOrderItems(ctx context.Context, orderID int64) ([]billingdomain.OrderItem, error) {
	if orderID <= 0 {
		return nil, billingdomain.ErrInvalidID
	}
	return s.repo.ListOrderItems(ctx, s.db, orderID)
}

func (s *Service) GetSubscription(ctx context.Context, id int64) (billingdomain.Subscription, error) {
	if id <= 0 {
		return billingdomain.Subscription{}, billingdomain.ErrInvalidID
	}
	subscription, err := s.repo.FindSubscription(ctx, s.db, id)
	if err != nil {
		return billingdomain.Subscription{}, err
	}
	if subscription == nil {
		return billingdomain.Subscription{}, billingdomain.ErrSubscriptionNotFound
	}
	return *subscription, nil
}

func (s *Service) HasActiveSubscription(ctx context.Context, userID int64) (bool, error) {
	if userID <= 0 {
		return false, nil
	}
	return s.repo.HasActiveSubscription(ctx, s.db, userID)
}

func (s *Service) HasPurchased(ctx context.Context, userID, productID int64) (bool, error) {
	if userID <= 0 || productID <= 0 {
		return false, nil
	}
	return s.repo.HasPurchased(ctx, s.db, userID, productID, s.policy.Get().PurchasedStatuses)
}

func (s *Service) ListSubscriberIDs(ctx context.Context, afterUserID int64, limit int) ([]int64, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.repo.ListSubscriberIDs(ctx, s.db, afterUserID, limit)
}
