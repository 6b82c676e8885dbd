package notifier

import (
	"context"

	billingdomain "github.com/smallbiznis/coursesync/internal/billing/domain"
	"github.com/smallbiznis/coursesync/internal/config"
	identitydomain "github.com/smallbiznis/coursesync/internal/identity/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Notifier sends a welcome email when a completed order contains one of
// the configured trigger products.
type Notifier struct {
	log      *zap.Logger
	provider Provider
	cfg      config.Config

	billingSvc  billingdomain.Service
	identitySvc identitydomain.Service
}

type Param struct {
	fx.In

	Log      *zap.Logger
	Provider Provider
	Cfg      config.Config

	BillingSvc  billingdomain.Service
	IdentitySvc identitydomain.Service
}

func New(p Param) *Notifier {
	return &Notifier{
		log:         p.Log.Named("notifier"),
		provider:    p.Provider,
		cfg:         p.Cfg,
		billingSvc:  p.BillingSvc,
		identitySvc: p.IdentitySvc,
	}
}

// NotifyOrderCompleted sends the welcome template to the buyer when the
// order contains a trigger product. Missing configuration is a no-op.
func (n *Notifier) NotifyOrderCompleted(ctx context.Context, orderID int64) error {
	if len(n.cfg.NotifyProductIDs) == 0 {
		return nil
	}

	order, err := n.billingSvc.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	items, err := n.billingSvc.GetOrderItems(ctx, order.ID)
	if err != nil {
		return err
	}
	if !n.hasTriggerProduct(items) {
		return nil
	}

	user, err := n.identitySvc.GetUser(ctx, order.UserID)
	if err != nil {
		return err
	}

	err = n.provider.SendTemplate(ctx, []string{user.Email}, "course_welcome", map[string]interface{}{
		"subject": "Your course access is ready",
		"name":    user.DisplayName,
	})
	if err != nil {
		n.log.Warn("failed to send order email",
			zap.Int64("order_id", orderID),
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (n *Notifier) hasTriggerProduct(items []billingdomain.OrderItem) bool {
	for _, item := range items {
		for _, id := range n.cfg.NotifyProductIDs {
			if item.ProductID == id {
				return true
			}
		}
	}
	return false
}
