package events

import (
	"context"

	downloaddomain "github.com/smallbiznis/coursesync/internal/download/domain"
	enrollmentdomain "github.com/smallbiznis/coursesync/internal/enrollment/domain"
	"github.com/smallbiznis/coursesync/internal/notifier"
	"go.uber.org/fx"
)

var Module = fx.Module("events",
	fx.Provide(NewDispatcher),
	fx.Invoke(RegisterHandlers),
)

type RegisterParam struct {
	fx.In

	Dispatcher    *Dispatcher
	EnrollmentSvc enrollmentdomain.Service
	DownloadSvc   downloaddomain.Service
	Notifier      *notifier.Notifier `optional:"true"`
}

// RegisterHandlers wires the domain services to the hooks they react to.
func RegisterHandlers(p RegisterParam) {
	p.Dispatcher.Subscribe(KindOrderCompleted, func(ctx context.Context, event Event) error {
		return p.EnrollmentSvc.HandleOrderCompleted(ctx, event.OrderID)
	})
	p.Dispatcher.Subscribe(KindOrderCompleted, func(ctx context.Context, event Event) error {
		return p.DownloadSvc.GrantForOrder(ctx, event.OrderID)
	})
	if p.Notifier != nil {
		p.Dispatcher.Subscribe(KindOrderCompleted, func(ctx context.Context, event Event) error {
			return p.Notifier.NotifyOrderCompleted(ctx, event.OrderID)
		})
	}

	p.Dispatcher.Subscribe(KindSubscriptionStatusChanged, func(ctx context.Context, event Event) error {
		return p.EnrollmentSvc.HandleSubscriptionStatusChange(ctx, event.SubscriptionID, event.Status)
	})

	p.Dispatcher.Subscribe(KindUserLoggedIn, func(ctx context.Context, event Event) error {
		_, err := p.EnrollmentSvc.SyncUser(ctx, event.UserID, "login")
		return err
	})
}
