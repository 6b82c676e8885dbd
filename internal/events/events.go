// Package events routes storefront and LMS hooks to their handlers.
package events

import (
	"context"
	"fmt"
)

// Kind identifies the hook that produced an event.
type Kind string

const (
	KindOrderCompleted            Kind = "order.completed"
	KindSubscriptionStatusChanged Kind = "subscription.status_changed"
	KindUserLoggedIn              Kind = "user.logged_in"
)

// Event carries the identifiers a handler needs. Unused fields are zero.
type Event struct {
	Kind           Kind
	OrderID        int64
	SubscriptionID int64
	UserID         int64
	Status         string
}

func (e Event) String() string {
	return fmt.Sprintf("%s order=%d subscription=%d user=%d status=%q",
		e.Kind, e.OrderID, e.SubscriptionID, e.UserID, e.Status)
}

// Handler processes one event. Handlers run synchronously in
// registration order.
type Handler func(ctx context.Context, event Event) error
