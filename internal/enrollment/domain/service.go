package domain

import (
	"context"
	"errors"
)

// SyncResult summarizes one reconciliation pass for a user.
type SyncResult struct {
	UserID   int64 `json:"user_id"`
	Enrolled int   `json:"enrolled"`
	Revoked  int   `json:"revoked"`
}

type Service interface {
	// ShouldHaveAccess reports whether the user is entitled to the course
	// through an active subscription, a purchase or the VIP list.
	ShouldHaveAccess(ctx context.Context, userID, courseID int64) (bool, error)

	// SyncUser reconciles all published courses for one user. Revocations
	// run before activations.
	SyncUser(ctx context.Context, userID int64, source string) (SyncResult, error)

	// HandleOrderCompleted enrolls the buyer into courses linked to the
	// purchased products.
	HandleOrderCompleted(ctx context.Context, orderID int64) error

	// HandleSubscriptionStatusChange reconciles courses linked to the
	// subscription's product after a status transition.
	HandleSubscriptionStatusChange(ctx context.Context, subscriptionID int64, status string) error
}

var (
	ErrEnrollmentNotFound = errors.New("enrollment_not_found")
)
