package services

import (
	"context"
	"errors"
	"time"

	"whiteboard/internal/interfaces"

	"github.com/google/uuid"
	"github.com/samber/do"
)

const (
	CodeAlreadyCheckedIn      = "already_checked_in"
	CodeAlreadyPostedToday    = "already_posted_today"
	CodeInsufficientFunds     = "insufficient_funds"
	CodeNotClaimable          = "not_claimable"
	CodeNotOwner              = "not_owner"
	CodeForbidden             = "forbidden"
	CodeCollectionUnavailable = "collection_unavailable"
	CodeEmptyPool             = "empty_pool"
)

// Outcome reports whether a mutation took effect. A refusal is a normal result
// with Success false, never a Go error.
type Outcome struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func (o Outcome) Rejected() bool {
	return !o.Success
}

func accepted() Outcome {
	return Outcome{Success: true}
}

// rejection unwinds a transaction for a business-rule refusal.
type rejection struct {
	outcome Outcome
}

func (r *rejection) Error() string {
	return r.outcome.Code + ": " + r.outcome.Message
}

func reject(code, message string) error {
	return &rejection{Outcome{Code: code, Message: message}}
}

func asRejection(err error) (Outcome, bool) {
	var r *rejection
	if errors.As(err, &r) {
		return r.outcome, true
	}
	return Outcome{}, false
}

// withUserLock serializes fn with every other engagement mutation of userID.
func withUserLock(ctx context.Context, locker interfaces.Locker, userID uuid.UUID, fn func() error) error {
	unlock, err := locker.Obtain(ctx, LockKeyUserEngagement(userID))
	if err != nil {
		return ErrUserLocked
	}
	defer unlock()
	return fn()
}

type Clock func() time.Time

// invokeClock returns the container's "clock" or time.Now.
func invokeClock(container *do.Injector) Clock {
	clock, err := do.InvokeNamed[Clock](container, "clock")
	if err != nil || clock == nil {
		return time.Now
	}
	return clock
}
