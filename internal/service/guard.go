package service

import (
	domainauth "github.com/parceldesk/ops-api/internal/domain/auth"
	apperrors "github.com/parceldesk/ops-api/internal/errors"
)

// Decision is the outcome of a capability check.
type Decision struct {
	Allowed bool
	// Reason is set on denial: not_authenticated or insufficient_capability.
	Reason apperrors.ErrorCode
}

// Err converts a denial into its AppError; nil when the check passed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case apperrors.ErrCodeInsufficientCapability:
		return apperrors.New(d.Reason, "missing required capability")
	default:
		return apperrors.New(apperrors.ErrCodeNotAuthenticated, "not authenticated")
	}
}

// Guard decides whether the current authentication state admits a
// required capability. Check is stateless and deterministic given its two
// inputs, so it is safe to call on every protected access attempt without
// extra synchronization.
type Guard struct{}

// NewGuard constructs a Guard.
func NewGuard() Guard { return Guard{} }

// Check admits the capability only for an authenticated session whose
// derived set contains it. Every non-authenticated phase denies with
// not_authenticated; a live session without the capability denies with
// insufficient_capability.
func (Guard) Check(state AuthState, required domainauth.Capability) Decision {
	if state.Phase != PhaseAuthenticated || state.Session == nil {
		return Decision{Reason: apperrors.ErrCodeNotAuthenticated}
	}
	if !state.Session.Allows(required) {
		return Decision{Reason: apperrors.ErrCodeInsufficientCapability}
	}
	return Decision{Allowed: true}
}
