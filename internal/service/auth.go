package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/parceldesk/ops-api/internal/domain/auth"
	apperrors "github.com/parceldesk/ops-api/internal/errors"
	"github.com/parceldesk/ops-api/internal/ports"
)

// Phase names the lifecycle states of the authentication machine.
type Phase string

const (
	PhaseAnonymous      Phase = "anonymous"
	PhaseAuthenticating Phase = "authenticating"
	PhaseAuthenticated  Phase = "authenticated"
	PhaseFailed         Phase = "failed"
)

// AuthState is the single source of truth every other component reads.
// Session is set only in PhaseAuthenticated; Err only in PhaseFailed.
type AuthState struct {
	Phase   Phase
	Session *domainauth.Session
	Err     error
}

// AuthMachineOptions groups dependencies for AuthMachine.
type AuthMachineOptions struct {
	Provider ports.IdentityProvider
	Store    *SessionStore

	// Directory backs the background status re-check; optional. When nil,
	// Recheck is a no-op.
	Directory ports.IdentityDirectory

	Logger *slog.Logger
}

// AuthMachine owns the process's single AuthState and is its sole mutator.
// All lifecycle changes go through the enumerated transitions below; no
// component reaches around it to hand-edit the session.
type AuthMachine struct {
	provider  ports.IdentityProvider
	store     *SessionStore
	directory ports.IdentityDirectory
	logger    *slog.Logger

	mu    sync.Mutex
	state AuthState
}

// NewAuthMachine constructs an AuthMachine in the Anonymous state.
func NewAuthMachine(opts AuthMachineOptions) *AuthMachine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthMachine{
		provider:  opts.Provider,
		store:     opts.Store,
		directory: opts.Directory,
		logger:    logger,
		state:     AuthState{Phase: PhaseAnonymous},
	}
}

// State returns a snapshot of the current AuthState.
func (m *AuthMachine) State() AuthState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Session returns the live session, or nil outside PhaseAuthenticated.
func (m *AuthMachine) Session() *domainauth.Session {
	return m.State().Session
}

// Login drives the Anonymous/Failed -> Authenticating -> Authenticated|Failed
// transition. It invokes the identity provider exactly once per accepted
// call; a call arriving while a login is already in flight is rejected with
// an auth_in_progress error without touching the provider, so overlapping
// provider calls can never race to set divergent sessions.
//
// Provider success with a non-active identity settles in Failed with an
// identity_inactive error and persists nothing.
func (m *AuthMachine) Login(ctx context.Context, principalID, secret string) (*domainauth.Session, error) {
	m.mu.Lock()
	switch m.state.Phase {
	case PhaseAuthenticating:
		m.mu.Unlock()
		return nil, apperrors.New(apperrors.ErrCodeAuthInProgress, "authentication already in progress")
	case PhaseAuthenticated:
		m.mu.Unlock()
		return nil, apperrors.New(apperrors.ErrCodeConflict, "already authenticated; log out first")
	case PhaseAnonymous, PhaseFailed:
		// Entering Authenticating discards any prior failure.
	}
	m.state = AuthState{Phase: PhaseAuthenticating}
	m.mu.Unlock()

	// Provider call happens outside the lock; the Authenticating phase
	// keeps competing transitions out in the meantime.
	identity, err := m.provider.Authenticate(ctx, principalID, secret)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.state = AuthState{Phase: PhaseFailed, Err: err}
		m.logger.WarnContext(ctx, "login failed", "reason", apperrors.GetCode(err))
		return nil, err
	}

	if !identity.Active() {
		inactiveErr := apperrors.IdentityInactive("account not active")
		m.state = AuthState{Phase: PhaseFailed, Err: inactiveErr}
		m.logger.WarnContext(ctx, "login rejected: identity not active",
			"principal", identity.ID, "status", string(identity.Status))
		return nil, inactiveErr
	}

	sess := &domainauth.Session{
		Identity:     identity,
		Capabilities: domainauth.Derive(identity.Role),
		Token:        uuid.NewString(),
		IssuedAt:     time.Now(),
	}
	if saveErr := m.store.Save(ctx, sess); saveErr != nil {
		wrapped := apperrors.Wrap(saveErr, apperrors.ErrCodeInternal, "persist session")
		m.state = AuthState{Phase: PhaseFailed, Err: wrapped}
		return nil, wrapped
	}

	m.state = AuthState{Phase: PhaseAuthenticated, Session: sess}
	m.logger.InfoContext(ctx, "login succeeded",
		"principal", identity.ID, "role", string(identity.Role))
	return sess, nil
}

// Logout clears the session and settles in Anonymous. Logging out while
// not authenticated is a no-op; a login in flight cannot be cancelled and
// must settle first.
func (m *AuthMachine) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Phase == PhaseAuthenticating {
		return apperrors.New(apperrors.ErrCodeAuthInProgress, "authentication in progress; await completion")
	}

	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	m.state = AuthState{Phase: PhaseAnonymous}
	return nil
}

// Restore rebuilds the session from durable storage at process start.
// It applies only in the Anonymous state. A persisted identity whose
// status is no longer active is cleared and reported with an
// identity_inactive error; the machine stays Anonymous. Corrupt payloads
// are self-healed inside the store and simply yield Anonymous.
func (m *AuthMachine) Restore(ctx context.Context) (AuthState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Phase != PhaseAnonymous {
		return m.state, nil
	}

	sess, err := m.store.Load(ctx)
	if err != nil {
		return m.state, fmt.Errorf("restore session: %w", err)
	}
	if sess == nil {
		return m.state, nil
	}

	if !sess.Identity.Active() {
		if clearErr := m.store.Clear(ctx); clearErr != nil {
			return m.state, fmt.Errorf("clear inactive session: %w", clearErr)
		}
		m.logger.WarnContext(ctx, "restored identity not active; session cleared",
			"principal", sess.Identity.ID, "status", string(sess.Identity.Status))
		return m.state, apperrors.IdentityInactive("account not active")
	}

	m.state = AuthState{Phase: PhaseAuthenticated, Session: sess}
	m.logger.InfoContext(ctx, "session restored",
		"principal", sess.Identity.ID, "role", string(sess.Identity.Role))
	return m.state, nil
}

// Recheck re-validates the live identity's account status against the
// identity directory. When the status is no longer active the session is
// cleared and the machine settles in Anonymous. Transient directory
// failures leave the state untouched. Returns true when a demotion
// happened.
func (m *AuthMachine) Recheck(ctx context.Context) (bool, error) {
	if m.directory == nil {
		return false, nil
	}

	m.mu.Lock()
	if m.state.Phase != PhaseAuthenticated {
		m.mu.Unlock()
		return false, nil
	}
	principalID := m.state.Session.Identity.ID
	m.mu.Unlock()

	status, err := m.directory.LookupStatus(ctx, principalID)
	if err != nil {
		return false, fmt.Errorf("lookup status: %w", err)
	}
	if status == domainauth.StatusActive {
		return false, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// The session may have changed while the lookup was in flight; only
	// demote the session the lookup was about.
	if m.state.Phase != PhaseAuthenticated || m.state.Session.Identity.ID != principalID {
		return false, nil
	}
	if clearErr := m.store.Clear(ctx); clearErr != nil {
		return false, fmt.Errorf("clear demoted session: %w", clearErr)
	}
	m.state = AuthState{Phase: PhaseAnonymous}
	m.logger.WarnContext(ctx, "identity no longer active; session revoked",
		"principal", principalID, "status", string(status))
	return true, nil
}
