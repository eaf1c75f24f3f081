package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainauth "github.com/parceldesk/ops-api/internal/domain/auth"
	apperrors "github.com/parceldesk/ops-api/internal/errors"
	"github.com/parceldesk/ops-api/internal/ports"
)

// Fixed persistence keys. Only the identity record and the opaque token
// are ever persisted; capabilities are re-derived from the role on load.
const (
	keyIdentity = "auth:identity"
	keyToken    = "auth:token"
)

// persistedIdentity is the flat on-disk identity payload.
type persistedIdentity struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	IssuedAt  time.Time `json:"issued_at"`
}

// SessionStore owns the persisted session material. It validates and
// re-derives everything it reads back: a payload that fails structural
// checks is cleared and reported as absent, never as an error the caller
// must handle.
type SessionStore struct {
	kv     ports.KeyValueStore
	logger *slog.Logger
}

// NewSessionStore creates a session store over the given persistence port.
func NewSessionStore(kv ports.KeyValueStore, logger *slog.Logger) *SessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{kv: kv, logger: logger}
}

// Save persists the session's identity record and opaque token. The two
// entries are written through a single atomic SetAll, so a concurrent Load
// never observes one without the other. Saving overwrites any prior
// session material.
func (s *SessionStore) Save(ctx context.Context, sess *domainauth.Session) error {
	if sess == nil {
		return errors.New("session cannot be nil")
	}
	if sess.Token == "" {
		return errors.New("session token cannot be empty")
	}

	payload := persistedIdentity{
		ID:        sess.Identity.ID,
		Email:     sess.Identity.Email,
		FirstName: sess.Identity.FirstName,
		LastName:  sess.Identity.LastName,
		Role:      string(sess.Identity.Role),
		Status:    string(sess.Identity.Status),
		CreatedAt: sess.Identity.CreatedAt,
		UpdatedAt: sess.Identity.UpdatedAt,
		IssuedAt:  sess.IssuedAt,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}

	entries := map[string][]byte{
		keyIdentity: data,
		keyToken:    []byte(sess.Token),
	}
	if saveErr := s.kv.SetAll(ctx, entries); saveErr != nil {
		return fmt.Errorf("persist session: %w", saveErr)
	}
	return nil
}

// Load reads back the persisted session, if any. It returns (nil, nil)
// when nothing is persisted. Structural validation failures (missing
// fields, unrecognized role or status tag, token/identity mismatch) clear
// the stored payload and also return (nil, nil); corruption is self-healed
// here and never surfaced to the user.
//
// Capabilities are recomputed from the role, so a stale or tampered
// capability set cannot survive a role demotion.
func (s *SessionStore) Load(ctx context.Context) (*domainauth.Session, error) {
	identityRaw, err := s.kv.Get(ctx, keyIdentity)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load identity: %w", err)
	}

	tokenRaw, err := s.kv.Get(ctx, keyToken)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			// Identity without a token is a half-session; treat as corrupt.
			return nil, s.clearCorrupt(ctx, apperrors.New(apperrors.ErrCodeCorruptState, "identity present without token"))
		}
		return nil, fmt.Errorf("load token: %w", err)
	}

	sess, corrupt := decodeSession(identityRaw, string(tokenRaw))
	if corrupt != nil {
		return nil, s.clearCorrupt(ctx, corrupt)
	}
	return sess, nil
}

// Clear removes all persisted session material. Idempotent.
func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, keyIdentity, keyToken); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// clearCorrupt logs and removes a bad payload, reporting it as absent.
func (s *SessionStore) clearCorrupt(ctx context.Context, cause error) error {
	s.logger.WarnContext(ctx, "clearing corrupt persisted session", "reason", cause.Error())
	if err := s.Clear(ctx); err != nil {
		return fmt.Errorf("clear corrupt session: %w", err)
	}
	return nil
}

// decodeSession validates the persisted payload and rebuilds the session.
// The returned error, when non-nil, always carries ErrCodeCorruptState.
func decodeSession(identityRaw []byte, token string) (*domainauth.Session, *apperrors.AppError) {
	var payload persistedIdentity
	if err := json.Unmarshal(identityRaw, &payload); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeCorruptState, "unparseable identity payload")
	}
	if payload.ID == "" {
		return nil, apperrors.New(apperrors.ErrCodeCorruptState, "identity payload missing id")
	}
	if token == "" {
		return nil, apperrors.New(apperrors.ErrCodeCorruptState, "empty session token")
	}

	role := domainauth.Role(payload.Role)
	if !role.Known() {
		return nil, apperrors.Newf(apperrors.ErrCodeCorruptState, "unrecognized role tag %q", payload.Role)
	}
	status := domainauth.Status(payload.Status)
	if !status.Known() {
		return nil, apperrors.Newf(apperrors.ErrCodeCorruptState, "unrecognized status tag %q", payload.Status)
	}

	identity := domainauth.Identity{
		ID:        payload.ID,
		Email:     payload.Email,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Role:      role,
		Status:    status,
		CreatedAt: payload.CreatedAt,
		UpdatedAt: payload.UpdatedAt,
	}
	return &domainauth.Session{
		Identity:     identity,
		Capabilities: domainauth.Derive(role),
		Token:        token,
		IssuedAt:     payload.IssuedAt,
	}, nil
}
