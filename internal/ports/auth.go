package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"errors"

	domainauth "github.com/parceldesk/ops-api/internal/domain/auth"
)

// ErrNotFound is returned by KeyValueStore.Get when the key has no value.
var ErrNotFound = errors.New("key not found")

// IdentityProvider verifies a credential pair against an external IdP and
// returns the identity record it holds for the principal. The provider
// performs no authorization; role and status come back as opaque tags for
// the core to interpret.
type IdentityProvider interface {
	Authenticate(ctx context.Context, principalID, secret string) (domainauth.Identity, error)
}

// IdentityDirectory answers point lookups of an identity's current account
// status. Used by the background session re-check; optional.
type IdentityDirectory interface {
	LookupStatus(ctx context.Context, principalID string) (domainauth.Status, error)
}

// KeyValueStore is the durable persistence port used by the session store.
// SetAll must be observable in full or not at all to any subsequent Get;
// this is the only cross-component ordering guarantee the core relies on.
type KeyValueStore interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// SetAll writes every entry atomically.
	SetAll(ctx context.Context, entries map[string][]byte) error

	// Delete removes the given keys. Deleting an absent key is not an error.
	Delete(ctx context.Context, keys ...string) error
}
