package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"sync"
	"time"

	domainauth "github.com/parceldesk/ops-api/internal/domain/auth"
	"github.com/parceldesk/ops-api/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityProvider  = (*StubIdentityProvider)(nil)
	_ ports.IdentityDirectory = (*StubIdentityDirectory)(nil)
	_ ports.KeyValueStore     = (*MemoryKVStore)(nil)
)

// StubIdentityProvider simulates an IdP for tests. By default it accepts
// any credential pair and returns DefaultIdentity; AuthenticateFunc
// overrides the whole call.
type StubIdentityProvider struct {
	AuthenticateFunc func(ctx context.Context, principalID, secret string) (domainauth.Identity, error)

	DefaultIdentity domainauth.Identity

	// Calls counts Authenticate invocations, for asserting the
	// no-concurrent-login rule.
	Calls int
}

// NewStubIdentityProvider creates a StubIdentityProvider with a sensible
// default identity.
func NewStubIdentityProvider() *StubIdentityProvider {
	return &StubIdentityProvider{
		DefaultIdentity: domainauth.Identity{
			ID:        "stub-principal-1",
			Email:     "stub.user@example.com",
			FirstName: "Stub",
			LastName:  "User",
			Role:      domainauth.RoleWorker,
			Status:    domainauth.StatusActive,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
	}
}

func (s *StubIdentityProvider) Authenticate(ctx context.Context, principalID, secret string) (domainauth.Identity, error) {
	s.Calls++
	if s.AuthenticateFunc != nil {
		return s.AuthenticateFunc(ctx, principalID, secret)
	}
	identity := s.DefaultIdentity
	if identity.ID == "" {
		identity.ID = principalID
	}
	return identity, nil
}

// StubIdentityDirectory answers status lookups from a fixed map.
type StubIdentityDirectory struct {
	Statuses map[string]domainauth.Status
	Err      error
}

func (s *StubIdentityDirectory) LookupStatus(_ context.Context, principalID string) (domainauth.Status, error) {
	if s.Err != nil {
		return "", s.Err
	}
	status, ok := s.Statuses[principalID]
	if !ok {
		return "", errors.New("unknown principal")
	}
	return status, nil
}

// MemoryKVStore is an in-memory persistence port for unit tests. SetAll
// copies under one lock acquisition, matching the all-or-nothing contract.
type MemoryKVStore struct {
	mu     sync.Mutex
	values map[string][]byte

	// FailSetAll and FailGet force the next corresponding call to return
	// the given error, for exercising persistence failure paths.
	FailSetAll error
	FailGet    error
}

// NewMemoryKVStore creates a new in-memory key-value store.
func NewMemoryKVStore() *MemoryKVStore {
	return &MemoryKVStore{values: make(map[string][]byte)}
}

func (m *MemoryKVStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailGet != nil {
		return nil, m.FailGet
	}
	value, ok := m.values[key]
	if !ok {
		return nil, ports.ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (m *MemoryKVStore) SetAll(_ context.Context, entries map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSetAll != nil {
		return m.FailSetAll
	}
	for key, value := range entries {
		if key == "" {
			return errors.New("key cannot be empty")
		}
		stored := make([]byte, len(value))
		copy(stored, value)
		m.values[key] = stored
	}
	return nil
}

func (m *MemoryKVStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

// Put seeds a raw value, bypassing SetAll, for corrupt-payload tests.
func (m *MemoryKVStore) Put(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// Len returns the number of stored entries.
func (m *MemoryKVStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.values)
}
