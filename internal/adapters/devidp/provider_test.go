package devidp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/parceldesk/ops-api/internal/domain/auth"
	apperrors "github.com/parceldesk/ops-api/internal/errors"
)

func validConfig() Config {
	return Config{
		PrincipalID: "dev-operator",
		Secret:      "dev-secret",
		Email:       "dev@example.com",
		FirstName:   "Dev",
		LastName:    "Operator",
		Role:        domainauth.RoleAdmin,
		Status:      domainauth.StatusActive,
	}
}

func TestNewProviderValidation(t *testing.T) {
	_, err := NewProvider(Config{Secret: "x"})
	assert.Error(t, err)

	_, err = NewProvider(Config{PrincipalID: "x"})
	assert.Error(t, err)

	cfg := validConfig()
	cfg.Role = domainauth.Role("emperor")
	_, err = NewProvider(cfg)
	assert.Error(t, err)

	cfg = validConfig()
	cfg.Status = domainauth.Status("banned")
	_, err = NewProvider(cfg)
	assert.Error(t, err)
}

func TestNewProviderDefaults(t *testing.T) {
	p, err := NewProvider(Config{PrincipalID: "dev-operator", Secret: "dev-secret"})
	require.NoError(t, err)

	identity, err := p.Authenticate(context.Background(), "dev-operator", "dev-secret")
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleWorker, identity.Role)
	assert.Equal(t, domainauth.StatusActive, identity.Status)
}

func TestAuthenticate(t *testing.T) {
	p, err := NewProvider(validConfig())
	require.NoError(t, err)
	ctx := context.Background()

	identity, err := p.Authenticate(ctx, "dev-operator", "dev-secret")
	require.NoError(t, err)
	assert.Equal(t, "dev-operator", identity.ID)
	assert.Equal(t, domainauth.RoleAdmin, identity.Role)
	assert.True(t, identity.Active())

	_, err = p.Authenticate(ctx, "dev-operator", "wrong")
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidCredentials(err))

	_, err = p.Authenticate(ctx, "someone-else", "dev-secret")
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidCredentials(err))
}

func TestAuthenticateSuspendedStillReturnsIdentity(t *testing.T) {
	cfg := validConfig()
	cfg.Status = domainauth.StatusSuspended
	p, err := NewProvider(cfg)
	require.NoError(t, err)

	// The provider authenticates; deciding what an inactive identity may
	// do is the caller's job.
	identity, err := p.Authenticate(context.Background(), "dev-operator", "dev-secret")
	require.NoError(t, err)
	assert.False(t, identity.Active())
}

func TestLookupStatus(t *testing.T) {
	cfg := validConfig()
	cfg.Status = domainauth.StatusReported
	p, err := NewProvider(cfg)
	require.NoError(t, err)
	ctx := context.Background()

	status, err := p.LookupStatus(ctx, "dev-operator")
	require.NoError(t, err)
	assert.Equal(t, domainauth.StatusReported, status)

	_, err = p.LookupStatus(ctx, "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}
