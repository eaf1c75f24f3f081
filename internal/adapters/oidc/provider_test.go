package oidc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/parceldesk/ops-api/internal/domain/auth"
	apperrors "github.com/parceldesk/ops-api/internal/errors"
)

// discoveryDoc is the subset of the OIDC discovery document the tests serve.
type discoveryDoc struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	JwksURI               string `json:"jwks_uri"`
}

// newIssuerServer serves a discovery document plus the provided token
// endpoint handler.
func newIssuerServer(t *testing.T, tokenHandler http.HandlerFunc) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, _ *http.Request) {
		doc := discoveryDoc{
			Issuer:                server.URL,
			AuthorizationEndpoint: server.URL + "/auth",
			TokenEndpoint:         server.URL + "/token",
			JwksURI:               server.URL + "/keys",
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(doc)
	})
	if tokenHandler != nil {
		mux.HandleFunc("/token", tokenHandler)
	}

	return server
}

func newTestProvider(t *testing.T, tokenHandler http.HandlerFunc) *Provider {
	t.Helper()

	server := newIssuerServer(t, tokenHandler)
	provider, err := NewProvider(ProviderConfig{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		DiscoveryURL: server.URL,
	})
	require.NoError(t, err)
	return provider
}

func TestNewProviderSuccess(t *testing.T) {
	server := newIssuerServer(t, nil)

	provider, err := NewProvider(ProviderConfig{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		Scope:        "openid profile email",
		DiscoveryURL: server.URL,
	})
	require.NoError(t, err)
	assert.NotNil(t, provider)
	assert.Equal(t, server.URL+"/token", provider.config.Endpoint.TokenURL)
	assert.Equal(t, []string{"openid", "profile", "email"}, provider.config.Scopes)
}

func TestNewProviderAcceptsFullDiscoveryURL(t *testing.T) {
	server := newIssuerServer(t, nil)

	provider, err := NewProvider(ProviderConfig{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		DiscoveryURL: server.URL + "/.well-known/openid-configuration",
	})
	require.NoError(t, err)
	assert.NotNil(t, provider)
}

func TestNewProviderValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		config ProviderConfig
		errMsg string
	}{
		{
			name:   "missing client ID",
			config: ProviderConfig{ClientSecret: "secret", DiscoveryURL: "http://example.com"},
			errMsg: "client ID is required",
		},
		{
			name:   "missing client secret",
			config: ProviderConfig{ClientID: "client", DiscoveryURL: "http://example.com"},
			errMsg: "client secret is required",
		},
		{
			name:   "missing discovery URL",
			config: ProviderConfig{ClientID: "client", ClientSecret: "secret"},
			errMsg: "discovery URL is required",
		},
		{
			name: "bad claim expression",
			config: ProviderConfig{
				ClientID:     "client",
				ClientSecret: "secret",
				DiscoveryURL: "http://example.com",
				RoleClaim:    "roles[",
			},
			errMsg: "invalid claim expression",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProvider(tt.config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestAuthenticateRejectedCredentials(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	})

	_, err := provider.Authenticate(context.Background(), "op-1", "wrong")
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidCredentials(err))
}

func TestAuthenticateProviderFailure(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := provider.Authenticate(context.Background(), "op-1", "secret")
	require.Error(t, err)
	assert.True(t, apperrors.IsProviderUnavailable(err))
}

func TestAuthenticateMissingIDToken(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","token_type":"bearer"}`))
	})

	_, err := provider.Authenticate(context.Background(), "op-1", "secret")
	require.Error(t, err)
	assert.True(t, apperrors.IsProviderUnavailable(err))
	assert.Contains(t, err.Error(), "id_token")
}

func TestMapClaimsDefaults(t *testing.T) {
	provider := newTestProvider(t, nil)

	identity, err := provider.mapClaims("op-1", map[string]any{
		"email":          "pat.jones@example.com",
		"given_name":     "Pat",
		"family_name":    "Jones",
		"role":           "manager",
		"account_status": "active",
	})
	require.NoError(t, err)

	assert.Equal(t, "op-1", identity.ID)
	assert.Equal(t, "pat.jones@example.com", identity.Email)
	assert.Equal(t, "Pat", identity.FirstName)
	assert.Equal(t, "Jones", identity.LastName)
	assert.Equal(t, domainauth.RoleManager, identity.Role)
	assert.Equal(t, domainauth.StatusActive, identity.Status)
}

func TestMapClaimsCustomExpressions(t *testing.T) {
	server := newIssuerServer(t, nil)
	provider, err := NewProvider(ProviderConfig{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		DiscoveryURL: server.URL,
		RoleClaim:    "parceldesk.role",
		StatusClaim:  "parceldesk.status",
		EmailClaim:   "contact.email",
	})
	require.NoError(t, err)

	identity, err := provider.mapClaims("op-2", map[string]any{
		"parceldesk": map[string]any{"role": "admin", "status": "suspended"},
		"contact":    map[string]any{"email": "dana.kim@example.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, domainauth.RoleAdmin, identity.Role)
	assert.Equal(t, domainauth.StatusSuspended, identity.Status)
	assert.Equal(t, "dana.kim@example.com", identity.Email)
}

func TestMapClaimsEmptyStatusDefaultsActive(t *testing.T) {
	provider := newTestProvider(t, nil)

	identity, err := provider.mapClaims("op-3", map[string]any{"role": "worker"})
	require.NoError(t, err)
	assert.Equal(t, domainauth.StatusActive, identity.Status)
}

func TestMapClaimsEmptySubject(t *testing.T) {
	provider := newTestProvider(t, nil)

	_, err := provider.mapClaims("", map[string]any{"role": "worker"})
	require.Error(t, err)
	assert.True(t, apperrors.IsProviderUnavailable(err))
}

func TestMapClaimsUnknownRolePassesThrough(t *testing.T) {
	provider := newTestProvider(t, nil)

	// Role tags come back opaque; the permission table fails closed on
	// anything it does not recognize.
	identity, err := provider.mapClaims("op-4", map[string]any{"role": "emperor"})
	require.NoError(t, err)
	assert.False(t, identity.Role.Known())
	assert.Empty(t, domainauth.Derive(identity.Role))
}
