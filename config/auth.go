package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the identity provider mode for the application.
type AuthMode string

const (
	// AuthModeOIDC authenticates against an OIDC/OAuth2 identity provider.
	AuthModeOIDC AuthMode = "oidc"
	// AuthModeDev uses the config-driven dev identity provider (development only).
	AuthModeDev AuthMode = "dev"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oidc", "dev":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oidc, dev)", v)
	}
}

// OIDCConfig contains OIDC/OAuth2 identity provider configuration.
type OIDCConfig struct {
	ClientID     string `env:"CLIENT_ID"     envDefault:"parceldesk"`
	ClientSecret string `env:"CLIENT_SECRET" envDefault:"parceldesk"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
	DiscoveryURL string `env:"DISCOVERY_URL"`

	// Claim locations as JMESPath expressions against the ID token claims.
	// Empty values fall back to conventional claim names.
	RoleClaim   string `env:"ROLE_CLAIM"   envDefault:""`
	StatusClaim string `env:"STATUS_CLAIM" envDefault:""`
	EmailClaim  string `env:"EMAIL_CLAIM"  envDefault:""`
}

// DevIdPConfig controls the dev identity provider.
// Used when AUTH_MODE=dev for development and testing.
type DevIdPConfig struct {
	PrincipalID string `env:"PRINCIPAL_ID" envDefault:"dev-operator"`
	Secret      string `env:"SECRET"       envDefault:"dev-secret"`
	Email       string `env:"EMAIL"        envDefault:"dev@example.com"`
	FirstName   string `env:"FIRST_NAME"   envDefault:"Dev"`
	LastName    string `env:"LAST_NAME"    envDefault:"Operator"`
	Role        string `env:"ROLE"         envDefault:"admin"`
	Status      string `env:"STATUS"       envDefault:"active"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which identity provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oidc"`

	// OIDC configuration (used when Mode=oidc).
	OIDC OIDCConfig `envPrefix:"OIDC_"`

	// DevIdP configuration (used when Mode=dev).
	DevIdP DevIdPConfig `envPrefix:"DEV_IDP_"`

	// RecheckInterval is how often the background runner re-validates the
	// live identity's account status. Zero disables the runner.
	RecheckInterval time.Duration `env:"AUTH_RECHECK_INTERVAL" envDefault:"5m"`
}
