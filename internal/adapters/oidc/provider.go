package oidc

// Package oidc implements the identity provider port against an OIDC/OAuth2
// IdP using the resource-owner password grant. Claim locations are
// configurable as JMESPath expressions so differing IdP schemas map onto
// the same identity record.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	jmespath "github.com/jmespath-community/go-jmespath"
	"golang.org/x/oauth2"

	domainauth "github.com/parceldesk/ops-api/internal/domain/auth"
	apperrors "github.com/parceldesk/ops-api/internal/errors"
)

// ProviderConfig holds configuration for the OIDC identity provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	Scope        string
	DiscoveryURL string

	// JMESPath expressions locating identity fields in the ID token claims.
	// Empty expressions fall back to the conventional claim names.
	RoleClaim   string
	StatusClaim string
	EmailClaim  string

	HTTPClient *http.Client // Optional, defaults to a 30s-timeout client
}

// Provider implements ports.IdentityProvider using OIDC/OAuth2.
type Provider struct {
	config     *oauth2.Config
	verifier   *gooidc.IDTokenVerifier
	httpClient *http.Client

	roleClaim   string
	statusClaim string
	emailClaim  string
}

const (
	defaultRoleClaim   = "role"
	defaultStatusClaim = "account_status"
	defaultEmailClaim  = "email"
)

// NewProvider creates a new OIDC identity provider. It performs a single
// discovery fetch against the issuer.
func NewProvider(cfg ProviderConfig) (*Provider, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}
	if cfg.DiscoveryURL == "" {
		return nil, errors.New("discovery URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	p := &Provider{
		httpClient:  httpClient,
		roleClaim:   claimExpr(cfg.RoleClaim, defaultRoleClaim),
		statusClaim: claimExpr(cfg.StatusClaim, defaultStatusClaim),
		emailClaim:  claimExpr(cfg.EmailClaim, defaultEmailClaim),
	}

	for _, expr := range []string{p.roleClaim, p.statusClaim, p.emailClaim} {
		if _, err := jmespath.Compile(expr); err != nil {
			return nil, fmt.Errorf("invalid claim expression %q: %w", expr, err)
		}
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
	issuer := strings.TrimSuffix(cfg.DiscoveryURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}
	p.verifier = op.Verifier(&gooidc.Config{ClientID: cfg.ClientID})

	scopes := strings.Fields(cfg.Scope)
	if len(scopes) == 0 {
		scopes = []string{gooidc.ScopeOpenID, "profile", "email"}
	}
	p.config = &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     op.Endpoint(),
		Scopes:       scopes,
	}

	return p, nil
}

// Authenticate exchanges the credential pair for an ID token via the
// password grant and maps the verified claims onto an identity record.
func (p *Provider) Authenticate(ctx context.Context, principalID, secret string) (domainauth.Identity, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	token, err := p.config.PasswordCredentialsToken(ctx, principalID, secret)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			code := retrieveErr.Response.StatusCode
			if code == http.StatusBadRequest || code == http.StatusUnauthorized {
				return domainauth.Identity{}, apperrors.InvalidCredentials("identity provider rejected credentials")
			}
		}
		return domainauth.Identity{}, apperrors.ProviderUnavailable(err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return domainauth.Identity{}, apperrors.ProviderUnavailable(errors.New("token response missing id_token"))
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return domainauth.Identity{}, apperrors.ProviderUnavailable(fmt.Errorf("verify id_token: %w", err))
	}

	var claims map[string]any
	if claimsErr := idToken.Claims(&claims); claimsErr != nil {
		return domainauth.Identity{}, apperrors.ProviderUnavailable(fmt.Errorf("decode claims: %w", claimsErr))
	}

	return p.mapClaims(idToken.Subject, claims)
}

// mapClaims builds the identity record from the ID token claims document.
func (p *Provider) mapClaims(subject string, claims map[string]any) (domainauth.Identity, error) {
	now := time.Now()
	identity := domainauth.Identity{
		ID:        subject,
		Email:     claimString(p.emailClaim, claims),
		FirstName: stringClaim(claims, "given_name"),
		LastName:  stringClaim(claims, "family_name"),
		Role:      domainauth.Role(claimString(p.roleClaim, claims)),
		Status:    domainauth.Status(claimString(p.statusClaim, claims)),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if identity.ID == "" {
		return domainauth.Identity{}, apperrors.ProviderUnavailable(errors.New("id_token has empty subject"))
	}
	if identity.Status == "" {
		// IdPs that do not carry a status claim are assumed to only issue
		// tokens for enabled accounts.
		identity.Status = domainauth.StatusActive
	}
	return identity, nil
}

func claimExpr(expr, fallback string) string {
	if expr == "" {
		return fallback
	}
	return expr
}

// claimString evaluates a JMESPath expression against the claims document
// and returns the result as a string, or "" when absent or non-string.
func claimString(expr string, claims map[string]any) string {
	out, err := jmespath.Search(expr, claims)
	if err != nil {
		return ""
	}
	s, _ := out.(string)
	return s
}

func stringClaim(claims map[string]any, name string) string {
	s, _ := claims[name].(string)
	return s
}
