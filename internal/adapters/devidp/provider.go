package devidp

// Package devidp provides a config-driven identity provider for local
// development. It is explicit opt-in via AUTH_MODE and still honors the
// role and status fields, so inactive-account and capability paths stay
// exercisable without a real IdP.

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	domainauth "github.com/parceldesk/ops-api/internal/domain/auth"
	apperrors "github.com/parceldesk/ops-api/internal/errors"
)

// Config controls the dev identity provider behavior.
type Config struct {
	PrincipalID string
	Secret      string
	Email       string
	FirstName   string
	LastName    string
	Role        domainauth.Role
	Status      domainauth.Status
}

// Provider implements ports.IdentityProvider from static configuration.
// Unlike a throwaway "accept anything" mock, it rejects unknown principals
// and wrong secrets so login failure paths behave as in production.
type Provider struct {
	principalID string
	secret      string
	identity    domainauth.Identity
}

// NewProvider constructs a dev identity provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.PrincipalID == "" {
		return nil, errors.New("dev idp: PrincipalID is required")
	}
	if cfg.Secret == "" {
		return nil, errors.New("dev idp: Secret is required")
	}
	role := cfg.Role
	if role == "" {
		role = domainauth.RoleWorker
	}
	if !role.Known() {
		return nil, errors.New("dev idp: unrecognized role " + string(role))
	}
	status := cfg.Status
	if status == "" {
		status = domainauth.StatusActive
	}
	if !status.Known() {
		return nil, errors.New("dev idp: unrecognized status " + string(status))
	}

	now := time.Now()
	return &Provider{
		principalID: cfg.PrincipalID,
		secret:      cfg.Secret,
		identity: domainauth.Identity{
			ID:        cfg.PrincipalID,
			Email:     cfg.Email,
			FirstName: cfg.FirstName,
			LastName:  cfg.LastName,
			Role:      role,
			Status:    status,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}, nil
}

// Authenticate checks the credential pair against the configured values.
func (p *Provider) Authenticate(_ context.Context, principalID, secret string) (domainauth.Identity, error) {
	match := subtle.ConstantTimeCompare([]byte(principalID), []byte(p.principalID)) &
		subtle.ConstantTimeCompare([]byte(secret), []byte(p.secret))
	if match != 1 {
		return domainauth.Identity{}, apperrors.InvalidCredentials("unknown principal or wrong secret")
	}
	return p.identity, nil
}

// LookupStatus implements ports.IdentityDirectory for the configured principal.
func (p *Provider) LookupStatus(_ context.Context, principalID string) (domainauth.Status, error) {
	if principalID != p.principalID {
		return "", apperrors.NotFound("unknown principal")
	}
	return p.identity.Status, nil
}
