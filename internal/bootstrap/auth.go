package bootstrap

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/parceldesk/ops-api/config"
	"github.com/parceldesk/ops-api/internal/adapters/devidp"
	"github.com/parceldesk/ops-api/internal/adapters/oidc"
	postgresadapter "github.com/parceldesk/ops-api/internal/adapters/postgres"
	redisadapter "github.com/parceldesk/ops-api/internal/adapters/redis"
	domainauth "github.com/parceldesk/ops-api/internal/domain/auth"
	"github.com/parceldesk/ops-api/internal/ports"
	"github.com/parceldesk/ops-api/internal/service"
)

// AuthDeps contains the infrastructure handles the auth machine can be
// built from. Exactly one of RedisClient/DB must match cfg.Store.
type AuthDeps struct {
	Config      *config.AppConfig
	RedisClient redis.UniversalClient
	DB          *sql.DB
	Logger      *slog.Logger
}

// BuildAuthMachine wires the persistence port, identity provider, and
// optional identity directory into an auth machine per configuration.
func BuildAuthMachine(deps AuthDeps) (*service.AuthMachine, error) {
	if deps.Config == nil {
		return nil, errors.New("auth config is required")
	}

	kv, err := buildKVStore(deps)
	if err != nil {
		return nil, err
	}
	store := service.NewSessionStore(kv, deps.Logger)

	provider, directory, err := buildProvider(deps.Config.Auth)
	if err != nil {
		return nil, err
	}

	return service.NewAuthMachine(service.AuthMachineOptions{
		Provider:  provider,
		Store:     store,
		Directory: directory,
		Logger:    deps.Logger,
	}), nil
}

//nolint:ireturn // the port interface is the whole point of this factory.
func buildKVStore(deps AuthDeps) (ports.KeyValueStore, error) {
	switch deps.Config.Store {
	case config.StoreBackendPostgres:
		if deps.DB == nil {
			return nil, errors.New("store backend postgres selected but no database connection")
		}
		return postgresadapter.NewKVStore(deps.DB), nil
	case config.StoreBackendRedis:
		if deps.RedisClient == nil {
			return nil, errors.New("store backend redis selected but no redis client")
		}
		return redisadapter.NewKVStore(deps.RedisClient), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", deps.Config.Store)
	}
}

//nolint:ireturn // provider selection is config-driven by design.
func buildProvider(cfg config.AuthConfig) (ports.IdentityProvider, ports.IdentityDirectory, error) {
	switch cfg.Mode {
	case config.AuthModeDev:
		prov, err := devidp.NewProvider(devidp.Config{
			PrincipalID: cfg.DevIdP.PrincipalID,
			Secret:      cfg.DevIdP.Secret,
			Email:       cfg.DevIdP.Email,
			FirstName:   cfg.DevIdP.FirstName,
			LastName:    cfg.DevIdP.LastName,
			Role:        domainauth.Role(cfg.DevIdP.Role),
			Status:      domainauth.Status(cfg.DevIdP.Status),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("build dev identity provider: %w", err)
		}
		// The dev provider doubles as the identity directory.
		return prov, prov, nil

	case config.AuthModeOIDC:
		if cfg.OIDC.DiscoveryURL == "" {
			return nil, nil, errors.New("AuthModeOIDC selected but OIDC_DISCOVERY_URL is empty")
		}
		prov, err := oidc.NewProvider(oidc.ProviderConfig{
			ClientID:     cfg.OIDC.ClientID,
			ClientSecret: cfg.OIDC.ClientSecret,
			Scope:        cfg.OIDC.Scope,
			DiscoveryURL: cfg.OIDC.DiscoveryURL,
			RoleClaim:    cfg.OIDC.RoleClaim,
			StatusClaim:  cfg.OIDC.StatusClaim,
			EmailClaim:   cfg.OIDC.EmailClaim,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("build oidc identity provider: %w", err)
		}
		// No status directory on the OIDC path; the background re-check
		// stays disabled until one is configured.
		return prov, nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
	}
}
