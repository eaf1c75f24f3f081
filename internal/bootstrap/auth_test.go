package bootstrap

import (
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parceldesk/ops-api/config"
	"github.com/parceldesk/ops-api/internal/service"
)

func devConfig(store config.StoreBackend) *config.AppConfig {
	return &config.AppConfig{
		Store: store,
		Auth: config.AuthConfig{
			Mode: config.AuthModeDev,
			DevIdP: config.DevIdPConfig{
				PrincipalID: "dev-operator",
				Secret:      "dev-secret",
				Role:        "admin",
				Status:      "active",
			},
		},
	}
}

func TestBuildAuthMachineRequiresConfig(t *testing.T) {
	_, err := BuildAuthMachine(AuthDeps{})
	assert.Error(t, err)
}

func TestBuildAuthMachineDevMode(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer func() { _ = client.Close() }()

	machine, err := BuildAuthMachine(AuthDeps{
		Config:      devConfig(config.StoreBackendRedis),
		RedisClient: client,
	})
	require.NoError(t, err)
	require.NotNil(t, machine)
	assert.Equal(t, service.PhaseAnonymous, machine.State().Phase)
}

func TestBuildAuthMachineMissingBackendHandle(t *testing.T) {
	_, err := BuildAuthMachine(AuthDeps{Config: devConfig(config.StoreBackendRedis)})
	assert.Error(t, err)

	_, err = BuildAuthMachine(AuthDeps{Config: devConfig(config.StoreBackendPostgres)})
	assert.Error(t, err)
}

func TestBuildAuthMachineOIDCRequiresDiscoveryURL(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer func() { _ = client.Close() }()

	cfg := devConfig(config.StoreBackendRedis)
	cfg.Auth.Mode = config.AuthModeOIDC

	_, err := BuildAuthMachine(AuthDeps{Config: cfg, RedisClient: client})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OIDC_DISCOVERY_URL")
}

func TestBuildAuthMachineRejectsBadDevRole(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer func() { _ = client.Close() }()

	cfg := devConfig(config.StoreBackendRedis)
	cfg.Auth.DevIdP.Role = "emperor"

	_, err := BuildAuthMachine(AuthDeps{Config: cfg, RedisClient: client})
	assert.Error(t, err)
}
