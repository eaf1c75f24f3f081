package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/parceldesk/ops-api/config"
	"github.com/parceldesk/ops-api/internal/bootstrap"
	"github.com/parceldesk/ops-api/internal/migrate"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting ops-api",
		"store_backend", string(cfg.Store),
		"auth_mode", string(cfg.Auth.Mode),
		"addr", cfg.HTTP.Addr)

	db, redisClient, err := initInfrastructure(ctx, &cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer func() {
			if cerr := db.Close(); cerr != nil {
				logger.ErrorContext(ctx, "close database failed", "error", cerr)
			}
		}()
	}
	if redisClient != nil {
		defer func() {
			if cerr := redisClient.Close(); cerr != nil {
				logger.ErrorContext(ctx, "close redis failed", "error", cerr)
			}
		}()
	}

	machine, err := bootstrap.BuildAuthMachine(bootstrap.AuthDeps{
		Config:      &cfg,
		RedisClient: redisClient,
		DB:          db,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	return bootstrap.Run(ctx, &cfg, machine, logger)
}

// initInfrastructure connects only the backing store the configuration selects.
//
//nolint:ireturn // returning redis.UniversalClient keeps sentinel support flexible.
func initInfrastructure(
	ctx context.Context,
	cfg *config.AppConfig,
	logger *slog.Logger,
) (*sql.DB, redis.UniversalClient, error) {
	switch cfg.Store {
	case config.StoreBackendPostgres:
		db, err := bootstrap.ConnectDB(cfg.Postgres, logger)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Postgres.RunMigrationsOnStart {
			if migrateErr := migrate.Run(ctx, db); migrateErr != nil {
				_ = db.Close()
				return nil, nil, migrateErr
			}
		} else {
			logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
		}
		return db, nil, nil
	default:
		redisClient, err := bootstrap.ConnectRedis(cfg.Redis, logger)
		if err != nil {
			return nil, nil, err
		}
		return nil, redisClient, nil
	}
}
