package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"github.com/parceldesk/ops-api/config"
	apperrors "github.com/parceldesk/ops-api/internal/errors"
	httpx "github.com/parceldesk/ops-api/internal/http"
	"github.com/parceldesk/ops-api/internal/service"
)

const shutdownGrace = 10 * time.Second

// Run restores the persisted session, then serves HTTP and the background
// status re-check until a shutdown signal arrives or a component fails.
func Run(ctx context.Context, cfg *config.AppConfig, machine *service.AuthMachine, logger *slog.Logger) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	// Restore before accepting traffic so the first capability check sees
	// the re-validated session, not a default Anonymous.
	if _, err := machine.Restore(ctx); err != nil {
		if apperrors.IsIdentityInactive(err) {
			logger.Warn("persisted identity no longer active; starting anonymous")
		} else {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      buildHandler(machine, logger),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	group.Go(func() error {
		listener, err := net.Listen("tcp", server.Addr)
		if err != nil {
			return err
		}
		listener = netutil.LimitListener(listener, cfg.HTTP.MaxConns)
		logger.Info("starting HTTP server", "addr", server.Addr, "max_conns", cfg.HTTP.MaxConns)
		if serveErr := server.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return serveErr
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if cfg.Auth.RecheckInterval > 0 {
		group.Go(func() error {
			runRecheck(ctx, machine, cfg.Auth.RecheckInterval, logger)
			return nil
		})
	}

	return group.Wait()
}

func buildHandler(machine *service.AuthMachine, logger *slog.Logger) http.Handler {
	router := httpx.NewRouter(httpx.RouterServices{
		Machine: machine,
		Guard:   service.NewGuard(),
		Logger:  logger,
	})

	// Order: Recover -> Logging -> Router
	h := httpx.Logging(logger)(router)
	return httpx.Recover(logger)(h)
}

// runRecheck periodically re-validates the live identity's account status.
// Transient lookup failures are logged and retried on the next tick.
func runRecheck(ctx context.Context, machine *service.AuthMachine, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			demoted, err := machine.Recheck(ctx)
			if err != nil {
				logger.Warn("status re-check failed", "error", err)
				continue
			}
			if demoted {
				logger.Info("session revoked by status re-check")
			}
		}
	}
}
