package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"insurance-claims-backend/internal/adapter/repository/gormrepo"

	"github.com/spf13/cobra"
)

var autoMigrate bool

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API.

Examples:
  claims-api serve
  claims-api serve --port 9090 --migrate
  claims-api serve --env-file deploy/.env.staging`,
		RunE: runServe,
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides APP_PORT)")
	cmd.Flags().BoolVar(&autoMigrate, "migrate", false, "run schema migration and seed claim types before serving")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	if autoMigrate {
		if err := migrate(ctx, a); err != nil {
			return err
		}
	}

	e, err := a.router(ctx)
	if err != nil {
		return err
	}

	addr := ":" + a.cfg.AppPort
	errCh := make(chan error, 1)
	go func() {
		a.log.Info("listening", "addr", addr, "env", a.cfg.AppEnv, "db", a.cfg.DBDriver, "blobs", a.cfg.BlobBackend)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func migrate(ctx context.Context, a *app) error {
	if err := gormrepo.Migrate(ctx, a.db); err != nil {
		return err
	}
	if err := gormrepo.SeedClaimTypes(ctx, a.db); err != nil {
		return err
	}
	a.log.Info("schema migrated", "driver", a.cfg.DBDriver)
	return nil
}
