package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/kansaiyets/Satellite-tracker/internal/api"
	"github.com/kansaiyets/Satellite-tracker/internal/config"
	"github.com/kansaiyets/Satellite-tracker/internal/metrics"
	"github.com/kansaiyets/Satellite-tracker/internal/propagation"
	"github.com/kansaiyets/Satellite-tracker/internal/reconcile"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve reconciled records and positions over HTTP",
		Long: `Serve runs a reconciliation pass in the background and exposes the result
over a JSON API. /readyz reports 503 until the first pass completes. A new
pass can be triggered with POST /api/v1/reconcile or periodically with
--refresh-interval.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().Duration("refresh-interval", 0, "re-run reconciliation this often (0 disables)")
	mustBind(a.v, config.KeyAddr, cmd.Flags().Lookup("addr"))
	mustBind(a.v, config.KeyRefreshInterval, cmd.Flags().Lookup("refresh-interval"))
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	engine, err := a.engine()
	if err != nil {
		return err
	}
	store := reconcile.NewStore()

	srv := api.NewServer(api.Config{
		Addr:       a.cfg.Server.Addr,
		TrustProxy: a.cfg.Server.TrustProxy,
		Auth:       a.cfg.Auth,
		Propagation: propagation.Config{
			Workers:     a.cfg.Propagation.Workers,
			TrailPoints: a.cfg.Propagation.TrailPoints,
			TrailStep:   a.cfg.Propagation.TrailStep,
		},
	}, store, engine, a.logger)

	refresh := func() {
		if _, err := store.Refresh(func() (*reconcile.Result, error) { return engine.Run(ctx) }); err != nil {
			a.logger.Error("reconciliation failed", "error", err)
		}
	}

	go refresh()

	if interval := a.cfg.Server.RefreshInterval; interval > 0 {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					refresh()
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	// Background goroutine to update the result age gauge.
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if age := store.AgeSeconds(); age >= 0 {
					metrics.SetResultAge(age)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting server",
			"addr", a.cfg.Server.Addr,
			"auth_enabled", a.cfg.Auth.Enabled,
			"refresh_interval", a.cfg.Server.RefreshInterval.String(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.logger.Error("server listen error", "error", err)
		return err
	case <-ctx.Done():
	}
	a.logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown error", "error", err)
		return err
	}

	a.logger.Info("server stopped")
	return nil
}
