package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"casalgastos/internal/auth"
	"casalgastos/internal/cache"
	"casalgastos/internal/cli"
	apphttp "casalgastos/internal/http"
	applog "casalgastos/internal/log"
	"casalgastos/internal/services"
	"casalgastos/internal/session"
)

const (
	shutdownTimeout      = 30 * time.Second
	sessionSweepInterval = 5 * time.Minute
)

func serveCmd() *cobra.Command {
	var secureCookies bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), secureCookies)
		},
	}
	cmd.Flags().BoolVar(&secureCookies, "secure-cookies", false, "mark the session cookie Secure and send HSTS (behind TLS)")
	return cmd
}

func runServe(ctx context.Context, secureCookies bool) error {
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}

	store, err := cli.BuildBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Backend close failed", applog.FieldError, err)
		}
	}()

	boot := services.NewBootstrapper(store, cfg.BackendTimeout, logger)
	ledger := services.NewLedger(store, cfg.BackendTimeout, logger)
	sessions := session.NewManager(boot, ledger, cfg.SessionCacheSize, cfg.SessionTTL, logger)

	sweeper := cache.NewManager(logger)
	sweeper.Register(sessions.Cache())
	sweeper.StartCleanup(sessionSweepInterval)
	defer sweeper.Stop()

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		SecureCookies:      secureCookies,
	}, apphttp.Deps{
		Sessions: sessions,
		Verifier: auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer),
		Backend:  store,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting casalgastos server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			applog.FieldOperation, applog.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received", applog.FieldOperation, applog.OpShutdown)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", applog.FieldError, err)
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
