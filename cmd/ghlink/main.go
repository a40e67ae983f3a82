package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	githubadapter "github.com/ericfisherdev/ghlink/internal/adapter/driven/github"
	sqliteadapter "github.com/ericfisherdev/ghlink/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/ghlink/internal/adapter/driving/http"
	"github.com/ericfisherdev/ghlink/internal/application"
	"github.com/ericfisherdev/ghlink/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"redirect_uri", cfg.GitHubRedirectURI,
		"github_timeout", cfg.GitHubTimeout,
		"reauth_policy", cfg.ReauthPolicy,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire adapters.
	integrationStore := sqliteadapter.NewIntegrationRepo(db, cfg.SecretKey)

	ghClient, err := githubadapter.NewClient(githubadapter.Config{
		ClientID:     cfg.GitHubClientID,
		ClientSecret: cfg.GitHubClientSecret,
		RedirectURL:  cfg.GitHubRedirectURI,
		Timeout:      cfg.GitHubTimeout,
	})
	if err != nil {
		return err
	}

	// 6. Create services.
	integrationSvc := application.NewIntegrationService(
		integrationStore,
		ghClient,
		slog.Default(),
		application.WithReauthPolicy(cfg.ReauthPolicy),
	)
	relaySvc := application.NewRelayService(ghClient, slog.Default())

	// 7. Create HTTP handler with middleware.
	apiHandler := httphandler.NewHandler(integrationSvc, relaySvc, integrationStore, slog.Default())
	handler := httphandler.NewServeMux(apiHandler, slog.Default(), cfg.CORSOrigins)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Upstream calls are bounded by GitHubTimeout; leave room to write the reply.
		WriteTimeout: cfg.GitHubTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	slog.Info("ghlink started", "listen_addr", cfg.ListenAddr)

	// 8. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 9. Graceful shutdown with 10s timeout to drain in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
