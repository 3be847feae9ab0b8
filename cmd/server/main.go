// Package main is the posgate server entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/mattn/go-sqlite3"

	"posgate/internal/api"
	"posgate/internal/app"
	"posgate/internal/config"
	"posgate/internal/db"
	"posgate/internal/middleware"
	"posgate/internal/ui"
)

// version is injected at build time via ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "posgate: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	for _, warning := range cfg.Warnings {
		logger.Warn(warning)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	writeDB, readDB, err := db.OpenSQLitePair(cfg.DBPath, 4)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer writeDB.Close()
	defer readDB.Close()

	if err := db.RunMigrations(writeDB); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	application, err := app.New(ctx, app.Deps{
		Cfg:     cfg,
		WriteDB: writeDB,
		ReadDB:  readDB,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("wire application: %w", err)
	}
	defer application.Close()

	// Locally issued session tokens are always accepted; tokens from an
	// external OIDC issuer are accepted alongside when configured.
	sessions, err := middleware.NewHS256Validator(cfg.Auth.JWTSecret)
	if err != nil {
		return fmt.Errorf("session signer: %w", err)
	}
	var validator middleware.JWTValidator = sessions
	if cfg.Auth.OIDCEnabled() {
		oidcValidator, err := middleware.NewOIDCValidator(ctx,
			cfg.Auth.IssuerURL, cfg.Auth.Audience, cfg.Auth.AllowedIssuers)
		if err != nil {
			return fmt.Errorf("oidc discovery: %w", err)
		}
		validator = middleware.NewMultiValidator(sessions,
			middleware.UsernameClaimValidator{Inner: oidcValidator, Claim: cfg.Auth.UsernameClaim})
		logger.Info("oidc issuer enabled", "issuer", cfg.Auth.IssuerURL)
	}

	authCfg := middleware.AuthConfig{
		Validator:    validator,
		Resolver:     application.Directory,
		APIKeyHeader: cfg.Auth.APIKeyHeader,
	}
	if cfg.Auth.APIKeyEnabled {
		authCfg.APIKeys = application.APIKeys
	}

	apiHandler := api.NewHandler(
		application.Directory,
		application.APIKeys,
		application.Store,
		application.Archive,
		application.AuditRepo,
		sessions,
		readDB,
		logger.With("component", "api"),
		cfg.StoreName,
		version,
		cfg.Auth.SessionTTL,
	)
	uiHandler := ui.NewHandler(
		application.Directory,
		application.AuditRepo,
		sessions,
		cfg.Auth.SessionTTL,
		cfg.IsProduction(),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", cfg.Auth.APIKeyHeader},
		ExposedHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		MaxAge:         300,
	}))
	r.Use(middleware.RateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	}))

	api.MountRoutes(r, apiHandler, middleware.Auth(authCfg), middleware.RequireAdmin)
	r.Route("/ui", func(r chi.Router) {
		ui.MountRoutes(r, uiHandler)
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	application.StartMaintenance()

	serverErr := make(chan error, 1)
	go func() {
		scheme := "http"
		if cfg.TLSCertFile != "" {
			scheme = "https"
		}
		host := curlHostForListenAddr(cfg.ListenAddr)
		logger.Info("server listening",
			"addr", cfg.ListenAddr,
			"version", version,
			"docs", fmt.Sprintf("%s://%s/docs", scheme, host),
			"console", fmt.Sprintf("%s://%s/ui/", scheme, host))

		var err error
		if cfg.TLSCertFile != "" {
			err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// curlHostForListenAddr turns a listen address into a host suitable for
// the startup hint URLs: wildcard and empty hosts become localhost.
func curlHostForListenAddr(listenAddr string) string {
	addr := strings.TrimSpace(listenAddr)
	if addr == "" {
		return "localhost:8080"
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return host + ":" + port
}
