package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/optiretina/portal/internal/api"
	"github.com/optiretina/portal/internal/analysis"
	"github.com/optiretina/portal/internal/auth"
	"github.com/optiretina/portal/internal/config"
	"github.com/optiretina/portal/internal/database"
	"github.com/optiretina/portal/internal/web"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx := context.Background()

	if cfg.MigrateOnStart {
		if err := database.Migrate(ctx, cfg.DatabaseURL); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("migrations applied")
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create user store pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// A dead store is not fatal: the portal keeps serving and login surfaces
	// STORE_UNAVAILABLE (or the demo fallback, where enabled).
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := pool.Ping(pingCtx); err != nil {
		slog.Warn("user store unreachable at startup", "error", err)
	}
	cancel()

	templates, err := web.Templates()
	if err != nil {
		slog.Error("failed to parse templates", "error", err)
		os.Exit(1)
	}

	if cfg.DemoLoginEnabled {
		slog.Warn("demo fallback login is ENABLED; do not run this configuration in production")
	}

	authService := auth.NewService(auth.NewRepository(pool), cfg.DemoLoginEnabled)
	tokens := auth.NewTokenManager([]byte(cfg.SessionSecret), time.Duration(cfg.SessionTTLHours)*time.Hour)
	analysisClient := analysis.NewClient(cfg.AnalysisURL, time.Duration(cfg.AnalysisTimeoutSeconds)*time.Second)

	router := api.NewRouter(api.RouterDeps{
		AuthService:    authService,
		Tokens:         tokens,
		Analysis:       analysisClient,
		DB:             pool,
		Templates:      templates,
		CookieSecure:   cfg.CookieSecure,
		MaxUploadBytes: cfg.MaxUploadMB << 20,
		Version:        cfg.Version,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting portal server", "port", cfg.Port, "version", cfg.Version, "analysisURL", cfg.AnalysisURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(ctx, 15*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// setupLogger installs the process-wide JSON logger.
func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
