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

	githubadapter "github.com/ericfisherdev/prototypehub/internal/adapter/driven/github"
	httphandler "github.com/ericfisherdev/prototypehub/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/prototypehub/internal/adapter/driving/web"
	"github.com/ericfisherdev/prototypehub/internal/application"
	"github.com/ericfisherdev/prototypehub/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing GITHUB_TOKEN).
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"log_level", cfg.LogLevel.String(),
		"rate_limit_check", cfg.RateLimitCheck,
		"repository", application.RepoFullName,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Create GitHub client.
	ghClient := githubadapter.NewClient(cfg.GitHubToken)

	// 4. Create review aggregator.
	aggregator := application.NewReviewAggregator(ghClient,
		application.WithLogger(logger),
		application.WithRateLimitCheck(cfg.RateLimitCheck),
	)

	// 5. Create HTTP handler and register API routes.
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, httphandler.NewHandler(aggregator, logger))

	// 6. Create web handler and register GUI routes.
	webhandler.RegisterRoutes(mux, webhandler.NewHandler(aggregator, logger))

	// Apply middleware.
	handler := httphandler.ApplyMiddleware(mux, logger)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// 7. Wait for shutdown signal or listener failure.
	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	// 8. Graceful shutdown with 10s timeout to drain in-flight aggregations.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
