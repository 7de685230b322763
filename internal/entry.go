// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/brewstock/internal/api"
	"github.com/starford/brewstock/internal/apperr"
	"github.com/starford/brewstock/internal/credentials"
	"github.com/starford/brewstock/internal/dashboard"
	"github.com/starford/brewstock/internal/sse"
)

// Run starts the HTTP dashboard with the background refresher until a
// shutdown signal arrives or ctx is cancelled.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	c, err := app.bootstrap()
	if err != nil {
		return err
	}
	defer c.close()

	cfg := c.cfg
	logger := c.logger

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("brewfather_url", cfg.Brewfather.BaseURL),
		slog.String("credentials_driver", cfg.Credentials.Driver),
		slog.String("credentials_path", cfg.Credentials.Path),
		slog.Duration("refresh_interval", cfg.Refresh.Interval),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker fed by the dashboard service.
	broker := sse.NewBroker(cfg.Refresh.NotifyThrottle)
	defer broker.Close()
	c.svc.Subscribe(func(snap *dashboard.Snapshot, err error) {
		if err != nil {
			broker.PublishDashboardFailed(err)
			return
		}
		broker.PublishDashboardUpdated(snap.Checksum, snap.FetchedAt)
	})

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           newHTTPHandler(c, broker),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	g, gCtx := errgroup.WithContext(runCtx)

	// Initial load, then periodic refreshes.
	g.Go(func() error {
		if _, err := c.svc.Refresh(gCtx); errors.Is(err, apperr.ErrNoCredentials) {
			logger.Info("Brewfather credentials not configured yet; waiting for them")
		}
		c.svc.Run(gCtx, cfg.Refresh.Interval)
		return nil
	})

	// Reload when the credentials file is edited outside the app.
	if cfg.Credentials.Driver == credentials.DriverFile {
		g.Go(func() error {
			err := credentials.Watch(gCtx, cfg.Credentials.Path, logger, func() {
				broker.PublishCredentialsUpdated()
				_, _ = c.svc.Refresh(gCtx)
			})
			if err != nil {
				logger.Error("credentials watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")
		// Stops the refresher and the watcher.
		stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// newHTTPHandler assembles the root router: health checks, metrics, the API
// under /api and the HTML dashboard at /.
func newHTTPHandler(c *components, broker *sse.Broker) http.Handler {
	cfg := c.cfg

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if snap, _ := c.svc.Current(); snap == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"no data"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if c.metrics != nil {
		r.Handle(cfg.Metrics.Path, c.metrics.Handler())
	}

	r.Mount("/api", api.NewRouter(c.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker))

	r.With(api.AuthMiddleware(cfg.Auth.AuthEnabled(), cfg.Auth.Token)).
		Get("/", api.PageHandler(c.svc))

	return r
}
