package internal

import (
	"cmp"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/brewstock/internal/credentials"
	"github.com/starford/brewstock/internal/dashboard"
	"github.com/starford/brewstock/internal/metrics"
)

// components is the set of long-lived components every command needs.
type components struct {
	cfg     *Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	store   credentials.Store
	svc     *dashboard.Service
}

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.logOutput == nil {
		app.logOutput = os.Stdout
	}
	app.version = cmp.Or(app.version, "dev")
	return app, nil
}

// bootstrap builds the logger, credential store and dashboard service.
// The caller must call close.
func (a *application) bootstrap() (*components, error) {
	cfg := a.config

	logger := slog.New(slog.NewJSONHandler(a.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	store, err := credentials.Open(cfg.Credentials.Driver, cfg.Credentials.Path)
	if err != nil {
		return nil, fmt.Errorf("open credentials store: %w", err)
	}

	svc := dashboard.NewService(store, dashboard.BrewfatherSource(cfg.Brewfather.Options(m)), logger, m)

	return &components{cfg: cfg, logger: logger, metrics: m, store: store, svc: svc}, nil
}

func (c *components) close() {
	if err := c.store.Close(); err != nil {
		c.logger.Warn("close credentials store", slog.String("error", err.Error()))
	}
}
