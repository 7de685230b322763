package internal

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/brewstock/internal/brewfather"
	"github.com/starford/brewstock/internal/credentials"
	"github.com/starford/brewstock/internal/metrics"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App         ApplicationConfig `yaml:"app"`
	Brewfather  BrewfatherConfig  `yaml:"brewfather"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Auth        AuthConfig        `yaml:"auth"`
	Refresh     RefreshConfig     `yaml:"refresh"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Brewfather.Validate(); err != nil {
		return fmt.Errorf("brewfather: %w", err)
	}
	if err := c.Credentials.Validate(); err != nil {
		return fmt.Errorf("credentials: %w", err)
	}
	if err := c.Refresh.Validate(); err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// BrewfatherConfig configures the Brewfather API client.
type BrewfatherConfig struct {
	BaseURL        string        `yaml:"base_url"`
	Timeout        time.Duration `yaml:"timeout"`
	PageSize       int           `yaml:"page_size"`
	BatchStatus    string        `yaml:"batch_status"`
	MaxBatchNumber int           `yaml:"max_batch_number"`
}

// Validate validates the Brewfather configuration.
func (c *BrewfatherConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required, is.URL),
		validation.Field(&c.Timeout, validation.Required, validation.Min(time.Second)),
		// The API caps list endpoints at 50 documents.
		validation.Field(&c.PageSize, validation.Required, validation.Min(1), validation.Max(50)),
		validation.Field(&c.BatchStatus, validation.Required),
		validation.Field(&c.MaxBatchNumber, validation.Required, validation.Min(1)),
	)
}

// Options returns client options for this configuration. m may be nil.
func (c *BrewfatherConfig) Options(m *metrics.Metrics) brewfather.Options {
	return brewfather.Options{
		BaseURL:        c.BaseURL,
		PageSize:       c.PageSize,
		BatchStatus:    c.BatchStatus,
		MaxBatchNumber: c.MaxBatchNumber,
		HTTPClient:     &http.Client{Timeout: c.Timeout},
		Metrics:        m,
	}
}

// CredentialsConfig selects where the Brewfather credentials are stored.
type CredentialsConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// Validate validates the credentials configuration.
func (c *CredentialsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(credentials.DriverFile, credentials.DriverSQLite)),
		validation.Field(&c.Path, validation.Required),
	)
}

// RefreshConfig controls the background refresher.
//
// Interval 0 disables periodic refreshes; the dashboard then only reloads on
// demand. NotifyThrottle limits how often clients are told about new data.
type RefreshConfig struct {
	Interval       time.Duration `yaml:"interval"`
	NotifyThrottle time.Duration `yaml:"notify_throttle"`
}

// Validate validates the refresh configuration.
func (c *RefreshConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Interval, validation.Min(time.Duration(0)),
			validation.When(c.Interval > 0, validation.Min(30*time.Second))),
		validation.Field(&c.NotifyThrottle, validation.Min(time.Duration(0))),
	)
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Validate validates the metrics configuration.
func (c *MetricsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.When(c.Enabled, validation.Required)),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Brewfather: BrewfatherConfig{
			BaseURL:        brewfather.DefaultBaseURL,
			Timeout:        brewfather.DefaultTimeout,
			PageSize:       brewfather.DefaultPageSize,
			BatchStatus:    brewfather.DefaultBatchStatus,
			MaxBatchNumber: brewfather.DefaultMaxBatchNumber,
		},
		Credentials: CredentialsConfig{
			Driver: credentials.DriverFile,
			Path:   "./data/credentials.yaml",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Refresh: RefreshConfig{
			Interval:       5 * time.Minute,
			NotifyThrottle: 2 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}
