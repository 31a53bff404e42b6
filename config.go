package sitebuilder

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"

	"github.com/eringen/sitebuilder/logger"
)

// Config holds all configuration for a sitebuilder server.
// Values come from an optional config file, then the environment, then defaults.
type Config struct {
	Addr           string `mapstructure:"addr" env:"SITEBUILDER_ADDR"`           // Listen address (default ":3000")
	BaseURL        string `mapstructure:"base_url" env:"BASE_URL"`               // Canonical URL (default "http://localhost:3000")
	DatabaseDriver string `mapstructure:"database_driver" env:"DATABASE_DRIVER"` // "sqlite" (default) or "postgres"
	DatabaseURL    string `mapstructure:"database_url" env:"DATABASE_URL"`       // SQLite path or Postgres DSN (default "data/sitebuilder.db")

	JWTSecret     string        `mapstructure:"jwt_secret" env:"JWT_SECRET"`         // Required: bearer token signing key
	TokenTTL      time.Duration `mapstructure:"token_ttl" env:"TOKEN_TTL"`           // Token lifetime (default 1h)
	SessionSecret string        `mapstructure:"session_secret" env:"SESSION_SECRET"` // Required: cookie session key
	CookieSecure  bool          `mapstructure:"cookie_secure" env:"COOKIE_SECURE"`   // Set true for HTTPS

	StaticDir   string   `mapstructure:"static_dir" env:"STATIC_DIR"`                      // SPA bundle (default "web/dist")
	UploadDir   string   `mapstructure:"upload_dir" env:"UPLOAD_DIR"`                      // Portfolio uploads (default "data/uploads")
	CORSOrigins []string `mapstructure:"cors_origins" env:"CORS_ORIGINS" envSeparator:","` // default ["*"]

	TemplateCacheTTL    time.Duration `mapstructure:"template_cache_ttl" env:"TEMPLATE_CACHE_TTL"`       // default 5m
	LoginMaxAttempts    int           `mapstructure:"login_max_attempts" env:"LOGIN_MAX_ATTEMPTS"`       // default 5
	LoginWindow         time.Duration `mapstructure:"login_window" env:"LOGIN_WINDOW"`                   // default 1m
	SubmissionRateLimit int           `mapstructure:"submission_rate_limit" env:"SUBMISSION_RATE_LIMIT"` // per IP per minute, default 30, <0 disables

	LogLevel    string `mapstructure:"log_level" env:"LOG_LEVEL"`       // default "info"
	SeedCatalog *bool  `mapstructure:"seed_catalog" env:"SEED_CATALOG"` // default true

	DisableAnalytics   bool          `mapstructure:"disable_analytics" env:"DISABLE_ANALYTICS"`     // stop recording page views
	AnalyticsRetention time.Duration `mapstructure:"analytics_retention" env:"ANALYTICS_RETENTION"` // default 8760h (365 days)
}

// LoadConfig reads path (if non-empty) with viper, overlays environment
// variables and fills defaults. It does not validate.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path != "" {
		v := viper.New()
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := v.Unmarshal(&cfg); err != nil {
			return Config{}, fmt.Errorf("decode config %s: %w", path, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:3000"
	}
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
	if c.DatabaseDriver == "" {
		c.DatabaseDriver = DriverSQLite
	}
	if c.DatabaseURL == "" && c.DatabaseDriver == DriverSQLite {
		c.DatabaseURL = "data/sitebuilder.db"
	}
	if c.TokenTTL == 0 {
		c.TokenTTL = time.Hour
	}
	if c.StaticDir == "" {
		c.StaticDir = "web/dist"
	}
	if c.UploadDir == "" {
		c.UploadDir = "data/uploads"
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"*"}
	}
	if c.TemplateCacheTTL == 0 {
		c.TemplateCacheTTL = 5 * time.Minute
	}
	if c.LoginMaxAttempts == 0 {
		c.LoginMaxAttempts = 5
	}
	if c.LoginWindow == 0 {
		c.LoginWindow = time.Minute
	}
	if c.SubmissionRateLimit == 0 {
		c.SubmissionRateLimit = 30
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.AnalyticsRetention == 0 {
		c.AnalyticsRetention = 365 * 24 * time.Hour
	}
	if c.SeedCatalog == nil {
		seed := true
		c.SeedCatalog = &seed
	}
}

// Validate reports missing required settings.
func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required"))
	}
	switch c.DatabaseDriver {
	case DriverSQLite, DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	return errors.Join(errs...)
}

func (c Config) seedCatalog() bool {
	return c.SeedCatalog == nil || *c.SeedCatalog
}

// Option configures additional App behavior.
type Option func(*App)

// WithLogger replaces the logger built from Config.LogLevel.
func WithLogger(l logger.Logger) Option {
	return func(a *App) {
		a.Log = l
	}
}

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithClock overrides time.Now, used for timestamps and token expiry.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}
