package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Default secrets are placeholders for local development only; Load rejects
// them outside development mode.
// Development-only signing secrets. The two kinds must never share a secret,
// even in development, or an access token would verify as a refresh token.
const (
	devAccessSecretPlaceholder  = "dev-only-access-token-secret-change-me"
	devRefreshSecretPlaceholder = "dev-only-refresh-token-secret-change-me"
)

// minSecretLength is the minimum length accepted for a signing secret outside
// development mode.
const minSecretLength = 32

// Config holds all configuration for the account API.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"API_PORT" envDefault:"8080"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"account"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"account_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"account_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Token signing. The two secrets are independent so that an access-token
	// secret compromise cannot forge refresh tokens and vice versa.
	AccessTokenSecret  string        `env:"API_ACCESS_TOKEN_SECRET" envDefault:"dev-only-access-token-secret-change-me"`
	RefreshTokenSecret string        `env:"API_REFRESH_TOKEN_SECRET" envDefault:"dev-only-refresh-token-secret-change-me"`
	AccessTokenTTL     time.Duration `env:"API_ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL    time.Duration `env:"API_REFRESH_TOKEN_TTL" envDefault:"168h"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}
	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		return nil, fmt.Errorf("token lifetimes must be positive")
	}

	// In non-development environments, require explicitly set, strong, and
	// distinct signing secrets.
	if cfg.Environment != "development" {
		for name, secret := range map[string]string{
			"API_ACCESS_TOKEN_SECRET":  cfg.AccessTokenSecret,
			"API_REFRESH_TOKEN_SECRET": cfg.RefreshTokenSecret,
		} {
			if secret == devAccessSecretPlaceholder || secret == devRefreshSecretPlaceholder {
				return nil, fmt.Errorf("%s must be explicitly set via environment variable in %q mode", name, cfg.Environment)
			}
			if len(secret) < minSecretLength {
				return nil, fmt.Errorf("%s must be at least %d characters long, got %d", name, minSecretLength, len(secret))
			}
		}
		if cfg.AccessTokenSecret == cfg.RefreshTokenSecret {
			return nil, fmt.Errorf("API_ACCESS_TOKEN_SECRET and API_REFRESH_TOKEN_SECRET must differ")
		}
	}

	return cfg, nil
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPass, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSL,
	)
}
