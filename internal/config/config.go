package config

import (
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
)

// SupportedDrivers lists the accepted DB_DRIVER values.
var SupportedDrivers = []string{"sqlite3", "sqlite", "postgres", "pgx"}

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Blog     BlogConfig
	Session  SessionConfig
	Admin    AdminConfig
	OIDC     OIDCConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" envDefault:"8080"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Driver string `env:"DB_DRIVER" envDefault:"sqlite3"`
	DSN    string `env:"DB_DSN" envDefault:"data/yatube.db"`
}

// BlogConfig holds site-wide settings.
type BlogConfig struct {
	PageSize int    `env:"BLOG_PAGE_SIZE" envDefault:"10"`
	SiteName string `env:"BLOG_SITE_NAME" envDefault:"Yatube"`
}

// SessionConfig holds login session settings.
type SessionConfig struct {
	Secret   string        `env:"SESSION_SECRET"`
	Duration time.Duration `env:"SESSION_DURATION" envDefault:"336h"`
	Secure   bool          `env:"SESSION_SECURE" envDefault:"false"`
}

// AdminConfig holds settings for the admin API.
type AdminConfig struct {
	BootstrapAPIKey string `env:"BOOTSTRAP_API_KEY"`
}

// OIDCConfig holds OIDC authentication configuration.
type OIDCConfig struct {
	Enabled        bool   `env:"OIDC_ENABLED" envDefault:"false"`
	IssuerURL      string `env:"OIDC_ISSUER_URL"`
	ClientID       string `env:"OIDC_CLIENT_ID"`
	ClientSecret   string `env:"OIDC_CLIENT_SECRET"`
	RedirectURL    string `env:"OIDC_REDIRECT_URL"`
	Scopes         string `env:"OIDC_SCOPES" envDefault:"openid,email,profile"`
	AllowedDomains string `env:"OIDC_ALLOWED_DOMAINS"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level       string `env:"LOG_LEVEL" envDefault:"info"`
	Development bool   `env:"LOG_DEVELOPMENT" envDefault:"false"`
}

// GetScopes returns the OIDC scopes as a slice.
func (c *OIDCConfig) GetScopes() []string {
	if c.Scopes == "" {
		return []string{"openid", "email", "profile"}
	}
	scopes := strings.Split(c.Scopes, ",")
	for i := range scopes {
		scopes[i] = strings.TrimSpace(scopes[i])
	}
	return scopes
}

// GetAllowedDomains returns the allowed domains as a slice.
func (c *OIDCConfig) GetAllowedDomains() []string {
	if c.AllowedDomains == "" {
		return nil
	}
	domains := strings.Split(c.AllowedDomains, ",")
	for i := range domains {
		domains[i] = strings.TrimSpace(domains[i])
	}
	return domains
}

// SecretBytes returns the session secret as bytes.
func (c *SessionConfig) SecretBytes() ([]byte, error) {
	if c.Secret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}
	// Try to decode as hex first (64 hex chars = 32 bytes)
	if len(c.Secret) == 64 {
		decoded, err := hex.DecodeString(c.Secret)
		if err == nil {
			return decoded, nil
		}
	}
	if len(c.Secret) < 32 {
		return nil, fmt.Errorf("SESSION_SECRET must be at least 32 bytes (or 64 hex characters)")
	}
	return []byte(c.Secret), nil
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(&cfg.Server); err != nil {
		return nil, fmt.Errorf("parsing server config: %w", err)
	}
	if err := env.Parse(&cfg.Database); err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	if err := env.Parse(&cfg.Blog); err != nil {
		return nil, fmt.Errorf("parsing blog config: %w", err)
	}
	if err := env.Parse(&cfg.Session); err != nil {
		return nil, fmt.Errorf("parsing session config: %w", err)
	}
	if err := env.Parse(&cfg.Admin); err != nil {
		return nil, fmt.Errorf("parsing admin config: %w", err)
	}
	if err := env.Parse(&cfg.OIDC); err != nil {
		return nil, fmt.Errorf("parsing oidc config: %w", err)
	}
	if err := env.Parse(&cfg.Log); err != nil {
		return nil, fmt.Errorf("parsing log config: %w", err)
	}

	return cfg, nil
}

// Addr returns the server address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ValidateDatabase checks only the settings needed to open the database,
// for commands that never serve HTTP.
func (c *Config) ValidateDatabase() error {
	if !slices.Contains(SupportedDrivers, c.Database.Driver) {
		return fmt.Errorf("DB_DRIVER %q is not supported (want one of %s)", c.Database.Driver, strings.Join(SupportedDrivers, ", "))
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	return nil
}

// Validate checks if the configuration is valid for serving.
func (c *Config) Validate() error {
	if err := c.ValidateDatabase(); err != nil {
		return err
	}
	if c.Blog.PageSize < 1 {
		return fmt.Errorf("BLOG_PAGE_SIZE must be at least 1, got %d", c.Blog.PageSize)
	}
	if _, err := c.Session.SecretBytes(); err != nil {
		return err
	}
	if c.Session.Duration <= 0 {
		return fmt.Errorf("SESSION_DURATION must be positive")
	}

	// Validate OIDC config when enabled
	if c.OIDC.Enabled {
		if c.OIDC.IssuerURL == "" {
			return fmt.Errorf("OIDC_ISSUER_URL is required when OIDC is enabled")
		}
		if c.OIDC.ClientID == "" {
			return fmt.Errorf("OIDC_CLIENT_ID is required when OIDC is enabled")
		}
		if c.OIDC.ClientSecret == "" {
			return fmt.Errorf("OIDC_CLIENT_SECRET is required when OIDC is enabled")
		}
		if c.OIDC.RedirectURL == "" {
			return fmt.Errorf("OIDC_REDIRECT_URL is required when OIDC is enabled")
		}
	}

	return nil
}
