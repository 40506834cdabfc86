// Package config loads application configuration from environment
// variables using github.com/caarlos0/env.
package config

import (
	"os"
	"strings"
)

// AppConfig composes the application configuration:
//   - auth.go: authentication configuration
//   - database.go: database and Redis configuration
//   - http.go: HTTP server configuration
type AppConfig struct {
	// IsDev controls development-mode behavior. Set DEV=true.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Auth holds authentication configuration.
	Auth AuthConfig

	// Database configuration.
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	// HTTP server configuration.
	HTTP HTTPConfig
}

// Sanitize applies guardrails to values loaded from env. Call after
// loading configuration.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()

	// The OAuth redirect URL is the app's own callback unless the IdP
	// registration demands something else.
	if c.Auth.OAuth.RedirectURL == "" {
		c.Auth.OAuth.RedirectURL = strings.TrimSuffix(c.HTTP.BaseURL, "/") + "/auth/callback"
	}

	c.detectDevMode()
}

// detectDevMode checks NODE_ENV as a fallback for DEV.
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
