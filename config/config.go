// Package config defines the server configuration and how it is loaded.
package config

import (
	"time"
)

// Config holds all application configuration
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080"
	Addr string `koanf:"addr"`

	// Env names the deployment environment (development/production)
	Env string `koanf:"env"`

	// LogLevel controls verbosity: debug, info, warn, error
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json
	LogFormat string `koanf:"log_format"`

	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	MaxHeaderBytes int   `koanf:"max_header_bytes"`
	MaxBodyBytes   int64 `koanf:"max_body_bytes"`

	// ReusePort sets SO_REUSEPORT on the listener
	ReusePort bool `koanf:"reuse_port"`

	// H2C serves HTTP/2 cleartext alongside HTTP/1.1 through net/http
	H2C bool `koanf:"h2c"`

	// MetricsAddr serves /metrics on a separate listener; empty disables it
	MetricsAddr string `koanf:"metrics_addr"`

	// RateLimit caps requests per second; 0 disables limiting
	RateLimit int `koanf:"rate_limit"`

	// CORSOrigins lists allowed origins; empty disables CORS headers
	CORSOrigins []string `koanf:"cors_origins"`
}

// New returns a Config populated with defaults
func New() *Config {
	return &Config{
		Addr:            ":8080",
		Env:             "development",
		LogLevel:        "info",
		LogFormat:       "text",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 15 * time.Second,
		MaxHeaderBytes:  8 << 10,
		MaxBodyBytes:    4 << 20,
		MetricsAddr:     ":9090",
	}
}

// IsProduction reports whether Env is "production"
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
