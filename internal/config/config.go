// Package config provides centralized configuration management for csv2cypher.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Convert ConvertConfig
	Server  ServerConfig
	History HistoryConfig
	Logging LoggingConfig
}

// ConvertConfig holds conversion engine settings.
type ConvertConfig struct {
	// OutputDir is where generated .cypher files are written (default: output)
	OutputDir string `env:"CONVERT_OUTPUT_DIR" default:"output"`

	// InputDir is scanned for knowledge point / prerequisite pairs (default: .)
	InputDir string `env:"CONVERT_INPUT_DIR" default:"."`

	// ConfidenceThreshold is the detector confidence at which the detected
	// encoding is used without probing candidates (default: 0.7)
	ConfidenceThreshold float64 `env:"ENCODING_CONFIDENCE_THRESHOLD" default:"0.7"`

	// Candidates is the ordered, comma-separated list of fallback encodings
	Candidates []string `env:"ENCODING_CANDIDATES" default:"utf-8,big5,gbk,gb2312,cp950"`

	// StrictEscape escapes backslashes before quotes (default: false)
	StrictEscape bool `env:"CYPHER_STRICT_ESCAPE" default:"false"`

	// AliasFile is an optional YAML file of additional header aliases
	AliasFile string `env:"FIELD_ALIAS_FILE"`

	// MaxFileSize is the maximum accepted input size in bytes (default: 100MB)
	MaxFileSize int64 `env:"CONVERT_MAX_FILE_SIZE" default:"104857600"`

	// Timeout bounds a single pair conversion (default: 2m)
	Timeout time.Duration `env:"CONVERT_TIMEOUT" default:"2m"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// MaxConcurrent is the number of conversions served at once (default: 4)
	MaxConcurrent int `env:"SERVER_MAX_CONCURRENT" default:"4"`

	// TrustedProxies are CIDRs whose X-Real-IP / X-Forwarded-For headers are honored
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// APIKeys enables X-API-Key authentication on /api routes when non-empty
	APIKeys []string `env:"API_KEYS"`
}

// HistoryConfig holds the optional conversion history database settings.
// History is disabled when URL is empty.
type HistoryConfig struct {
	// URL is the PostgreSQL connection string.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections to keep open (default: 0)
	MinConns int `env:"DB_MIN_CONNS" default:"0"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// Enabled reports whether a history database is configured.
func (c *HistoryConfig) Enabled() bool {
	return c.URL != ""
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`

	// File redirects logs to a rotating file when set
	File string `env:"LOG_FILE"`

	// MaxSizeMB is the size at which the log file is rotated (default: 10)
	MaxSizeMB int `env:"LOG_MAX_SIZE_MB" default:"10"`

	// MaxBackups is the number of rotated files kept (default: 3)
	MaxBackups int `env:"LOG_MAX_BACKUPS" default:"3"`

	// MaxAgeDays is how long rotated files are kept (default: 28)
	MaxAgeDays int `env:"LOG_MAX_AGE_DAYS" default:"28"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
