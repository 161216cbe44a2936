// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import "time"

// Backend names accepted by SHEET_BACKEND.
const (
	BackendXLSX     = "xlsx"
	BackendCSV      = "csv"
	BackendPostgres = "postgres"
)

// PlaceholderPrefix marks an unedited sample SHEET_ID such as "<PUT_SHEET_ID_HERE>".
const PlaceholderPrefix = "<PUT_"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Sheet    SheetConfig
	Database DatabaseConfig
	Run      RunConfig
	Server   ServerConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// SheetConfig selects the tabular source.
type SheetConfig struct {
	// ID is the workbook path (xlsx, csv) or sheet identifier (postgres)
	ID string `env:"SHEET_ID" envAlt:"SPREADSHEET_ID" required:"true"`

	// Worksheet is the tab to process (default: Orders)
	Worksheet string `env:"WORKSHEET_NAME" default:"Orders"`

	// CredentialsFile is the service account file for hosted backends (default: credentials.json)
	CredentialsFile string `env:"GOOGLE_APPLICATION_CREDENTIALS" default:"credentials.json"`

	// Backend is one of xlsx, csv, postgres (default: xlsx)
	Backend string `env:"SHEET_BACKEND" default:"xlsx"`
}

// DatabaseConfig holds database connection settings for the postgres backend.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (required for the postgres backend)
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

// RunConfig controls how runs are executed.
type RunConfig struct {
	// Timeout is the maximum duration of one run (default: 10m)
	Timeout time.Duration `env:"RUN_TIMEOUT" default:"10m"`

	// Interval repeats runs in serve mode; 0 disables the scheduler (default: 0s)
	Interval time.Duration `env:"RUN_INTERVAL" default:"0s"`

	// MaxWait is how long a run request waits for an active run to finish (default: 30s)
	MaxWait time.Duration `env:"RUN_MAX_WAIT" default:"30s"`

	// HistorySize is how many finished runs are kept in memory (default: 50)
	HistorySize int `env:"RUN_HISTORY_SIZE" default:"50"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is 0 by default because POST /api/runs waits for the run
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// SecurityConfig protects the run trigger endpoint.
type SecurityConfig struct {
	// RequireAPIKey enables X-API-Key checks on POST /api/runs (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`

	// TrustedProxies lists proxy addresses or CIDRs whose X-Real-IP and
	// X-Forwarded-For headers are believed. Empty means none.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + itoa(c.Port)
	}
	return c.Host + ":" + itoa(c.Port)
}

// itoa converts an int to string without importing strconv in this file.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}
