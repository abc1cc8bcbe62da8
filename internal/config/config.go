// Package config provides centralized configuration management for the ETL.
// It loads configuration from an optional YAML file and environment variables
// with sensible defaults, and validates all settings on startup to fail fast on
// misconfiguration.
package config

import (
	"net"
	"net/url"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Sources  SourcesConfig  `yaml:"sources"`
	Report   ReportConfig   `yaml:"report"`
	Run      RunConfig      `yaml:"run"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig holds the relational store connection settings.
type DatabaseConfig struct {
	// URL is a full PostgreSQL connection string. When set it takes precedence
	// over the individual Host/Port/User/Name settings.
	URL string `yaml:"url" env:"DATABASE_URL" envAlt:"DB_URL"`

	// Host is the database server host (default: localhost)
	Host string `yaml:"host" env:"DB_HOST" default:"localhost"`

	// Port is the database server port (default: 5432)
	Port int `yaml:"port" env:"DB_PORT" default:"5432"`

	// User is the database role (default: postgres)
	User string `yaml:"user" env:"DB_USER" default:"postgres"`

	// Password is the credential for User. It is read from DB_PASSWORD or from
	// the file named by DB_PASSWORD_FILE (docker/k8s secrets) and never logged.
	Password string `yaml:"-" env:"DB_PASSWORD" secret:"DB_PASSWORD_FILE"`

	// Name is the database name (default: fleximart)
	Name string `yaml:"name" env:"DB_NAME" default:"fleximart"`

	// SSLMode is the libpq sslmode parameter (default: disable)
	SSLMode string `yaml:"sslmode" env:"DB_SSLMODE" default:"disable"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `yaml:"max_conns" env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections to keep open (default: 0)
	MinConns int `yaml:"min_conns" env:"DB_MIN_CONNS" default:"0"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// ConnectTimeout bounds the initial connect and ping (default: 10s)
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"DB_CONNECT_TIMEOUT" default:"10s"`
}

// SourcesConfig holds the paths of the three raw extracts.
type SourcesConfig struct {
	Customers string `yaml:"customers" env:"SOURCE_CUSTOMERS" default:"data/customers_raw.csv"`
	Products  string `yaml:"products" env:"SOURCE_PRODUCTS" default:"data/products_raw.csv"`
	Sales     string `yaml:"sales" env:"SOURCE_SALES" default:"data/sales_raw.csv"`
}

// ReportConfig holds data-quality report settings.
type ReportConfig struct {
	// Path is where the key: value report is written (default: data_quality_report.txt)
	Path string `yaml:"path" env:"REPORT_PATH" default:"data_quality_report.txt"`
}

// RunConfig holds pipeline execution settings.
type RunConfig struct {
	// Timeout bounds a single pipeline run including both load phases (default: 10m)
	Timeout time.Duration `yaml:"timeout" env:"RUN_TIMEOUT" default:"10m"`

	// MaxWaitTime is how long a triggered run waits for the previous one (default: 5s)
	MaxWaitTime time.Duration `yaml:"max_wait_time" env:"RUN_MAX_WAIT_TIME" default:"5s"`
}

// ServerConfig holds HTTP server settings for serve mode.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `yaml:"host" env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `yaml:"port" env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" default:"15s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// X-Real-IP / X-Forwarded-For headers are honoured
	TrustedProxies []string `yaml:"trusted_proxies" env:"SERVER_TRUSTED_PROXIES"`

	// APIKeys guard POST /api/runs. Empty leaves run triggering open.
	APIKeys []string `yaml:"-" env:"SERVER_API_KEYS" secret:"SERVER_API_KEYS_FILE"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `yaml:"level" env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `yaml:"format" env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ConnString returns the PostgreSQL connection string for the store.
// The password is URL-escaped so secrets containing reserved characters work.
func (c *DatabaseConfig) ConnString() string {
	if c.URL != "" {
		return c.URL
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Name,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	} else {
		u.User = url.User(c.User)
	}

	q := url.Values{}
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	u.RawQuery = q.Encode()

	return u.String()
}
