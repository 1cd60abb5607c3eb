package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"
)

const (
	EnvAppEnv                 = "PETRESCUE_APP_ENV"
	EnvLogLevel               = "PETRESCUE_LOG_LEVEL"
	EnvNotifierBaseURL        = "PETRESCUE_NOTIFIER_BASE_URL"
	EnvNotifierPollInterval   = "PETRESCUE_NOTIFIER_POLL_INTERVAL"
	EnvNotifierCSRFToken      = "PETRESCUE_NOTIFIER_CSRF_TOKEN"
	EnvNotifierSessionID      = "PETRESCUE_NOTIFIER_SESSION_ID"
	EnvDevServerPort          = "PETRESCUE_DEVSERVER_PORT"
	EnvDevServerListLimit     = "PETRESCUE_DEVSERVER_LIST_LIMIT"
	EnvDevServerRetention     = "PETRESCUE_DEVSERVER_RETENTION_DAYS"
	EnvDBDriver               = "PETRESCUE_DB_DRIVER"
	EnvDBDSN                  = "PETRESCUE_DB_DSN"
	EnvDevServerSeedOnStart   = "PETRESCUE_DEVSERVER_SEED"
	EnvNotifierMetricsAddr    = "PETRESCUE_NOTIFIER_METRICS_ADDR"
	EnvNotifierRequestTimeout = "PETRESCUE_NOTIFIER_REQUEST_TIMEOUT"
)

type Config struct {
	App       AppConfig
	Notifier  NotifierConfig
	DevServer DevServerConfig
	DB        DBConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Notifier.validate(); err != nil {
		return nil, err
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PETRESCUE_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"PETRESCUE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PETRESCUE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// NotifierConfig drives the admin notification synchronizer.
type NotifierConfig struct {
	BaseURL        string        `envconfig:"PETRESCUE_NOTIFIER_BASE_URL" default:"http://localhost:8000"`
	PollInterval   time.Duration `envconfig:"PETRESCUE_NOTIFIER_POLL_INTERVAL" default:"30s"`
	RequestTimeout time.Duration `envconfig:"PETRESCUE_NOTIFIER_REQUEST_TIMEOUT" default:"10s"`
	// CSRFToken pins the anti-forgery token; when empty the csrftoken cookie is used.
	CSRFToken   string `envconfig:"PETRESCUE_NOTIFIER_CSRF_TOKEN"`
	SessionID   string `envconfig:"PETRESCUE_NOTIFIER_SESSION_ID"`
	MetricsAddr string `envconfig:"PETRESCUE_NOTIFIER_METRICS_ADDR"`
}

func (n NotifierConfig) validate() error {
	parsed, err := url.Parse(strings.TrimSpace(n.BaseURL))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", EnvNotifierBaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) url, got %q", EnvNotifierBaseURL, n.BaseURL)
	}
	if n.PollInterval <= 0 {
		return fmt.Errorf("%s must be positive", EnvNotifierPollInterval)
	}
	return nil
}

// DevServerConfig configures the local fixture notification API.
type DevServerConfig struct {
	Port            string        `envconfig:"PETRESCUE_DEVSERVER_PORT" default:"8000"`
	ListLimit       int           `envconfig:"PETRESCUE_DEVSERVER_LIST_LIMIT" default:"20"`
	RetentionDays   int           `envconfig:"PETRESCUE_DEVSERVER_RETENTION_DAYS" default:"30"`
	CleanupInterval time.Duration `envconfig:"PETRESCUE_DEVSERVER_CLEANUP_INTERVAL" default:"1h"`
	Seed            bool          `envconfig:"PETRESCUE_DEVSERVER_SEED" default:"true"`
	AutoMigrate     bool          `envconfig:"PETRESCUE_DEVSERVER_AUTO_MIGRATE" default:"true"`
}

type DBConfig struct {
	Driver string `envconfig:"PETRESCUE_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"PETRESCUE_DB_DSN" default:"file:petrescue-dev.db?_foreign_keys=on"`

	MaxOpenConns    int           `envconfig:"PETRESCUE_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"PETRESCUE_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"PETRESCUE_DB_CONN_MAX_LIFETIME" default:"1h"`
}

// IsSQLite reports whether the fixture database runs on SQLite.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

func (db DBConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(db.Driver)) {
	case DBDriverSQLite, DBDriverPostgres:
	default:
		return fmt.Errorf("%s must be %q or %q, got %q", EnvDBDriver, DBDriverSQLite, DBDriverPostgres, db.Driver)
	}
	if strings.TrimSpace(db.DSN) == "" {
		return fmt.Errorf("%s is required", EnvDBDSN)
	}
	return nil
}
