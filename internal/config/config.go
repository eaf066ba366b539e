package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/conectahub/intranet-api/internal/constants"
)

// EnvPrefix namespaces every variable, e.g. CONECTAHUB_PORT.
const EnvPrefix = "CONECTAHUB"

// Completion policies
const (
	CompletionPolicyAny      = "any"
	CompletionPolicyAssignee = "assignee"
)

// Backend names
const (
	KVBackendMemory = "memory"
	KVBackendRedis  = "redis"

	SessionBackendMemstore = "memstore"
	SessionBackendCookie   = "cookie"
	SessionBackendRedis    = "redis"
)

type Config struct {
	Port      string `envconfig:"PORT" default:"8080"`
	GinMode   string `envconfig:"GIN_MODE" default:"debug"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	StorageMode string `envconfig:"STORAGE_MODE" default:"local"`
	KVBackend   string `envconfig:"KV_BACKEND" default:"memory"`
	RedisURL    string `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	RedisPrefix string `envconfig:"REDIS_PREFIX" default:"conectahub"`

	DBDriver   string `envconfig:"DB_DRIVER" default:"postgres"`
	DBDSN      string `envconfig:"DB_DSN"`
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"conectahub"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"conectahub"`
	DBName     string `envconfig:"DB_NAME" default:"conectahub"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBPath     string `envconfig:"DB_PATH" default:"conectahub.db"`

	DBMaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"20"`
	DBMaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`
	DBConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"1h"`
	DBConnMaxIdleTime time.Duration `envconfig:"DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SessionBackend string        `envconfig:"SESSION_BACKEND" default:"memstore"`
	SessionSecret  string        `envconfig:"SESSION_SECRET"`
	SessionMaxAge  time.Duration `envconfig:"SESSION_MAX_AGE" default:"168h"`

	CompletionPolicy string `envconfig:"COMPLETION_POLICY" default:"any"`
	AdminEmail       string `envconfig:"ADMIN_EMAIL" default:"admin@conectahub.com"`
	AdminPassword    string `envconfig:"ADMIN_PASSWORD" default:"admin123"`
	SeedExamples     bool   `envconfig:"SEED_EXAMPLES" default:"false"`
	BcryptCost       int    `envconfig:"BCRYPT_COST" default:"10"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects unknown backend and policy names.
func (c *Config) Validate() error {
	checks := []struct {
		name    string
		value   string
		allowed []string
	}{
		{"STORAGE_MODE", c.StorageMode, []string{constants.StorageModeLocal, constants.StorageModeRemote}},
		{"KV_BACKEND", c.KVBackend, []string{KVBackendMemory, KVBackendRedis}},
		{"DB_DRIVER", c.DBDriver, []string{"postgres", "mysql", "sqlite"}},
		{"SESSION_BACKEND", c.SessionBackend, []string{SessionBackendMemstore, SessionBackendCookie, SessionBackendRedis}},
		{"COMPLETION_POLICY", c.CompletionPolicy, []string{CompletionPolicyAny, CompletionPolicyAssignee}},
	}
	for _, check := range checks {
		if !contains(check.allowed, check.value) {
			return fmt.Errorf("%s_%s: unsupported value %q (want one of %s)",
				EnvPrefix, check.name, check.value, strings.Join(check.allowed, ", "))
		}
	}
	return nil
}

// DSN returns the explicit DSN or builds one for the configured driver.
func (c *Config) DSN() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	switch c.DBDriver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
	case "sqlite":
		return c.DBPath
	default:
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
	}
}

func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func contains(values []string, v string) bool {
	for _, allowed := range values {
		if allowed == v {
			return true
		}
	}
	return false
}
