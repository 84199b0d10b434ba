package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kapu/planning-center-groups-go/internal/constants"
)

// Settings backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	PlanningCenter PlanningCenterConfig
	Defaults       DefaultsConfig
	Settings       SettingsConfig
	Redis          RedisConfig
	Postgres       PostgresConfig
	Server         ServerConfig
	Admin          AdminConfig
	Logging        LoggingConfig
}

type PlanningCenterConfig struct {
	BaseURL string
	Timeout time.Duration
}

// DefaultsConfig is the per-key fallback applied on every settings load: an
// option the store has never saved reads from here. Defaults are never
// written to the store.
type DefaultsConfig struct {
	ClientID        string
	ClientSecret    string
	DebugMode       bool
	TagFilter       string
	GroupTypeFilter string
}

type SettingsConfig struct {
	Backend string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type ServerConfig struct {
	Addr string
}

type AdminConfig struct {
	User     string
	Password string
}

// Enabled reports whether the admin settings page should be mounted.
func (a AdminConfig) Enabled() bool {
	return a.User != "" && a.Password != ""
}

type LoggingConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		PlanningCenter: PlanningCenterConfig{
			BaseURL: strings.TrimRight(getEnv("PCG_API_BASE_URL", constants.APIConfig.PlanningCenterBaseURL), "/"),
			Timeout: getEnvSeconds("PCG_HTTP_TIMEOUT_SECONDS", constants.APIConfig.DefaultTimeout),
		},
		Defaults: DefaultsConfig{
			ClientID:        getEnv("PCG_CLIENT_ID", ""),
			ClientSecret:    getEnv("PCG_CLIENT_SECRET", ""),
			DebugMode:       getEnvBool("PCG_DEBUG_MODE", false),
			TagFilter:       getEnv("PCG_TAG_FILTER", ""),
			GroupTypeFilter: getEnv("PCG_GROUP_TYPE_FILTER", ""),
		},
		Settings: SettingsConfig{
			Backend: strings.ToLower(getEnv("SETTINGS_BACKEND", BackendMemory)),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "pcg"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "pcg"),
		},
		Server: ServerConfig{
			Addr: getEnv("SERVER_ADDR", ":8080"),
		},
		Admin: AdminConfig{
			User:     getEnv("ADMIN_USER", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the process-level settings only. Missing Planning Center
// credentials are not a startup error: the directive reports them inline.
func (c *Config) Validate() error {
	if c.PlanningCenter.BaseURL == "" {
		return fmt.Errorf("PCG_API_BASE_URL is required")
	}
	if c.PlanningCenter.Timeout < 0 {
		return fmt.Errorf("PCG_HTTP_TIMEOUT_SECONDS must not be negative")
	}
	switch c.Settings.Backend {
	case BackendMemory, BackendRedis, BackendPostgres:
	default:
		return fmt.Errorf("SETTINGS_BACKEND must be one of %s, %s, %s (got %q)",
			BackendMemory, BackendRedis, BackendPostgres, c.Settings.Backend)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("SERVER_ADDR is required")
	}
	if (c.Admin.User == "") != (c.Admin.Password == "") {
		return fmt.Errorf("ADMIN_USER and ADMIN_PASSWORD must be set together")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvSeconds(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return time.Duration(intVal) * time.Second
		}
	}
	return defaultValue
}
