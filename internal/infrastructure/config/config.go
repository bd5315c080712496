// Package config provides centralized configuration management
// using Viper for configuration loading and validation
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment override (PANTRY_API_AUTH_BASE_URL...)
const EnvPrefix = "PANTRY"

// Config holds all application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	API        APIConfig        `mapstructure:"api"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Search     SearchConfig     `mapstructure:"search"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Stub       StubConfig       `mapstructure:"stub"`
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
}

// APIConfig contains the remote API endpoints and client behaviour
type APIConfig struct {
	AuthBaseURL    string        `mapstructure:"auth_base_url"`
	RecipesBaseURL string        `mapstructure:"recipes_base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	RateLimit      float64       `mapstructure:"rate_limit"`
	RateBurst      int           `mapstructure:"rate_burst"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// StorageConfig selects where client state is persisted
type StorageConfig struct {
	Driver     string `mapstructure:"driver"` // memory, sqlite or redis
	SQLitePath string `mapstructure:"sqlite_path"`
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Addrs        []string      `mapstructure:"addrs"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolSize     int           `mapstructure:"pool_size"`
}

// SearchConfig contains recipe search rules
type SearchConfig struct {
	MinIngredients int `mapstructure:"min_ingredients"`
}

// MonitoringConfig contains monitoring configuration
type MonitoringConfig struct {
	EnableMetrics   bool    `mapstructure:"enable_metrics"`
	MetricsAddr     string  `mapstructure:"metrics_addr"`
	EnableTracing   bool    `mapstructure:"enable_tracing"`
	OTLPEndpoint    string  `mapstructure:"otlp_endpoint"`
	ServiceName     string  `mapstructure:"service_name"`
	TraceSampleRate float64 `mapstructure:"trace_sample_rate"`
}

// StubConfig configures the local stub backend
type StubConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	TokenTTL       time.Duration `mapstructure:"token_ttl"`
	SigningKey     string        `mapstructure:"signing_key"`
	RecipesPerCall int           `mapstructure:"recipes_per_call"`
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	v, err := newViper(configPath)
	if err != nil {
		return nil, err
	}
	return decode(v)
}

func newViper(configPath string) (*viper.Viper, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("pantry")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.config/pantry")
	}

	// Enable environment variable override
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist, we have defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return v, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Pantry")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "console")

	// API defaults
	v.SetDefault("api.auth_base_url", "http://localhost:8787/api/auth")
	v.SetDefault("api.recipes_base_url", "http://localhost:8787/api/recipes")
	v.SetDefault("api.timeout", "60s")
	v.SetDefault("api.rate_limit", 2.0)
	v.SetDefault("api.rate_burst", 4)
	v.SetDefault("api.user_agent", "pantry/1.0")

	// Storage defaults
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.sqlite_path", "pantry.db")

	// Redis defaults
	v.SetDefault("redis.addrs", []string{"localhost:6379"})
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "pantry:")
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")
	v.SetDefault("redis.pool_size", 10)

	// Search defaults
	v.SetDefault("search.min_ingredients", 2)

	// Monitoring defaults
	v.SetDefault("monitoring.enable_metrics", false)
	v.SetDefault("monitoring.metrics_addr", ":9464")
	v.SetDefault("monitoring.enable_tracing", false)
	v.SetDefault("monitoring.service_name", "pantry")
	v.SetDefault("monitoring.trace_sample_rate", 1.0)

	// Stub backend defaults
	v.SetDefault("stub.host", "127.0.0.1")
	v.SetDefault("stub.port", 8787)
	v.SetDefault("stub.token_ttl", "24h")
	v.SetDefault("stub.signing_key", "pantry-dev-signing-key")
	v.SetDefault("stub.recipes_per_call", 2)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate required fields
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}

	for key, raw := range map[string]string{
		"api.auth_base_url":    c.API.AuthBaseURL,
		"api.recipes_base_url": c.API.RecipesBaseURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL", key)
		}
	}

	switch c.Storage.Driver {
	case "memory":
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("storage.sqlite_path is required for the sqlite driver")
		}
	case "redis":
		if len(c.Redis.Addrs) == 0 {
			return fmt.Errorf("redis.addrs is required for the redis driver")
		}
	default:
		return fmt.Errorf("storage.driver must be one of memory, sqlite, redis")
	}

	if c.Search.MinIngredients < 1 {
		return fmt.Errorf("search.min_ingredients must be at least 1")
	}

	if c.API.RateLimit < 0 {
		return fmt.Errorf("api.rate_limit must not be negative")
	}

	// Validate port ranges
	if c.Stub.Port < 1 || c.Stub.Port > 65535 {
		return fmt.Errorf("stub.port must be between 1 and 65535")
	}

	return nil
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// StubAddr returns the listen address of the stub backend
func (c *Config) StubAddr() string {
	return fmt.Sprintf("%s:%d", c.Stub.Host, c.Stub.Port)
}
