// Package config loads settings from an optional YAML file, a .env file and
// IRPS_-prefixed environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const envPrefix = "IRPS"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Fetcher  FetcherConfig  `mapstructure:"fetcher"`
	Database DatabaseConfig `mapstructure:"database"`
	Breaker  BreakerConfig  `mapstructure:"breaker"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Address          string        `mapstructure:"address"`
	ReadTimeout      time.Duration `mapstructure:"read_timeout"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout"`
	IdleTimeout      time.Duration `mapstructure:"idle_timeout"`
	RateLimitRPS     float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst   int           `mapstructure:"rate_limit_burst"`
	BatchConcurrency int           `mapstructure:"batch_concurrency"`
}

type FetcherConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
	UserAgent    string        `mapstructure:"user_agent"`
}

// DatabaseConfig selects the store: an empty DSN means the in-memory store.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type BreakerConfig struct {
	MaxFailures uint32        `mapstructure:"max_failures"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.rate_limit_rps", 5)
	v.SetDefault("server.rate_limit_burst", 10)
	v.SetDefault("server.batch_concurrency", 10)

	v.SetDefault("fetcher.timeout", "15s")
	v.SetDefault("fetcher.dial_timeout", "5s")
	v.SetDefault("fetcher.max_body_bytes", 5*1024*1024)
	v.SetDefault("fetcher.user_agent", "")

	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")

	v.SetDefault("breaker.max_failures", 5)
	v.SetDefault("breaker.timeout", "30s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Load reads path when it is non-empty; a missing explicit file is an error.
func Load(path string) (*Config, error) {
	// .env is optional and never overrides variables already set
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	positive := map[string]time.Duration{
		"server.read_timeout":  c.Server.ReadTimeout,
		"server.write_timeout": c.Server.WriteTimeout,
		"server.idle_timeout":  c.Server.IdleTimeout,
		"fetcher.timeout":      c.Fetcher.Timeout,
		"fetcher.dial_timeout": c.Fetcher.DialTimeout,
		"breaker.timeout":      c.Breaker.Timeout,
	}
	for key, d := range positive {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", key, d))
		}
	}
	if c.Fetcher.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("fetcher.max_body_bytes must be positive, got %d", c.Fetcher.MaxBodyBytes))
	}
	if c.Server.RateLimitRPS <= 0 || c.Server.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("server.rate_limit_rps and server.rate_limit_burst must be positive"))
	}
	if c.Server.BatchConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("server.batch_concurrency must be positive, got %d", c.Server.BatchConcurrency))
	}
	if c.Server.Address == "" {
		errs = append(errs, errors.New("server.address is required"))
	}
	return errors.Join(errs...)
}
