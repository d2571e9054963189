// Package config provides configuration management for the bet slip service.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	MatchFeed MatchFeedConfig `mapstructure:"match_feed" validate:"required"`
	Wagering  WageringConfig  `mapstructure:"wagering" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Metrics   MetricsConfig   `mapstructure:"metrics" validate:"required"`
	Features  FeaturesConfig  `mapstructure:"features"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ServerConfig represents the slip API server configuration
type ServerConfig struct {
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`
}

// MatchFeedConfig represents the match feed collaborator configuration
type MatchFeedConfig struct {
	APIURL                 string  `mapstructure:"api_url" validate:"required,url"`
	StreamURL              string  `mapstructure:"stream_url" validate:"required"`
	RefreshIntervalSeconds int     `mapstructure:"refresh_interval_seconds" validate:"required,gt=0"`
	CacheTTLSeconds        int     `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	RequestTimeoutSeconds  int     `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
	RateLimit              float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
}

// WageringConfig represents the wagering endpoint configuration
type WageringConfig struct {
	APIURL                string `mapstructure:"api_url" validate:"required,url"`
	APIKey                string `mapstructure:"api_key"`
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
}

// DatabaseConfig represents receipt archive database configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name               string `mapstructure:"name"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"omitempty,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// FeaturesConfig represents feature flags
type FeaturesConfig struct {
	ReceiptArchiveEnabled bool `mapstructure:"receipt_archive_enabled"`
	LiveUpdatesEnabled    bool `mapstructure:"live_updates_enabled"`
	AutoRefreshEnabled    bool `mapstructure:"auto_refresh_enabled"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// FeedRequestTimeout returns the match feed request timeout as a duration
func (c *Config) FeedRequestTimeout() time.Duration {
	return time.Duration(c.MatchFeed.RequestTimeoutSeconds) * time.Second
}

// FeedCacheTTL returns the match list cache TTL as a duration
func (c *Config) FeedCacheTTL() time.Duration {
	return time.Duration(c.MatchFeed.CacheTTLSeconds) * time.Second
}

// WageringRequestTimeout returns the wagering request timeout as a duration
func (c *Config) WageringRequestTimeout() time.Duration {
	return time.Duration(c.Wagering.RequestTimeoutSeconds) * time.Second
}
