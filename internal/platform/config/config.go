// Package config loads service configuration from the environment and an
// optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration. Empty connection URLs disable the
// corresponding backend and the server falls back to in-memory stores.
type Config struct {
	Addr        string `mapstructure:"RIDELINK_ADDR"`
	Environment string `mapstructure:"APP_ENV"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	// AdminHandle is the single registry administrator allowed to change KYC status.
	AdminHandle string `mapstructure:"ADMIN_HANDLE"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// MigrateOnStart applies embedded migrations before serving.
	MigrateOnStart bool `mapstructure:"MIGRATE_ON_START"`

	RedisURL string `mapstructure:"REDIS_URL"`

	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic   string `mapstructure:"KAFKA_TOPIC"`

	MQTTBroker      string `mapstructure:"MQTT_BROKER"`
	MQTTClientID    string `mapstructure:"MQTT_CLIENT_ID"`
	MQTTUsername    string `mapstructure:"MQTT_USERNAME"`
	MQTTPassword    string `mapstructure:"MQTT_PASSWORD"`
	MQTTTopicPrefix string `mapstructure:"MQTT_TOPIC_PREFIX"`

	JWTSigningKey string `mapstructure:"JWT_SIGNING_KEY"`
	JWTIssuer     string `mapstructure:"JWT_ISSUER"`
	TokenTTL      string `mapstructure:"TOKEN_TTL"`

	// SendRateRPS and SendRateBurst bound message sends per caller handle.
	SendRateRPS   float64 `mapstructure:"SEND_RATE_RPS"`
	SendRateBurst int     `mapstructure:"SEND_RATE_BURST"`

	// EventBuffer > 0 makes event delivery asynchronous with that buffer size.
	EventBuffer int `mapstructure:"EVENT_BUFFER"`

	RequestTimeout string `mapstructure:"REQUEST_TIMEOUT"`
}

const devSigningKey = "dev-secret-key-change-in-production"

// Load reads .env (if present), then builds and validates Config from the environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // missing .env is fine

	v.AutomaticEnv()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("RIDELINK_ADDR", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ADMIN_HANDLE", "admin")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("MIGRATE_ON_START", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "ridelink.events")
	v.SetDefault("MQTT_BROKER", "")
	v.SetDefault("MQTT_CLIENT_ID", "ridelink")
	v.SetDefault("MQTT_USERNAME", "")
	v.SetDefault("MQTT_PASSWORD", "")
	v.SetDefault("MQTT_TOPIC_PREFIX", "ridelink")
	v.SetDefault("JWT_SIGNING_KEY", devSigningKey)
	v.SetDefault("JWT_ISSUER", "ridelink")
	v.SetDefault("TOKEN_TTL", "15m")
	v.SetDefault("SEND_RATE_RPS", 5.0)
	v.SetDefault("SEND_RATE_BURST", 10)
	v.SetDefault("EVENT_BUFFER", 0)
	v.SetDefault("REQUEST_TIMEOUT", "10s")
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return errors.New("config: RIDELINK_ADDR must be set")
	}
	if strings.TrimSpace(c.AdminHandle) == "" {
		return errors.New("config: ADMIN_HANDLE must be set")
	}
	if c.IsProduction() && c.JWTSigningKey == devSigningKey {
		return errors.New("config: JWT_SIGNING_KEY must be overridden when APP_ENV=production")
	}
	if c.SendRateRPS < 0 || c.SendRateBurst < 0 {
		return errors.New("config: SEND_RATE_RPS and SEND_RATE_BURST must not be negative")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// TokenLifetime parses TokenTTL. Returns 15m if unset or invalid.
func (c *Config) TokenLifetime() time.Duration {
	return parseDuration(c.TokenTTL, 15*time.Minute)
}

// RequestTimeoutDuration parses RequestTimeout. Returns 10s if unset or invalid.
func (c *Config) RequestTimeoutDuration() time.Duration {
	return parseDuration(c.RequestTimeout, 10*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
