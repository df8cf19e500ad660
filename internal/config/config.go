// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds runtime settings for the server.
type Config struct {
	AppPort       string
	DBDriver      string
	DatabaseDSN   string
	BcryptCost    int
	SessionTTL    time.Duration
	SessionMax    int
	SessionSweep  string
	RabbitMQURL   string
	AuthRateLimit float64
	AuthRateBurst int
	AuthRateIdle  time.Duration
	AuthRateMax   int
	LogLevel      string
	LogFormat     string
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_DSN", "medreminder.db")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("SESSION_MAX", 10000)
	v.SetDefault("SESSION_SWEEP", "@every 1m")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("AUTH_RATE_LIMIT", 5.0)
	v.SetDefault("AUTH_RATE_BURST", 10)
	v.SetDefault("AUTH_RATE_IDLE", "10m")
	v.SetDefault("AUTH_RATE_MAX_CLIENTS", 10000)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// Load reads .env (when present) and the process environment.
func Load() Config {
	_ = godotenv.Load()

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv() // Load environment variables
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) Config {
	return Config{
		AppPort:       v.GetString("APP_PORT"),
		DBDriver:      v.GetString("DB_DRIVER"),
		DatabaseDSN:   v.GetString("DATABASE_DSN"),
		BcryptCost:    v.GetInt("BCRYPT_COST"),
		SessionTTL:    v.GetDuration("SESSION_TTL"),
		SessionMax:    v.GetInt("SESSION_MAX"),
		SessionSweep:  v.GetString("SESSION_SWEEP"),
		RabbitMQURL:   v.GetString("RABBITMQ_URL"),
		AuthRateLimit: v.GetFloat64("AUTH_RATE_LIMIT"),
		AuthRateBurst: v.GetInt("AUTH_RATE_BURST"),
		AuthRateIdle:  v.GetDuration("AUTH_RATE_IDLE"),
		AuthRateMax:   v.GetInt("AUTH_RATE_MAX_CLIENTS"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		LogFormat:     v.GetString("LOG_FORMAT"),
	}
}
