package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported storage drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// StorageConfig selects and locates the product store.
type StorageConfig struct {
	Driver        string
	MongoURI      string
	MongoDatabase string
	DSN           string // postgres DSN or sqlite file
}

// Config holds process-wide settings read once at start-up.
type Config struct {
	AppPort       string
	Storage       StorageConfig
	RabbitMQURL   string // empty disables product events
	ConsumeEvents bool
	AuthEnabled   bool
	JWTSecret     string
}

// Load reads configuration from an optional .env file and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("STORAGE_DRIVER", DriverMongo)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "products")
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_CONSUME", false)
	v.SetDefault("AUTH_ENABLED", false)
	v.SetDefault("JWT_SECRET", "change-me")
	v.AutomaticEnv()
	return v
}

// FromViper builds a Config from v and checks it.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort: v.GetString("APP_PORT"),
		Storage: StorageConfig{
			Driver:        strings.ToLower(v.GetString("STORAGE_DRIVER")),
			MongoURI:      v.GetString("MONGO_URI"),
			MongoDatabase: v.GetString("MONGO_DATABASE"),
			DSN:           v.GetString("DATABASE_DSN"),
		},
		RabbitMQURL:   v.GetString("RABBITMQ_URL"),
		ConsumeEvents: v.GetBool("RABBITMQ_CONSUME"),
		AuthEnabled:   v.GetBool("AUTH_ENABLED"),
		JWTSecret:     v.GetString("JWT_SECRET"),
	}

	switch cfg.Storage.Driver {
	case DriverMongo:
		if cfg.Storage.MongoURI == "" {
			return nil, fmt.Errorf("MONGO_URI is required for the %s driver", DriverMongo)
		}
	case DriverPostgres, DriverSQLite:
		if cfg.Storage.DSN == "" {
			return nil, fmt.Errorf("DATABASE_DSN is required for the %s driver", cfg.Storage.Driver)
		}
	case DriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q (supported: mongo, postgres, sqlite, memory)", cfg.Storage.Driver)
	}
	return cfg, nil
}
