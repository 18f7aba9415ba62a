package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MigrationsPath  string
}

type Config struct {
	App struct {
		Port       string
		ClientName string
	}
	Store struct {
		// Backend is "memory" (default) or "postgres".
		Backend string
	}
	Postgres PostgresConfig
	Webhook struct {
		URL       string
		QueueSize int
	}
	Payment struct {
		GatewayURL string
		APIKey     string
		Currency   string
	}
	Checkout struct {
		FreeDeliveryThreshold int64
		DeliveryFee           int64
	}
}

// Load reads configuration from the environment, optionally seeded from a
// .env file. Database settings are required only for the postgres backend.
func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	cfg := &Config{}

	cfg.App.Port = envOrDefault("APP_PORT", "8080")
	cfg.App.ClientName = envOrDefault("CLIENT_NAME", "CloudKitchen")

	cfg.Store.Backend = envOrDefault("STORE_BACKEND", "memory")
	if cfg.Store.Backend != "memory" && cfg.Store.Backend != "postgres" {
		return nil, fmt.Errorf("STORE_BACKEND must be memory or postgres, got %q", cfg.Store.Backend)
	}

	if cfg.Store.Backend == "postgres" {
		for _, required := range []struct {
			key string
			dst *string
		}{
			{"DB_HOST", &cfg.Postgres.Host},
			{"DB_PORT", &cfg.Postgres.Port},
			{"DB_USER", &cfg.Postgres.User},
			{"DB_PASSWORD", &cfg.Postgres.Password},
			{"DB_NAME", &cfg.Postgres.DBName},
		} {
			*required.dst = os.Getenv(required.key)
			if *required.dst == "" {
				return nil, fmt.Errorf("%s is required for the postgres backend", required.key)
			}
		}
		cfg.Postgres.SSLMode = envOrDefault("DB_SSLMODE", "disable")
		cfg.Postgres.MigrationsPath = envOrDefault("DB_MIGRATIONS_PATH", "migrations")

		maxConns, err := envOrDefaultInt("DB_MAX_CONNS", 10)
		if err != nil {
			return nil, err
		}
		cfg.Postgres.MaxConns = int32(maxConns)

		minConns, err := envOrDefaultInt("DB_MIN_CONNS", 2)
		if err != nil {
			return nil, err
		}
		cfg.Postgres.MinConns = int32(minConns)
		cfg.Postgres.MaxConnLifetime = time.Hour
	}

	cfg.Webhook.URL = os.Getenv("WEBHOOK_URL")
	queueSize, err := envOrDefaultInt("WEBHOOK_QUEUE_SIZE", 64)
	if err != nil {
		return nil, err
	}
	cfg.Webhook.QueueSize = int(queueSize)

	cfg.Payment.GatewayURL = os.Getenv("PAYMENT_GATEWAY_URL")
	cfg.Payment.APIKey = os.Getenv("PAYMENT_API_KEY")
	cfg.Payment.Currency = envOrDefault("PAYMENT_CURRENCY", "INR")

	cfg.Checkout.FreeDeliveryThreshold, err = envOrDefaultInt("FREE_DELIVERY_THRESHOLD", 300)
	if err != nil {
		return nil, err
	}
	cfg.Checkout.DeliveryFee, err = envOrDefaultInt("DELIVERY_FEE", 50)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int64) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, raw)
	}
	return value, nil
}
