package config

import (
	"os"
	"time"
)

type Config struct {
	Server struct {
		Host         string
		Port         string
		ReadTimeout  time.Duration
		WriteTimeout time.Duration
		IdleTimeout  time.Duration
	}
	Database struct {
		Path string
	}
	Redis struct {
		URL string
	}
	Rift struct {
		// URL of the hosted identity provider; empty enables the embedded
		// local provider
		URL       string
		JWTSecret string
		JWTExpiry time.Duration
	}
	Email struct {
		Endpoint    string
		Token       string
		SenderName  string
		SenderEmail string
	}
	Payment struct {
		URL string
	}
	Exchange struct {
		URL      string
		CacheTTL time.Duration
	}
	Blob struct {
		URL   string
		Token string
	}
	LogLevel string
}

func Load() *Config {
	cfg := &Config{}

	// Server configuration
	cfg.Server.Host = getEnv("SERVER_HOST", "0.0.0.0")
	cfg.Server.Port = getEnv("SERVER_PORT", "8080")
	cfg.Server.ReadTimeout = getEnvAsDuration("SERVER_READ_TIMEOUT", "10s")
	cfg.Server.WriteTimeout = getEnvAsDuration("SERVER_WRITE_TIMEOUT", "10s")
	cfg.Server.IdleTimeout = getEnvAsDuration("SERVER_IDLE_TIMEOUT", "60s")

	// Database configuration
	cfg.Database.Path = getEnv("DATABASE_PATH", "data/sphere.db")

	// Redis configuration (optional, exchange-rate cache)
	cfg.Redis.URL = getEnv("REDIS_URL", "")

	// Rift identity provider
	cfg.Rift.URL = getEnv("RIFT_URL", "")
	cfg.Rift.JWTSecret = getEnv("RIFT_JWT_SECRET", "dev-secret-key")
	cfg.Rift.JWTExpiry = getEnvAsDuration("RIFT_JWT_EXPIRY", "24h")

	// Email delivery
	cfg.Email.Endpoint = getEnv("EMAIL_ENDPOINT", "https://mail.cradlevoices.com")
	cfg.Email.Token = getEnv("EMAIL_TOKEN", "")
	cfg.Email.SenderName = getEnv("EMAIL_SENDER_NAME", "Rift Finance")
	cfg.Email.SenderEmail = getEnv("EMAIL_SENDER_EMAIL", "sphere@cradlevoices.com")

	// Payment provider
	cfg.Payment.URL = getEnv("PAYMENT_URL", "http://localhost:9090")

	// Exchange rate provider
	cfg.Exchange.URL = getEnv("EXCHANGE_RATE_URL", "http://localhost:9091/rate")
	cfg.Exchange.CacheTTL = getEnvAsDuration("EXCHANGE_CACHE_TTL", "5m")

	// Blob storage
	cfg.Blob.URL = getEnv("BLOB_URL", "http://localhost:9092/blobs")
	cfg.Blob.Token = getEnv("BLOB_TOKEN", "")

	// Logging
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key, defaultValue string) time.Duration {
	val := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(val)
	if err != nil {
		return time.Duration(0)
	}
	return duration
}
