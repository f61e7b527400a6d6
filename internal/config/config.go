// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	AWS      AWSConfig
	Tables   TablesConfig
	Queue    QueueConfig
	Checkout CheckoutConfig
	Metrics  MetricsConfig
}

type ServerConfig struct {
	AppEnv   string
	Port     string
	RunLocal bool
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type AWSConfig struct {
	Region string
}

type TablesConfig struct {
	Products    string
	Carts       string
	Orders      string
	Idempotency string
}

type QueueConfig struct {
	OrdersQueueURL string
}

type CheckoutConfig struct {
	IdempotencyTTL time.Duration
}

type MetricsConfig struct {
	Namespace string
}

// Load reads configuration from environment variables, applying
// development-friendly defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:   getEnv("APP_ENV", "development"),
			Port:     getEnv("PORT", "8080"),
			RunLocal: getEnvBool("RUN_LOCAL", false),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOG_LEVEL", "info"),
			Encoding:          getEnv("LOG_ENCODING", "json"),
			DisableCaller:     getEnvBool("LOG_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOG_DISABLE_STACKTRACE", true),
		},
		AWS: AWSConfig{
			Region: getEnv("AWS_REGION", ""),
		},
		Tables: TablesConfig{
			Products:    getEnv("PRODUCTS_TABLE", "products"),
			Carts:       getEnv("CARTS_TABLE", "carts"),
			Orders:      getEnv("ORDERS_TABLE", "orders"),
			Idempotency: getEnv("IDEMPOTENCY_TABLE", "checkout-idempotency"),
		},
		Queue: QueueConfig{
			OrdersQueueURL: getEnv("ORDERS_QUEUE_URL", ""),
		},
		Checkout: CheckoutConfig{
			IdempotencyTTL: getEnvDuration("IDEMPOTENCY_TTL", 48*time.Hour),
		},
		Metrics: MetricsConfig{
			Namespace: getEnv("METRICS_NAMESPACE", "VibeCommerce"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
