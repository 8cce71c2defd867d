package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type StoreBackend string

const (
	StoreMemory   StoreBackend = "memory"
	StorePostgres StoreBackend = "postgres"
)

type Config struct {
	Port         string
	StoreBackend StoreBackend
	PostgresURL  string
	LogLevel     string

	JWTSecret string
	JWTTTL    time.Duration

	SeedPlans     bool
	AdminEmail    string
	AdminPassword string

	PaymentTimeout    time.Duration
	PaymentMaxRetries uint64

	PlanCacheTTL time.Duration
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// .env is optional; a missing file is not an error
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("STORE_BACKEND", string(StoreMemory))
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", "168h")
	v.SetDefault("SEED_PLANS", true)
	v.SetDefault("PAYMENT_TIMEOUT", "10s")
	v.SetDefault("PAYMENT_MAX_RETRIES", 3)
	v.SetDefault("PLAN_CACHE_TTL", "5m")

	cfg := &Config{
		Port:              v.GetString("PORT"),
		StoreBackend:      StoreBackend(strings.ToLower(v.GetString("STORE_BACKEND"))),
		PostgresURL:       v.GetString("POSTGRES_URL"),
		LogLevel:          strings.ToLower(v.GetString("LOG_LEVEL")),
		JWTSecret:         v.GetString("JWT_SECRET"),
		JWTTTL:            v.GetDuration("JWT_TTL"),
		SeedPlans:         v.GetBool("SEED_PLANS"),
		AdminEmail:        v.GetString("ADMIN_EMAIL"),
		AdminPassword:     v.GetString("ADMIN_PASSWORD"),
		PaymentTimeout:    v.GetDuration("PAYMENT_TIMEOUT"),
		PaymentMaxRetries: v.GetUint64("PAYMENT_MAX_RETRIES"),
		PlanCacheTTL:      v.GetDuration("PLAN_CACHE_TTL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreMemory:
	case StorePostgres:
		if c.PostgresURL == "" {
			return errors.New("POSTGRES_URL is required when STORE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if c.PaymentTimeout <= 0 {
		return errors.New("PAYMENT_TIMEOUT must be positive")
	}
	return nil
}

// Default returns a configuration suitable for tests and local tooling.
func Default() *Config {
	return &Config{
		Port:              "8080",
		StoreBackend:      StoreMemory,
		LogLevel:          "info",
		JWTSecret:         "local-development-secret",
		JWTTTL:            7 * 24 * time.Hour,
		SeedPlans:         true,
		PaymentTimeout:    10 * time.Second,
		PaymentMaxRetries: 3,
		PlanCacheTTL:      5 * time.Minute,
	}
}
