package config

import (
	"fmt"
	"time"

	"github.com/carhub/service-rental/pkg/config"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// ExpirationConfig tunes the per-user expiration pollers.
type ExpirationConfig struct {
	Interval       time.Duration
	Window         time.Duration
	IncludeExpired bool
	Deduplicate    bool
}

// ServiceConfig holds all configuration for the rental service.
type ServiceConfig struct {
	Port              string
	AppEnv            string
	StoreDriver       string
	AllowedOrigin     string
	CompanyName       string
	DBConfig          config.DatabaseConfig
	JWTConfig         config.JWTConfig
	KafkaConfig       config.KafkaConfig
	Expiration        ExpirationConfig
	ReconcileInterval time.Duration
}

// Load reads configuration from environment variables.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("RENTAL")
	if err != nil {
		return nil, err
	}

	v.SetDefault("DB_NAME", "rental")
	v.SetDefault("STORE_DRIVER", StoreMemory)
	v.SetDefault("ALLOWED_ORIGIN", "*")
	v.SetDefault("COMPANY_NAME", "CarHub")
	v.SetDefault("EXPIRATION_INTERVAL", "1h")
	v.SetDefault("EXPIRATION_WINDOW_HOURS", 24)
	v.SetDefault("EXPIRATION_INCLUDE_EXPIRED", false)
	v.SetDefault("EXPIRATION_DEDUPLICATE", false)
	v.SetDefault("RECONCILE_INTERVAL", "15m")

	cfg := &ServiceConfig{
		Port:          config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:        config.GetAppEnv(v),
		StoreDriver:   v.GetString("STORE_DRIVER"),
		AllowedOrigin: v.GetString("ALLOWED_ORIGIN"),
		CompanyName:   v.GetString("COMPANY_NAME"),
		DBConfig:      config.LoadDatabaseConfig(v, "DB_NAME"),
		JWTConfig:     config.LoadJWTConfig(v),
		KafkaConfig:   config.LoadKafkaConfig(v),
		Expiration: ExpirationConfig{
			Interval:       v.GetDuration("EXPIRATION_INTERVAL"),
			Window:         time.Duration(v.GetInt("EXPIRATION_WINDOW_HOURS")) * time.Hour,
			IncludeExpired: v.GetBool("EXPIRATION_INCLUDE_EXPIRED"),
			Deduplicate:    v.GetBool("EXPIRATION_DEDUPLICATE"),
		},
		ReconcileInterval: v.GetDuration("RECONCILE_INTERVAL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *ServiceConfig) Validate() error {
	switch c.StoreDriver {
	case StoreMemory, StorePostgres:
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	if c.Expiration.Interval <= 0 {
		return fmt.Errorf("expiration interval must be positive, got %s", c.Expiration.Interval)
	}
	if c.Expiration.Window <= 0 {
		return fmt.Errorf("expiration window must be positive, got %s", c.Expiration.Window)
	}
	if c.ReconcileInterval <= 0 {
		return fmt.Errorf("reconcile interval must be positive, got %s", c.ReconcileInterval)
	}
	return nil
}
