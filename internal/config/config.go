// Package config provides server configuration loaded from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const logPrefix = "config:LoadConfig"

// Config holds interop-gateway configuration.
type Config struct {
	// COMMS: connect to standalone NATS at COMMSURL.
	COMMSURL  string `envconfig:"COMMS_URL" default:"nats://127.0.0.1:4222"`
	COMMSName string `envconfig:"SERVICE_NAME" default:"interop-gateway"`

	// Gateway subject overrides (empty = built-in defaults)
	GatewaySubject    string `envconfig:"GATEWAY_SUBJECT"`
	AuditEventSubject string `envconfig:"GATEWAY_AUDIT_SUBJECT"`
	AlertEventSubject string `envconfig:"GATEWAY_ALERT_SUBJECT"`

	// Timeouts
	RequestTimeout time.Duration `envconfig:"GATEWAY_REQUEST_TIMEOUT" default:"25s"`

	// Bootstrap
	BootstrapFile string `envconfig:"INTEROP_BOOTSTRAP_FILE"`

	// Database (empty = audit persistence disabled)
	DatabaseURL   string `envconfig:"DATABASE_URL"`
	RunMigrations bool   `envconfig:"RUN_MIGRATIONS" default:"false"`
	MigrationPath string `envconfig:"MIGRATION_PATH" default:"migrations"`

	// Trust policy knobs (0 = built-in defaults)
	TrustNeutralScore       int `envconfig:"TRUST_NEUTRAL_SCORE"`
	TrustWhitelistScore     int `envconfig:"TRUST_WHITELIST_SCORE"`
	TrustCheckPenalty       int `envconfig:"TRUST_CHECK_PENALTY"`
	TrustCompliantThreshold int `envconfig:"TRUST_COMPLIANT_THRESHOLD"`
	TrustBlockedThreshold   int `envconfig:"TRUST_BLOCKED_THRESHOLD"`

	// HTTP health endpoint (GATEWAY_HTTP_ADDR preferred, e.g. "0.0.0.0:8080")
	HTTPAddr           string        `envconfig:"GATEWAY_HTTP_ADDR"`
	HTTPPort           int           `envconfig:"HTTP_PORT" default:"8080"`
	HealthCheckTimeout time.Duration `envconfig:"HEALTH_CHECK_TIMEOUT" default:"5s"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ValidateForServe checks required config when running the gateway server.
func (c *Config) ValidateForServe() error {
	if c.COMMSURL == "" {
		return fmt.Errorf("%s - COMMS_URL is required for serve", logPrefix)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%s - GATEWAY_REQUEST_TIMEOUT must be positive", logPrefix)
	}
	if c.HealthCheckTimeout <= 0 {
		return fmt.Errorf("%s - HEALTH_CHECK_TIMEOUT must be positive", logPrefix)
	}
	return nil
}

// ValidateForDB checks required config when running DB-dependent commands (migrate, clear).
func (c *Config) ValidateForDB() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("%s - DATABASE_URL is required", logPrefix)
	}
	return nil
}
