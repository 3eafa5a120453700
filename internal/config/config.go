// Package config loads server and CLI settings from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Backends accepted by DATA_BACKEND.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

var validBackends = []string{BackendMemory, BackendSQLite, BackendPostgres}

type Config struct {
	// HTTP server
	Port            string
	ShutdownTimeout time.Duration

	// Storage
	DataBackend string
	DBPath      string
	DatabaseURL string

	// Auth
	JWTSecret     string
	TokenDuration time.Duration

	// AMQP, empty URL disables publishing
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	DefaultCurrency string
}

func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		DataBackend: getEnv("DATA_BACKEND", BackendSQLite),
		DBPath:      getEnv("DB_PATH", "./data/ledger.db"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		JWTSecret:     getEnv("JWT_SECRET", ""),
		TokenDuration: getEnvDuration("TOKEN_DURATION", 24*time.Hour),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "splitledger"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "notifications"),

		DefaultCurrency: strings.ToUpper(getEnv("DEFAULT_CURRENCY", "USD")),
	}
}

// Validate reports every configuration problem in a single error.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	errs = append(errs, c.storageErrors()...)

	if c.JWTSecret == "" {
		errs = append(errs, "JWT_SECRET is required")
	} else if len(c.JWTSecret) < 16 {
		errs = append(errs, "JWT_SECRET must be at least 16 characters")
	}
	if c.TokenDuration < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid token duration %v: must be at least 1 minute", c.TokenDuration))
	}

	if c.AMQPURL != "" {
		if u, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", u.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if !validCurrency(c.DefaultCurrency) {
		errs = append(errs, fmt.Sprintf("invalid default currency '%s': must be a 3-letter code", c.DefaultCurrency))
	}

	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("invalid shutdown timeout %v: must be positive", c.ShutdownTimeout))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// ValidateStorage checks only the storage settings, for tools that open the
// ledger without serving it.
func (c *Config) ValidateStorage() error {
	if errs := c.storageErrors(); len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func (c *Config) storageErrors() []string {
	var errs []string
	if !slices.Contains(validBackends, c.DataBackend) {
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}
	switch c.DataBackend {
	case BackendSQLite:
		if c.DBPath == "" {
			errs = append(errs, "DB_PATH cannot be empty when using sqlite backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, "DATABASE_URL is required when using postgres backend")
		}
	}
	return errs
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func validCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
