// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"splitflow/internal/util"
	"splitflow/pkg/db" // Import db package for its Config struct
)

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort      string        `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	SQLitePath      string        `env:"SQLITE_PATH" envDefault:"./data/splitflow.db"`

	Database DatabaseConfig `envPrefix:"DB_"`
	Auth     AuthConfig     `envPrefix:"AUTH_"`
	AMQP     AMQPConfig     `envPrefix:"AMQP_"`
}

// DatabaseConfig selects and addresses the SQL backend.
type DatabaseConfig struct {
	Driver   string `env:"DRIVER" envDefault:"sqlite"`
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"user"`
	Password string `env:"PASSWORD" envDefault:"password"`
	Name     string `env:"NAME" envDefault:"splitflowdb"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
}

// AuthConfig verifies the bearer tokens issued by the upstream identity provider.
type AuthConfig struct {
	Secret string `env:"SECRET"` // HMAC key shared with the issuer
	Issuer string `env:"ISSUER"` // Optional; checked against the iss claim when set
}

// AMQPConfig addresses the broker ledger events go to. An empty URL disables publishing.
type AMQPConfig struct {
	URL        string `env:"URL"`
	Exchange   string `env:"EXCHANGE" envDefault:"splitflow"`
	RoutingKey string `env:"ROUTING_KEY" envDefault:"ledger.transactions"`
}

// LoadConfig loads configuration from environment variables.
// It returns an AppConfig instance or an error if any variable is missing or invalid.
func LoadConfig() (*AppConfig, error) {
	cfg, err := env.ParseAs[AppConfig]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every configuration problem at once.
func (c *AppConfig) Validate() error {
	var errs []error

	if strings.TrimSpace(c.ServerPort) == "" {
		errs = append(errs, errors.New("SERVER_PORT must not be empty"))
	}
	if _, err := util.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}

	switch c.Database.Driver {
	case db.DriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite driver"))
		}
	case db.DriverPostgres:
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Errorf("DB_PORT %d is out of range", c.Database.Port))
		}
		if c.Database.Name == "" {
			errs = append(errs, errors.New("DB_NAME is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be %q or %q, got %q", db.DriverPostgres, db.DriverSQLite, c.Database.Driver))
	}

	if strings.TrimSpace(c.Auth.Secret) == "" {
		errs = append(errs, errors.New("AUTH_SECRET is required"))
	}
	if c.AMQP.URL != "" && c.AMQP.Exchange == "" {
		errs = append(errs, errors.New("AMQP_EXCHANGE is required when AMQP_URL is set"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// DB converts the settings into the connection config pkg/db expects.
func (c *AppConfig) DB() db.Config {
	return db.Config{
		Driver:     c.Database.Driver,
		Host:       c.Database.Host,
		Port:       c.Database.Port,
		User:       c.Database.User,
		Password:   c.Database.Password,
		DBName:     c.Database.Name,
		SSLMode:    c.Database.SSLMode,
		SQLitePath: c.SQLitePath,
	}
}
