// Package config loads the server configuration from a YAML file with
// environment variable overrides, and builds the process logger.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Store backends. Exactly one is authoritative per deployment.
const (
	BackendMemory    = "memory"
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
)

// Configuration holds all settings for the back-office server.
type Configuration struct {
	Server  ServerConfig
	Store   StoreConfig
	Storage StorageConfig
	Auth    AuthConfig
	Logging LoggingConfig
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port        int
	CORSOrigins []string
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Backend          string // memory | firestore | postgres
	FirestoreProject string
	PostgresDSN      string
}

// StorageConfig configures the document-original archive. An empty
// bucket name disables archiving.
type StorageConfig struct {
	DocumentsBucket string
}

// AuthConfig controls the Firebase token check.
type AuthConfig struct {
	Disabled bool // local development only
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level  string // debug | info | warn | error
	Format string // json | console
}

// Load reads the YAML config at configPath. Every key can be
// overridden through the environment with an ATOMTAX_ prefix, dots
// replaced by underscores (ATOMTAX_STORE_BACKEND, ATOMTAX_SERVER_PORT).
func Load(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")

	v.SetEnvPrefix("ATOMTAX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.corsorigins", []string{"http://localhost:3000"})
	v.SetDefault("store.backend", BackendMemory)
	v.SetDefault("storage.documentsbucket", "")
	v.SetDefault("auth.disabled", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	if err := configuration.Validate(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

// Validate checks backend selection and its required settings.
func (c *Configuration) Validate() error {
	switch c.Store.Backend {
	case BackendMemory:
	case BackendFirestore:
		if c.Store.FirestoreProject == "" {
			return fmt.Errorf("store.firestoreproject is required for the firestore backend")
		}
	case BackendPostgres:
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("store.postgresdsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	return nil
}

// InitializeLogger creates a zap logger from the logging settings.
func InitializeLogger(loggingConfig LoggingConfig) (*zap.Logger, error) {
	level := loggingConfig.Level
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var cfg zap.Config
	switch format {
	case "console":
		cfg = zap.NewDevelopmentConfig()
	case "json":
		cfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	return cfg.Build()
}
