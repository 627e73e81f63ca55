package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

const (
	defaultHTTPAddr        = ":8080"
	defaultStorageDriver   = DriverPostgres
	defaultSQLitePath      = "catalog.db"
	defaultMigrationsPath  = "migrations/products"
	defaultServiceName     = "product-catalog"
	defaultShutdownTimeout = 10 * time.Second

	defaultDBMaxOpenConns    = 25
	defaultDBMaxIdleConns    = 5
	defaultDBConnMaxLifetime = 5 * time.Minute
	defaultDBPingTimeout     = 5 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
)

// Storage selects and tunes the product store.
type Storage struct {
	Driver            string
	DatabaseURL       string
	SQLitePath        string
	MigrationsPath    string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBPingTimeout     time.Duration
}

type Products struct {
	Storage           Storage
	RabbitMQURL       string
	HTTPAddr          string
	OTLPEndpoint      string
	ServiceName       string
	LogLevel          slog.Level
	ShutdownTimeout   time.Duration
	ReadHeaderTimeout time.Duration
}

func LoadStorage() (Storage, error) {
	cfg := Storage{
		Driver:            strings.ToLower(getEnv("STORAGE_DRIVER", defaultStorageDriver)),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		SQLitePath:        getEnv("SQLITE_PATH", defaultSQLitePath),
		MigrationsPath:    getEnv("MIGRATIONS_PATH", defaultMigrationsPath),
		DBMaxOpenConns:    defaultDBMaxOpenConns,
		DBMaxIdleConns:    defaultDBMaxIdleConns,
		DBConnMaxLifetime: defaultDBConnMaxLifetime,
		DBPingTimeout:     defaultDBPingTimeout,
	}

	switch cfg.Driver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return Storage{}, fmt.Errorf("DATABASE_URL is required")
		}
	case DriverSQLite, DriverMemory:
	default:
		return Storage{}, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.Driver)
	}

	return cfg, nil
}

func LoadProducts() (Products, error) {
	storage, err := LoadStorage()
	if err != nil {
		return Products{}, err
	}

	level, err := LoadLogLevel()
	if err != nil {
		return Products{}, err
	}

	return Products{
		Storage:           storage,
		RabbitMQURL:       getEnv("RABBITMQ_URL", ""),
		HTTPAddr:          getEnv("HTTP_ADDR", defaultHTTPAddr),
		OTLPEndpoint:      getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:       getEnv("OTEL_SERVICE_NAME", defaultServiceName),
		LogLevel:          level,
		ShutdownTimeout:   defaultShutdownTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
	}, nil
}

// LoadLogLevel parses LOG_LEVEL (debug, info, warn, error).
func LoadLogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	return level, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
