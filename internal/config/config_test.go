package config

import (
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestLoadProducts(t *testing.T) {
	tests := []struct {
		name       string
		env        map[string]string
		wantErr    string
		wantDriver string
	}{
		{
			name:    "missing DATABASE_URL for postgres",
			env:     map[string]string{},
			wantErr: "DATABASE_URL is required",
		},
		{
			name:    "unknown storage driver",
			env:     map[string]string{"STORAGE_DRIVER": "mongo"},
			wantErr: `unsupported STORAGE_DRIVER "mongo"`,
		},
		{
			name:    "invalid log level",
			env:     map[string]string{"STORAGE_DRIVER": "memory", "LOG_LEVEL": "loud"},
			wantErr: "invalid LOG_LEVEL",
		},
		{
			name:       "valid config with defaults",
			env:        map[string]string{"DATABASE_URL": "postgres://localhost/db"},
			wantDriver: DriverPostgres,
		},
		{
			name:       "sqlite needs no DATABASE_URL",
			env:        map[string]string{"STORAGE_DRIVER": "SQLite"},
			wantDriver: DriverSQLite,
		},
		{
			name: "custom HTTP_ADDR overrides default",
			env: map[string]string{
				"DATABASE_URL": "postgres://localhost/db",
				"RABBITMQ_URL": "amqp://localhost",
				"HTTP_ADDR":    ":9090",
			},
			wantDriver: DriverPostgres,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadProducts()
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.wantErr)
				}
				if !strings.HasPrefix(err.Error(), tt.wantErr) {
					t.Fatalf("want error %q, got %q", tt.wantErr, err.Error())
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Storage.Driver != tt.wantDriver {
				t.Fatalf("want driver %q, got %q", tt.wantDriver, cfg.Storage.Driver)
			}
			if cfg.Storage.DatabaseURL != tt.env["DATABASE_URL"] {
				t.Fatalf("want DatabaseURL %q, got %q", tt.env["DATABASE_URL"], cfg.Storage.DatabaseURL)
			}
			if cfg.RabbitMQURL != tt.env["RABBITMQ_URL"] {
				t.Fatalf("want RabbitMQURL %q, got %q", tt.env["RABBITMQ_URL"], cfg.RabbitMQURL)
			}
			if addr, ok := tt.env["HTTP_ADDR"]; ok && cfg.HTTPAddr != addr {
				t.Fatalf("want HTTPAddr %q, got %q", addr, cfg.HTTPAddr)
			}
			if _, ok := tt.env["HTTP_ADDR"]; !ok && cfg.HTTPAddr != defaultHTTPAddr {
				t.Fatalf("want default HTTPAddr %q, got %q", defaultHTTPAddr, cfg.HTTPAddr)
			}
			if cfg.Storage.SQLitePath != defaultSQLitePath {
				t.Fatalf("want SQLitePath %q, got %q", defaultSQLitePath, cfg.Storage.SQLitePath)
			}
			if cfg.Storage.DBMaxOpenConns != defaultDBMaxOpenConns {
				t.Fatalf("want DBMaxOpenConns %d, got %d", defaultDBMaxOpenConns, cfg.Storage.DBMaxOpenConns)
			}
			if cfg.ServiceName != defaultServiceName {
				t.Fatalf("want ServiceName %q, got %q", defaultServiceName, cfg.ServiceName)
			}
			if cfg.LogLevel != slog.LevelInfo {
				t.Fatalf("want LogLevel info, got %v", cfg.LogLevel)
			}
			if cfg.ShutdownTimeout != defaultShutdownTimeout {
				t.Fatalf("want ShutdownTimeout %v, got %v", defaultShutdownTimeout, cfg.ShutdownTimeout)
			}
		})
	}
}

func TestLoadNotifications(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		wantErr   string
		wantLevel slog.Level
	}{
		{
			name:    "missing RABBITMQ_URL",
			env:     map[string]string{},
			wantErr: "RABBITMQ_URL is required",
		},
		{
			name:      "valid config",
			env:       map[string]string{"RABBITMQ_URL": "amqp://localhost"},
			wantLevel: slog.LevelInfo,
		},
		{
			name:      "debug level",
			env:       map[string]string{"RABBITMQ_URL": "amqp://localhost", "LOG_LEVEL": "debug"},
			wantLevel: slog.LevelDebug,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadNotifications()
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.wantErr)
				}
				if err.Error() != tt.wantErr {
					t.Fatalf("want error %q, got %q", tt.wantErr, err.Error())
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.RabbitMQURL != tt.env["RABBITMQ_URL"] {
				t.Fatalf("want RabbitMQURL %q, got %q", tt.env["RABBITMQ_URL"], cfg.RabbitMQURL)
			}
			if cfg.LogLevel != tt.wantLevel {
				t.Fatalf("want LogLevel %v, got %v", tt.wantLevel, cfg.LogLevel)
			}
			if cfg.ShutdownTimeout != defaultShutdownTimeout {
				t.Fatalf("want ShutdownTimeout %v, got %v", defaultShutdownTimeout, cfg.ShutdownTimeout)
			}
		})
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"STORAGE_DRIVER", "DATABASE_URL", "SQLITE_PATH", "MIGRATIONS_PATH",
		"RABBITMQ_URL", "HTTP_ADDR", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_SERVICE_NAME", "LOG_LEVEL",
	} {
		if val, ok := os.LookupEnv(key); ok {
			t.Setenv(key, val)
		}
		os.Unsetenv(key)
	}
}
