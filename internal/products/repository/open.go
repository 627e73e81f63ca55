package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"product-catalog/internal/config"
	"product-catalog/internal/products"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	migrateSourcePrefix = "file://"
	postgresDriverName  = "postgres"
)

// Store is the full capability set of a product backend.
type Store interface {
	Save(ctx context.Context, p products.Product) (products.Product, error)
	FindByID(ctx context.Context, id int64) (products.Product, error)
	FindByName(ctx context.Context, name string) (products.Product, error)
	FindAll(ctx context.Context) ([]products.Product, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	Update(ctx context.Context, p products.Product) (products.Product, error)
	DeleteByID(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
	Health() error
	Close() error
}

var (
	_ Store = (*PostgresRepository)(nil)
	_ Store = (*GormRepository)(nil)
	_ Store = (*MemoryRepository)(nil)
)

// Open connects to the configured backend and brings its schema up to date.
func Open(ctx context.Context, cfg config.Storage) (Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg)
	case config.DriverSQLite:
		return openSQLite(cfg)
	case config.DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

func openPostgres(ctx context.Context, cfg config.Storage) (*PostgresRepository, error) {
	if err := Migrate(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open(postgresDriverName, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DBPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return NewPostgres(db), nil
}

func openSQLite(cfg config.Storage) (*GormRepository, error) {
	db, err := gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", cfg.SQLitePath, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	// SQLite allows a single writer.
	sqlDB.SetMaxOpenConns(1)

	repo := NewGorm(db)
	if err := repo.AutoMigrate(); err != nil {
		_ = repo.Close()
		return nil, err
	}
	return repo, nil
}

// Migrate applies the SQL migrations found in migrationsPath.
func Migrate(databaseURL, migrationsPath string) error {
	m, err := migrate.New(migrateSourcePrefix+migrationsPath, databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}
