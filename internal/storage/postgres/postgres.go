// Package postgres opens a PostgreSQL-backed storage.Store.
//
// Connections come from a pgx pool exposed through database/sql, so the
// shared sqlstore queries run unchanged.
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/mmynk/splitledger/internal/storage/sqlstore"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// New connects to databaseURL, runs migrations and returns a store.
func New(ctx context.Context, databaseURL string) (*sqlstore.DB, error) {
	if databaseURL == "" {
		return nil, errors.New("postgres: database URL is not set")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database URL: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 0
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := runMigrations(config.ConnConfig); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Closing the returned store closes the pool.
	return sqlstore.New(stdlib.OpenDBFromPool(pool), sqlstore.Postgres), nil
}

// runMigrations uses a separate connection because the migrate driver
// closes its database when done.
func runMigrations(connConfig *pgx.ConnConfig) error {
	migrateDB := stdlib.OpenDB(*connConfig)
	defer migrateDB.Close()

	driver, err := migratepgx.WithInstance(migrateDB, &migratepgx.Config{})
	if err != nil {
		return fmt.Errorf("create pgx driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
