package database

import (
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsTable = "schema_migrations"

// Migrator applies the schema shipped inside the binary.
type Migrator struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewMigrator(pool *pgxpool.Pool, logger *zap.Logger) *Migrator {
	return &Migrator{pool: pool, logger: logger.Named("Migrator")}
}

// migrateLogger routes golang-migrate output to zap.
type migrateLogger struct{ l *zap.Logger }

func (m migrateLogger) Printf(format string, v ...any) {
	m.l.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (m migrateLogger) Verbose() bool { return m.l.Core().Enabled(zap.DebugLevel) }

// with opens a migrate instance over the shared pool, runs fn and closes it.
func (m *Migrator) with(fn func(*migrate.Migrate) error) error {
	driver, err := postgres.WithInstance(stdlib.OpenDBFromPool(m.pool), &postgres.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return fmt.Errorf("failed to create postgres migration driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	mg, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer mg.Close()

	mg.LockTimeout = 30 * time.Second
	mg.Log = migrateLogger{l: m.logger}
	return fn(mg)
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

// Up applies pending migrations.
func (m *Migrator) Up() error {
	err := m.with(func(mg *migrate.Migrate) error { return ignoreNoChange(mg.Up()) })
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	m.logger.Info("Database schema is up to date")
	return nil
}

// Down reverts every migration. Used by tests.
func (m *Migrator) Down() error {
	err := m.with(func(mg *migrate.Migrate) error { return ignoreNoChange(mg.Down()) })
	if err != nil {
		return fmt.Errorf("failed to rollback migrations: %w", err)
	}
	return nil
}

// Version reports the applied schema version, zero before the first migration.
func (m *Migrator) Version() (version uint, dirty bool, err error) {
	err = m.with(func(mg *migrate.Migrate) error {
		version, dirty, err = mg.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			version, dirty, err = 0, false, nil
		}
		return err
	})
	return version, dirty, err
}
