package database

import (
	"errors"
	"fmt"
	"strings"

	"acta/migrations"

	migrate "github.com/golang-migrate/migrate/v4"
	// Registers the pgx5:// database driver.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

// MigrationStatus is the schema version after a migration run.
type MigrationStatus struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
	Changed bool `json:"changed"`
}

// Migrator applies the embedded SQL migrations.
type Migrator struct {
	dsn string
	log *zap.Logger
}

func NewMigrator(dsn string, log *zap.Logger) *Migrator {
	return &Migrator{dsn: dsn, log: log}
}

// migrateURL rewrites a postgres URL to the scheme of the pgx/v5 driver.
func migrateURL(dsn string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(dsn, prefix) {
			return "pgx5://" + strings.TrimPrefix(dsn, prefix)
		}
	}
	return dsn
}

func (m *Migrator) open() (*migrate.Migrate, error) {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	mg, err := migrate.NewWithSourceInstance("iofs", source, migrateURL(m.dsn))
	if err != nil {
		return nil, fmt.Errorf("init migrations: %w", err)
	}
	return mg, nil
}

// Up applies every pending migration.
func (m *Migrator) Up() (*MigrationStatus, error) {
	return m.run("up", func(mg *migrate.Migrate) error { return mg.Up() })
}

// Down reverts the most recent migration.
func (m *Migrator) Down() (*MigrationStatus, error) {
	return m.run("down", func(mg *migrate.Migrate) error { return mg.Steps(-1) })
}

func (m *Migrator) run(direction string, step func(*migrate.Migrate) error) (*MigrationStatus, error) {
	mg, err := m.open()
	if err != nil {
		return nil, err
	}
	defer mg.Close()

	status := &MigrationStatus{Changed: true}
	if err := step(mg); err != nil {
		switch {
		case errors.Is(err, migrate.ErrNoChange):
			status.Changed = false
		case errors.Is(err, migrate.ErrNilVersion):
			status.Changed = false
		default:
			return nil, fmt.Errorf("migrate %s: %w", direction, err)
		}
	}

	version, dirty, err := mg.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return nil, fmt.Errorf("read migration version: %w", err)
	}
	status.Version = version
	status.Dirty = dirty

	m.log.Info("migrations applied",
		zap.String("direction", direction),
		zap.Uint("version", version),
		zap.Bool("changed", status.Changed))
	return status, nil
}
