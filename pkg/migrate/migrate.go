// Package migrate applies versioned SQL schema migrations to the SQLite
// configuration database.
package migrate

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/chrissnell/pvforecast/internal/log"
)

// Migration is one schema version with its forward and reverse SQL.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// DB is satisfied by both *sql.DB and *sql.Tx.
type DB interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// MigrationProvider loads migrations and tracks the applied version.
type MigrationProvider interface {
	GetMigrations() ([]Migration, error)
	GetCurrentVersion(db *sql.DB) (int, error)
	SetVersion(db DB, version int) error
	CreateMigrationTable(db *sql.DB) error
}

// Migrator executes migrations against a database.
type Migrator struct {
	db       *sql.DB
	provider MigrationProvider
}

// NewMigrator creates a new migrator instance
func NewMigrator(db *sql.DB, provider MigrationProvider) *Migrator {
	return &Migrator{
		db:       db,
		provider: provider,
	}
}

// MigrateUp applies every pending migration.
func (m *Migrator) MigrateUp() error {
	return m.MigrateTo(-1)
}

// MigrateTo moves the schema to targetVersion, -1 meaning the latest.
func (m *Migrator) MigrateTo(targetVersion int) error {
	current, err := m.GetCurrentVersion()
	if err != nil {
		return err
	}

	migrations, err := m.provider.GetMigrations()
	if err != nil {
		return fmt.Errorf("failed to get migrations: %w", err)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	if targetVersion == -1 {
		targetVersion = current
		if len(migrations) > 0 {
			targetVersion = migrations[len(migrations)-1].Version
		}
	}

	if targetVersion >= current {
		for _, mig := range migrations {
			if mig.Version > current && mig.Version <= targetVersion {
				if err := m.execute(mig, true); err != nil {
					return fmt.Errorf("failed to apply migration %d: %w", mig.Version, err)
				}
			}
		}
		return nil
	}

	for i := len(migrations) - 1; i >= 0; i-- {
		mig := migrations[i]
		if mig.Version > targetVersion && mig.Version <= current {
			if err := m.execute(mig, false); err != nil {
				return fmt.Errorf("failed to roll back migration %d: %w", mig.Version, err)
			}
		}
	}
	return nil
}

// GetCurrentVersion returns the current migration version
func (m *Migrator) GetCurrentVersion() (int, error) {
	if err := m.provider.CreateMigrationTable(m.db); err != nil {
		return 0, fmt.Errorf("failed to create migration table: %w", err)
	}
	return m.provider.GetCurrentVersion(m.db)
}

func (m *Migrator) execute(mig Migration, up bool) error {
	stmt, direction, newVersion := mig.Up, "up", mig.Version
	if !up {
		stmt, direction, newVersion = mig.Down, "down", mig.Version-1
	}
	if stmt == "" {
		return fmt.Errorf("migration %d has no %s SQL", mig.Version, direction)
	}

	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(stmt); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}
	if err := m.provider.SetVersion(tx, newVersion); err != nil {
		return fmt.Errorf("failed to update migration version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration transaction: %w", err)
	}

	log.Debugw("applied migration", "version", mig.Version, "name", mig.Name, "direction", direction)
	return nil
}
