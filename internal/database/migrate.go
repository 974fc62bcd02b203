package database

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunMigrations brings the quota and prompt-log schema up to date. A dirty
// version means an earlier run died mid-migration and needs manual repair, so
// it is treated as fatal rather than silently retried.
func RunMigrations(dsn, migrationsPath string) error {
	m, err := migrate.New("file://"+migrationsPath, dsn)
	if err != nil {
		return fmt.Errorf("opening migration source %q: %w", migrationsPath, err)
	}
	defer m.Close()

	if _, dirty, err := m.Version(); err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("reading migration version: %w", err)
	} else if dirty {
		return errors.New("schema is dirty, resolve the failed migration before starting")
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		slog.Info("schema already up to date")
	case err != nil:
		return fmt.Errorf("applying migrations: %w", err)
	default:
		ver, _, _ := m.Version()
		slog.Info("schema migrated", "version", ver)
	}
	return nil
}
