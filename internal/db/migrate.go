// Package db runs schema migrations against the results database.
package db

import (
	"errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/polderlab/actornet/internal/util"
	"github.com/polderlab/actornet/pkg/logger"
)

// Migrate applies all pending migrations. The source directory defaults to
// ./internal/db/migrations and can be overridden with MIGRATIONS_PATH.
func Migrate(databaseURL string) error {
	source := "file://" + util.GetEnvString("MIGRATIONS_PATH", "internal/db/migrations")

	m, err := migrate.New(source, databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Debug("[DB] Schema already up to date")
		return nil
	}
	if err != nil {
		return err
	}

	version, dirty, vErr := m.Version()
	if vErr == nil {
		logger.Info("[DB] Migrations applied", "version", version, "dirty", dirty)
	}
	return nil
}
