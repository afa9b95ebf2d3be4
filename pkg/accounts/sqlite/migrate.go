package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/rhxd/rhxd/internal/logger"
	"github.com/rhxd/rhxd/pkg/accounts/sqlite/migrations"
)

// runMigrations applies the embedded accounts schema to db, the same
// *database/sql.DB GORM already holds open.
func runMigrations(db *sql.DB) error {
	logger.Info("running accounts schema migrations")

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{
		MigrationsTable: "accounts_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("create sqlite migration driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply accounts migrations: %w", err)
	}

	return nil
}
