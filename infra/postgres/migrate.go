package postgres

import (
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Migrate applies all pending migrations embedded in the binary.
func (r *PgRepository) Migrate() error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}

	if err := goose.Up(r.db.DB, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	zap.L().Info("database migrations applied")
	return nil
}

// MigrationStatus logs the applied state of each migration.
func (r *PgRepository) MigrationStatus() error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}
	return goose.Status(r.db.DB, "migrations")
}

// Rollback reverts the most recent migration.
func (r *PgRepository) Rollback() error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}
	return goose.Down(r.db.DB, "migrations")
}
