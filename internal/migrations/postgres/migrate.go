package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jmoiron/sqlx"

	"onehotel/pkg/logger"
)

//go:embed schema.sql
var schema string

// RunMigration applies the idempotent schema: tables, indexes and the
// exclusion constraint that keeps stays in one room from overlapping.
func RunMigration(ctx context.Context, conn *sqlx.DB, log *logger.Logger) error {
	log.Info("Running Postgres migrations")

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}

	log.Info("All Postgres migrations applied successfully")
	return nil
}

// Schema returns the DDL applied by RunMigration.
func Schema() string {
	return schema
}
