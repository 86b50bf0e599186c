package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: Replace hard UNIQUE on plate with a partial unique index
	// that only covers active (non-deleted) vehicles so that plates of
	// retired vehicles can be re-registered.
	`DROP INDEX IF EXISTS sqlite_autoindex_vehicles_1`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_vehicles_plate_active
	     ON vehicles(plate) WHERE deleted_at IS NULL`,
}

// Migrate creates the schema and runs the migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
