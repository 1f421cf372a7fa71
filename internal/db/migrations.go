package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: template lookups by disc reference during type-change
	// checks and ON DELETE SET NULL fanout.
	`CREATE INDEX IF NOT EXISTS idx_discs_initial_template ON discs(initial_template)`,
	`CREATE INDEX IF NOT EXISTS idx_discs_reminder_template ON discs(reminder_template)`,
	`CREATE INDEX IF NOT EXISTS idx_discs_extension_template ON discs(extension_template)`,
}

// Migrate ensures the schema exists and runs the migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
