// Package db owns the lost-and-found SQLite database: connection
// setup, schema, idempotent migrations, and the in-memory test helper.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// connPragmas are applied to every opened database. The store layer
// relies on enforced foreign keys (template references on discs are SET
// NULL on delete) and WAL journaling; the busy timeout keeps photo blob
// writes from failing under concurrent requests.
var connPragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA foreign_keys = ON",
	"PRAGMA synchronous = NORMAL",
}

// Open opens the SQLite database at path and applies the connection
// pragmas. The file is created if missing.
func Open(path string) (*sql.DB, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	for _, pragma := range connPragmas {
		if _, err := database.Exec(pragma); err != nil {
			database.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", pragma, err)
		}
	}

	return database, nil
}
