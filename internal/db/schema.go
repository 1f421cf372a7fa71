package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    email         TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    name          TEXT NOT NULL DEFAULT '',
    laf           TEXT NOT NULL DEFAULT '',
    hold_duration INTEGER NOT NULL DEFAULT 60 CHECK (hold_duration BETWEEN 30 AND 365),
    sms_consent   INTEGER NOT NULL DEFAULT 0,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_active
    ON users(email) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS templates (
    id         INTEGER PRIMARY KEY,
    user_id    INTEGER NOT NULL REFERENCES users(id),
    type       TEXT NOT NULL CHECK (type IN ('initial', 'reminder', 'extension')),
    name       TEXT NOT NULL,
    content    TEXT NOT NULL,
    is_default INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_templates_user_name
    ON templates(user_id, name);

CREATE TABLE IF NOT EXISTS discs (
    id                 INTEGER PRIMARY KEY,
    user_id            INTEGER NOT NULL REFERENCES users(id),
    name               TEXT NOT NULL DEFAULT '',
    phone              TEXT NOT NULL,
    color              TEXT NOT NULL DEFAULT '',
    brand              TEXT NOT NULL DEFAULT '',
    plastic            TEXT NOT NULL DEFAULT '',
    mold               TEXT NOT NULL DEFAULT '',
    location           TEXT NOT NULL DEFAULT '',
    notes              TEXT NOT NULL DEFAULT '',
    photo              BLOB,
    photo_mime         TEXT,
    initial_template   INTEGER REFERENCES templates(id) ON DELETE SET NULL,
    initial_custom     INTEGER NOT NULL DEFAULT 0,
    initial_text       TEXT NOT NULL DEFAULT '',
    reminder_template  INTEGER REFERENCES templates(id) ON DELETE SET NULL,
    reminder_custom    INTEGER NOT NULL DEFAULT 0,
    reminder_text      TEXT NOT NULL DEFAULT '',
    extension_template INTEGER REFERENCES templates(id) ON DELETE SET NULL,
    extension_custom   INTEGER NOT NULL DEFAULT 0,
    extension_text     TEXT NOT NULL DEFAULT '',
    notified           INTEGER NOT NULL DEFAULT 0,
    reminded           INTEGER NOT NULL DEFAULT 0,
    status             TEXT NOT NULL DEFAULT 'awaiting_pickup' CHECK (status IN ('awaiting_pickup', 'picked_up', 'archived')),
    held_until         DATETIME,
    created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_discs_user ON discs(user_id);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS reset_tokens (
    token      TEXT PRIMARY KEY,
    user_id    INTEGER NOT NULL REFERENCES users(id),
    expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
