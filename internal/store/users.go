package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lostflight/lostflight/internal/model"
)

const userColumns = `id, email, password_hash, name, laf, hold_duration, sms_consent, created_at, deleted_at`

// CreateUser creates a new account with default settings.
func CreateUser(ctx context.Context, db *sql.DB, email, passwordHash, name string) (*model.User, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, name) VALUES (?, ?, ?)`,
		email, passwordHash, name,
	)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, db, id)
}

func scanUser(row *sql.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.LAF,
		&u.HoldDuration, &u.SMSConsent, &u.CreatedAt, &u.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	return u, nil
}

// GetUser returns an active account by ID. Soft-deleted accounts are
// not found, so surviving sessions of a deleted account fail closed.
func GetUser(ctx context.Context, db *sql.DB, id int64) (*model.User, error) {
	return scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ? AND deleted_at IS NULL`, id,
	))
}

// GetUserByEmail returns an account by email (including soft-deleted,
// for auth checks).
func GetUserByEmail(ctx context.Context, db *sql.DB, email string) (*model.User, error) {
	return scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? ORDER BY deleted_at IS NULL DESC LIMIT 1`, email,
	))
}

// UpdateUserSettings updates the account's profile and notification
// settings.
func UpdateUserSettings(ctx context.Context, db *sql.DB, id int64, name, laf string, holdDuration int, smsConsent bool) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET name = ?, laf = ?, hold_duration = ?, sms_consent = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		name, laf, holdDuration, smsConsent, id,
	)
	if err != nil {
		return fmt.Errorf("updating user settings: %w", err)
	}
	return nil
}

// UpdateUserPassword updates an account's password hash.
func UpdateUserPassword(ctx context.Context, db *sql.DB, id int64, passwordHash string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ? AND deleted_at IS NULL`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}

// UpdateUserEmail updates an account's email address.
func UpdateUserEmail(ctx context.Context, db *sql.DB, id int64, email string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET email = ? WHERE id = ? AND deleted_at IS NULL`,
		email, id,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("updating user email: %w", err)
	}
	return nil
}

// DeleteUser soft-deletes an account.
func DeleteUser(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}
