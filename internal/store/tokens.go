package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RevokeToken adds a session token's JTI to the revocation list.
func RevokeToken(ctx context.Context, db *sql.DB, jti string, expiresAt time.Time) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO revoked_tokens (jti, expires_at) VALUES (?, ?)`,
		jti, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}

	// Opportunistically clean up expired revocations.
	_, _ = db.ExecContext(ctx,
		`DELETE FROM revoked_tokens WHERE expires_at < ?`, time.Now(),
	)

	return nil
}

// IsTokenRevoked checks if a session token's JTI has been revoked.
func IsTokenRevoked(ctx context.Context, db *sql.DB, jti string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM revoked_tokens WHERE jti = ?`, jti,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking token revocation: %w", err)
	}
	return count > 0, nil
}

// ResetTokenExpiry is the password reset token lifetime.
const ResetTokenExpiry = time.Hour

// CreateResetToken issues a single-use password reset token for an
// account.
func CreateResetToken(ctx context.Context, db *sql.DB, userID int64) (string, error) {
	token := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO reset_tokens (token, user_id, expires_at) VALUES (?, ?, ?)`,
		token, userID, time.Now().Add(ResetTokenExpiry),
	)
	if err != nil {
		return "", fmt.Errorf("creating reset token: %w", err)
	}

	// Opportunistically clean up expired tokens.
	_, _ = db.ExecContext(ctx,
		`DELETE FROM reset_tokens WHERE expires_at < ?`, time.Now(),
	)

	return token, nil
}

// ConsumeResetToken validates and burns a reset token, returning the
// account it belongs to. Returns 0 when the token is unknown or expired.
func ConsumeResetToken(ctx context.Context, db *sql.DB, token string) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var userID int64
	err = tx.QueryRowContext(ctx,
		`SELECT user_id FROM reset_tokens WHERE token = ? AND expires_at >= ?`,
		token, time.Now(),
	).Scan(&userID)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("looking up reset token: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM reset_tokens WHERE token = ?`, token); err != nil {
		return 0, fmt.Errorf("consuming reset token: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing reset token consumption: %w", err)
	}

	return userID, nil
}
