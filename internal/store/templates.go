package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lostflight/lostflight/internal/model"
)

const templateColumns = `id, user_id, type, name, content, is_default, created_at, updated_at`

// CreateTemplate creates a message template for an account.
func CreateTemplate(ctx context.Context, db *sql.DB, userID int64, typ, name, content string) (*model.Template, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO templates (user_id, type, name, content) VALUES (?, ?, ?, ?)`,
		userID, typ, name, content,
	)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateName
	}
	if err != nil {
		return nil, fmt.Errorf("creating template: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting template id: %w", err)
	}

	return GetTemplate(ctx, db, userID, id)
}

// GetTemplate returns an account's template by ID.
func GetTemplate(ctx context.Context, db *sql.DB, userID, id int64) (*model.Template, error) {
	t := &model.Template{}
	err := db.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM templates WHERE id = ? AND user_id = ?`, id, userID,
	).Scan(&t.ID, &t.UserID, &t.Type, &t.Name, &t.Content, &t.IsDefault, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting template: %w", err)
	}
	return t, nil
}

// ListTemplates returns all of an account's templates, optionally
// filtered by type.
func ListTemplates(ctx context.Context, db *sql.DB, userID int64, typ string) ([]model.Template, error) {
	var rows *sql.Rows
	var err error

	if typ != "" {
		rows, err = db.QueryContext(ctx,
			`SELECT `+templateColumns+` FROM templates
			 WHERE user_id = ? AND type = ? ORDER BY name`, userID, typ,
		)
	} else {
		rows, err = db.QueryContext(ctx,
			`SELECT `+templateColumns+` FROM templates
			 WHERE user_id = ? ORDER BY type, name`, userID,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	defer rows.Close()

	var templates []model.Template
	for rows.Next() {
		var t model.Template
		if err := rows.Scan(&t.ID, &t.UserID, &t.Type, &t.Name, &t.Content, &t.IsDefault, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// UpdateTemplate updates a template's type, name, and content. A default
// template cannot change type, nor can a template referenced by a disc.
func UpdateTemplate(ctx context.Context, db *sql.DB, userID, id int64, typ, name, content string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var currentType string
	var isDefault bool
	err = tx.QueryRowContext(ctx,
		`SELECT type, is_default FROM templates WHERE id = ? AND user_id = ?`, id, userID,
	).Scan(&currentType, &isDefault)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("getting template: %w", err)
	}

	if typ != currentType {
		if isDefault {
			return ErrDefaultTemplate
		}
		var refs int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM discs
			 WHERE initial_template = ? OR reminder_template = ? OR extension_template = ?`,
			id, id, id,
		).Scan(&refs)
		if err != nil {
			return fmt.Errorf("counting template references: %w", err)
		}
		if refs > 0 {
			return ErrTemplateInUse
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE templates SET type = ?, name = ?, content = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		typ, name, content, id, userID,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateName
	}
	if err != nil {
		return fmt.Errorf("updating template: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing template update: %w", err)
	}
	return nil
}

// MakeDefault marks a template as the default for its type, unsetting
// all siblings of the same type in the same statement so two concurrent
// calls can never leave two defaults.
func MakeDefault(ctx context.Context, db *sql.DB, userID, id int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE templates SET is_default = (id = ?)
		 WHERE user_id = ?
		   AND type = (SELECT type FROM templates WHERE id = ? AND user_id = ?)`,
		id, userID, id, userID,
	)
	if err != nil {
		return fmt.Errorf("setting default template: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking default template update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("template %d not found", id)
	}
	return nil
}

// DeleteTemplate removes a template. Default templates cannot be
// deleted. Disc references to the deleted template are set NULL by the
// foreign key.
func DeleteTemplate(ctx context.Context, db *sql.DB, userID, id int64) error {
	result, err := db.ExecContext(ctx,
		`DELETE FROM templates WHERE id = ? AND user_id = ? AND is_default = 0`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking template deletion: %w", err)
	}
	if affected == 0 {
		// Distinguish a missing template (no-op) from a protected default.
		t, err := GetTemplate(ctx, db, userID, id)
		if err != nil {
			return err
		}
		if t != nil {
			return ErrDefaultTemplate
		}
	}
	return nil
}
