package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lostflight/lostflight/internal/model"
)

const discColumns = `id, user_id, name, phone, color, brand, plastic, mold, location, notes, photo_mime,
	initial_template, initial_custom, initial_text,
	reminder_template, reminder_custom, reminder_text,
	extension_template, extension_custom, extension_text,
	notified, reminded, status, held_until, created_at, updated_at`

// DiscParams carries the writable fields of a disc.
type DiscParams struct {
	Name      string
	Phone     string
	Color     string
	Brand     string
	Plastic   string
	Mold      string
	Location  string
	Notes     string
	Initial   model.Channel
	Reminder  model.Channel
	Extension model.Channel
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDisc(row scanner) (*model.Disc, error) {
	d := &model.Disc{}
	var photoMime sql.NullString
	var initialTpl, reminderTpl, extensionTpl sql.NullInt64
	err := row.Scan(&d.ID, &d.UserID, &d.Name, &d.Phone, &d.Color, &d.Brand, &d.Plastic,
		&d.Mold, &d.Location, &d.Notes, &photoMime,
		&initialTpl, &d.Initial.Custom, &d.Initial.Text,
		&reminderTpl, &d.Reminder.Custom, &d.Reminder.Text,
		&extensionTpl, &d.Extension.Custom, &d.Extension.Text,
		&d.Notified, &d.Reminded, &d.Status, &d.HeldUntil, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	d.PhotoMime = photoMime.String
	if initialTpl.Valid {
		d.Initial.TemplateID = &initialTpl.Int64
	}
	if reminderTpl.Valid {
		d.Reminder.TemplateID = &reminderTpl.Int64
	}
	if extensionTpl.Valid {
		d.Extension.TemplateID = &extensionTpl.Int64
	}
	return d, nil
}

// CreateDisc records a found disc for an account. New discs start
// awaiting pickup, unnotified, with no hold date.
func CreateDisc(ctx context.Context, db *sql.DB, userID int64, p DiscParams) (*model.Disc, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO discs (user_id, name, phone, color, brand, plastic, mold, location, notes,
		                    initial_template, initial_custom, initial_text,
		                    reminder_template, reminder_custom, reminder_text,
		                    extension_template, extension_custom, extension_text)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, p.Name, p.Phone, p.Color, p.Brand, p.Plastic, p.Mold, p.Location, p.Notes,
		p.Initial.TemplateID, p.Initial.Custom, p.Initial.Text,
		p.Reminder.TemplateID, p.Reminder.Custom, p.Reminder.Text,
		p.Extension.TemplateID, p.Extension.Custom, p.Extension.Text,
	)
	if err != nil {
		return nil, fmt.Errorf("creating disc: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting disc id: %w", err)
	}

	return GetDisc(ctx, db, userID, id)
}

// GetDisc returns an account's disc by ID.
func GetDisc(ctx context.Context, db *sql.DB, userID, id int64) (*model.Disc, error) {
	d, err := scanDisc(db.QueryRowContext(ctx,
		`SELECT `+discColumns+` FROM discs WHERE id = ? AND user_id = ?`, id, userID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting disc: %w", err)
	}
	return d, nil
}

// UpdateDisc updates a disc's descriptive fields and notification
// channels. Channel edits are rejected once the corresponding text is
// locked: any channel once the disc leaves awaiting pickup, the initial
// channel once notified, the reminder channel once reminded.
func UpdateDisc(ctx context.Context, db *sql.DB, userID, id int64, p DiscParams) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := scanDisc(tx.QueryRowContext(ctx,
		`SELECT `+discColumns+` FROM discs WHERE id = ? AND user_id = ?`, id, userID,
	))
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("getting disc: %w", err)
	}

	locked := current.Status != model.StatusAwaitingPickup
	if locked || current.Notified {
		if !channelEqual(p.Initial, current.Initial) {
			return ErrTextLocked
		}
	}
	if locked || current.Reminded {
		if !channelEqual(p.Reminder, current.Reminder) {
			return ErrTextLocked
		}
	}
	if locked && !channelEqual(p.Extension, current.Extension) {
		return ErrTextLocked
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE discs SET name = ?, phone = ?, color = ?, brand = ?, plastic = ?, mold = ?,
		        location = ?, notes = ?,
		        initial_template = ?, initial_custom = ?, initial_text = ?,
		        reminder_template = ?, reminder_custom = ?, reminder_text = ?,
		        extension_template = ?, extension_custom = ?, extension_text = ?,
		        updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		p.Name, p.Phone, p.Color, p.Brand, p.Plastic, p.Mold, p.Location, p.Notes,
		p.Initial.TemplateID, p.Initial.Custom, p.Initial.Text,
		p.Reminder.TemplateID, p.Reminder.Custom, p.Reminder.Text,
		p.Extension.TemplateID, p.Extension.Custom, p.Extension.Text,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("updating disc: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing disc update: %w", err)
	}
	return nil
}

func channelEqual(a, b model.Channel) bool {
	if a.Custom != b.Custom || a.Text != b.Text {
		return false
	}
	if (a.TemplateID == nil) != (b.TemplateID == nil) {
		return false
	}
	return a.TemplateID == nil || *a.TemplateID == *b.TemplateID
}

// SetDiscPhoto stores a disc's photo.
func SetDiscPhoto(ctx context.Context, db *sql.DB, userID, id int64, photo []byte, mime string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE discs SET photo = ?, photo_mime = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		photo, mime, id, userID,
	)
	if err != nil {
		return fmt.Errorf("setting disc photo: %w", err)
	}
	return nil
}

// GetDiscPhoto returns a disc's photo data and MIME type.
func GetDiscPhoto(ctx context.Context, db *sql.DB, userID, id int64) ([]byte, string, error) {
	var photo []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT photo, photo_mime FROM discs WHERE id = ? AND user_id = ?`, id, userID,
	).Scan(&photo, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting disc photo: %w", err)
	}
	return photo, mime.String, nil
}

// DeleteDiscs removes an account's discs by id list.
func DeleteDiscs(ctx context.Context, db *sql.DB, userID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := append([]any{userID}, int64Args(ids)...)
	result, err := db.ExecContext(ctx,
		`DELETE FROM discs WHERE user_id = ? AND id IN (`+placeholders(len(ids))+`)`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting discs: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking disc deletion: %w", err)
	}
	return affected, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
