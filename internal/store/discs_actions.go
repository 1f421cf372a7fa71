package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lostflight/lostflight/internal/model"
)

// Batch lifecycle actions. Each action re-validates eligibility inside
// the transaction and acts only on the ids that pass; ineligible ids are
// skipped without error. All updates for a batch commit atomically.

// NotifyDiscs flags eligible discs as notified and starts their hold
// period. Returns the updated discs so callers can render and send the
// initial notifications.
func NotifyDiscs(ctx context.Context, db *sql.DB, userID int64, ids []int64, heldUntil time.Time) ([]model.Disc, error) {
	eligible, err := updateEligible(ctx, db, userID, ids,
		`notified = 0 AND status = 'awaiting_pickup'`,
		`notified = 1, held_until = ?`, heldUntil,
	)
	if err != nil {
		return nil, fmt.Errorf("notifying discs: %w", err)
	}
	return discsByIDs(ctx, db, userID, eligible)
}

// RemindDiscs flags eligible discs as reminded. Returns the updated
// discs so callers can render and send the reminders.
func RemindDiscs(ctx context.Context, db *sql.DB, userID int64, ids []int64) ([]model.Disc, error) {
	eligible, err := updateEligible(ctx, db, userID, ids,
		`notified = 1 AND reminded = 0 AND status = 'awaiting_pickup'`,
		`reminded = 1`,
	)
	if err != nil {
		return nil, fmt.Errorf("reminding discs: %w", err)
	}
	return discsByIDs(ctx, db, userID, eligible)
}

// ExtendDiscs pushes eligible discs' hold dates out by the given number
// of days. Abandoned discs are eligible: extending is how staff grant
// more time after the hold lapses. Returns the updated discs so callers
// can render and send the extension notices.
func ExtendDiscs(ctx context.Context, db *sql.DB, userID int64, ids []int64, days int) ([]model.Disc, error) {
	if len(ids) == 0 || days <= 0 {
		return nil, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	args := append([]any{userID}, int64Args(ids)...)
	rows, err := tx.QueryContext(ctx,
		`SELECT id, held_until FROM discs
		 WHERE user_id = ? AND id IN (`+placeholders(len(ids))+`)
		   AND notified = 1 AND status = 'awaiting_pickup' AND held_until IS NOT NULL`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("selecting discs to extend: %w", err)
	}

	type extension struct {
		id        int64
		heldUntil time.Time
	}
	var extensions []extension
	for rows.Next() {
		var e extension
		if err := rows.Scan(&e.id, &e.heldUntil); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning disc to extend: %w", err)
		}
		extensions = append(extensions, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("selecting discs to extend: %w", err)
	}

	eligible := make([]int64, 0, len(extensions))
	for _, e := range extensions {
		_, err := tx.ExecContext(ctx,
			`UPDATE discs SET held_until = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			e.heldUntil.AddDate(0, 0, days), e.id,
		)
		if err != nil {
			return nil, fmt.Errorf("extending disc %d: %w", e.id, err)
		}
		eligible = append(eligible, e.id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing extensions: %w", err)
	}

	return discsByIDs(ctx, db, userID, eligible)
}

// MarkPickedUp moves eligible discs to picked up. Returns how many rows
// changed.
func MarkPickedUp(ctx context.Context, db *sql.DB, userID int64, ids []int64) (int64, error) {
	return updateStatus(ctx, db, userID, ids,
		`status = 'awaiting_pickup'`, model.StatusPickedUp)
}

// ArchiveDiscs moves eligible abandoned discs to archived. Only discs
// whose hold date has passed qualify.
func ArchiveDiscs(ctx context.Context, db *sql.DB, userID int64, ids []int64, now time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := append([]any{model.StatusArchived, now, userID}, int64Args(ids)...)
	result, err := db.ExecContext(ctx,
		`UPDATE discs SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE held_until IS NOT NULL AND held_until < ?
		   AND user_id = ? AND id IN (`+placeholders(len(ids))+`)
		   AND status = 'awaiting_pickup'`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("archiving discs: %w", err)
	}
	return result.RowsAffected()
}

// RestoreDiscs moves eligible picked-up or archived discs back to
// awaiting pickup.
func RestoreDiscs(ctx context.Context, db *sql.DB, userID int64, ids []int64) (int64, error) {
	return updateStatus(ctx, db, userID, ids,
		`status IN ('picked_up', 'archived')`, model.StatusAwaitingPickup)
}

func updateStatus(ctx context.Context, db *sql.DB, userID int64, ids []int64, predicate, status string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := append([]any{status, userID}, int64Args(ids)...)
	result, err := db.ExecContext(ctx,
		`UPDATE discs SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE user_id = ? AND id IN (`+placeholders(len(ids))+`) AND `+predicate,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("updating disc status: %w", err)
	}
	return result.RowsAffected()
}

// updateEligible selects the ids passing predicate inside a transaction,
// applies set to them, and returns the ids acted on.
func updateEligible(ctx context.Context, db *sql.DB, userID int64, ids []int64, predicate, set string, setArgs ...any) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	args := append([]any{userID}, int64Args(ids)...)
	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM discs
		 WHERE user_id = ? AND id IN (`+placeholders(len(ids))+`) AND `+predicate,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("selecting eligible discs: %w", err)
	}

	var eligible []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning disc id: %w", err)
		}
		eligible = append(eligible, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("selecting eligible discs: %w", err)
	}

	if len(eligible) > 0 {
		updateArgs := append(append([]any{}, setArgs...), int64Args(eligible)...)
		_, err = tx.ExecContext(ctx,
			`UPDATE discs SET `+set+`, updated_at = CURRENT_TIMESTAMP
			 WHERE id IN (`+placeholders(len(eligible))+`)`,
			updateArgs...,
		)
		if err != nil {
			return nil, fmt.Errorf("updating eligible discs: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing batch update: %w", err)
	}

	return eligible, nil
}

// discsByIDs returns an account's discs for an id list, in id order.
func discsByIDs(ctx context.Context, db *sql.DB, userID int64, ids []int64) ([]model.Disc, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := append([]any{userID}, int64Args(ids)...)
	rows, err := db.QueryContext(ctx,
		`SELECT `+discColumns+` FROM discs
		 WHERE user_id = ? AND id IN (`+placeholders(len(ids))+`) ORDER BY id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("getting discs: %w", err)
	}
	defer rows.Close()

	return scanDiscs(rows)
}
