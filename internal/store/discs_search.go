package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lostflight/lostflight/internal/model"
	"github.com/lostflight/lostflight/internal/search"
)

// discFieldColumns maps queryable field names to disc columns. Kept next
// to DiscSearchFields so the two can't drift apart.
var discFieldColumns = map[string]string{
	"name":               "name",
	"phone":              "phone",
	"color":              "color",
	"brand":              "brand",
	"plastic":            "plastic",
	"mold":               "mold",
	"location":           "location",
	"notes":              "notes",
	"notified":           "notified",
	"reminded":           "reminded",
	"status":             "status",
	"initial_template":   "initial_template",
	"reminder_template":  "reminder_template",
	"extension_template": "extension_template",
}

// freeTextColumns are the columns general search terms match against.
var freeTextColumns = []string{
	"name", "phone", "color", "brand", "plastic", "mold", "location", "notes",
	"initial_text", "reminder_text", "extension_text",
}

// DiscSearchFields returns the queryable fields for disc searches.
func DiscSearchFields() map[string]search.Field {
	return map[string]search.Field{
		"name":               {Kind: search.KindText},
		"phone":              {Kind: search.KindText},
		"color":              {Kind: search.KindText},
		"brand":              {Kind: search.KindText},
		"plastic":            {Kind: search.KindText},
		"mold":               {Kind: search.KindText},
		"location":           {Kind: search.KindText},
		"notes":              {Kind: search.KindText},
		"notified":           {Kind: search.KindBool},
		"reminded":           {Kind: search.KindBool},
		"status":             {Kind: search.KindEnum, Enum: []string{model.StatusAwaitingPickup, model.StatusPickedUp, model.StatusArchived}},
		"initial_template":   {Kind: search.KindRef},
		"reminder_template":  {Kind: search.KindRef},
		"extension_template": {Kind: search.KindRef},
	}
}

// SearchDiscs returns an account's discs matching a parsed query, newest
// first. The account predicate is always applied; an empty query lists
// everything the account owns.
func SearchDiscs(ctx context.Context, db *sql.DB, userID int64, q search.Query) ([]model.Disc, error) {
	var where strings.Builder
	where.WriteString("user_id = ?")
	args := []any{userID}

	for field, f := range q.Filters {
		if f.Impossible {
			// Fail-closed: an invalid value matches no rows.
			where.WriteString(" AND 1 = 0")
			continue
		}
		col := discFieldColumns[field]
		switch f.Kind {
		case search.KindText:
			fmt.Fprintf(&where, ` AND lower(%s) LIKE ? ESCAPE '\'`, col)
			args = append(args, "%"+escapeLike(strings.ToLower(f.Value))+"%")
		case search.KindBool:
			fmt.Fprintf(&where, " AND %s = ?", col)
			args = append(args, f.Value == "true")
		default:
			fmt.Fprintf(&where, " AND %s = ?", col)
			args = append(args, f.Value)
		}
	}

	for _, term := range q.Terms {
		ors := make([]string, len(freeTextColumns))
		for i, col := range freeTextColumns {
			ors[i] = fmt.Sprintf(`lower(%s) LIKE ? ESCAPE '\'`, col)
			args = append(args, "%"+escapeLike(strings.ToLower(term))+"%")
		}
		where.WriteString(" AND (" + strings.Join(ors, " OR ") + ")")
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+discColumns+` FROM discs WHERE `+where.String()+` ORDER BY created_at DESC, id DESC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("searching discs: %w", err)
	}
	defer rows.Close()

	return scanDiscs(rows)
}

func scanDiscs(rows *sql.Rows) ([]model.Disc, error) {
	var discs []model.Disc
	for rows.Next() {
		d, err := scanDisc(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning disc: %w", err)
		}
		discs = append(discs, *d)
	}
	return discs, rows.Err()
}

// escapeLike escapes LIKE wildcards in a user-supplied term.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
