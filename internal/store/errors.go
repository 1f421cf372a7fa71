package store

import (
	"errors"
	"strings"
)

// Constraint errors surfaced to handlers as field-scoped validation
// messages. Missing rows are signalled with nil results, not errors.
var (
	// ErrDuplicateName is returned when a template name is already in
	// use by the account (across all types).
	ErrDuplicateName = errors.New("name already in use")

	// ErrDuplicateEmail is returned when an email is already registered
	// to an active account.
	ErrDuplicateEmail = errors.New("email already in use")

	// ErrDefaultTemplate is returned when deleting or re-typing a
	// default template.
	ErrDefaultTemplate = errors.New("template is the default for its type")

	// ErrTemplateInUse is returned when re-typing a template referenced
	// by at least one disc.
	ErrTemplateInUse = errors.New("template is referenced by a disc")

	// ErrTextLocked is returned when editing notification text that has
	// become immutable (sent, or disc no longer awaiting pickup).
	ErrTextLocked = errors.New("notification text can no longer be edited")
)

// isUniqueViolation reports whether err is a SQLite unique-constraint
// failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
