// Package search parses the disc table's free-text search box: a small
// field:value mini-language over disc records.
package search

import (
	"strconv"
	"strings"
)

// Kind describes how a field's filter value is interpreted.
type Kind int

const (
	// KindText matches by case-insensitive substring.
	KindText Kind = iota
	// KindBool accepts only the literals "true" and "false".
	KindBool
	// KindEnum accepts only the field's enumerated values.
	KindEnum
	// KindRef accepts only well-formed record ids.
	KindRef
)

// Field describes one queryable field.
type Field struct {
	Kind Kind
	Enum []string
}

// Filter is one field-scoped predicate. Impossible marks a fail-closed
// filter whose value was invalid for the field's kind: it matches no
// rows rather than erroring or being ignored.
type Filter struct {
	Value      string
	Kind       Kind
	Impossible bool
}

// Query is a parsed search string.
type Query struct {
	Filters map[string]Filter
	Terms   []string
}

// Empty reports whether the query constrains nothing.
func (q Query) Empty() bool {
	return len(q.Filters) == 0 && len(q.Terms) == 0
}

// Parse splits raw on whitespace into field-scoped filters and general
// terms. A token of the form field:value with a known field becomes a
// filter; the last occurrence of a repeated field wins. Every other
// token is a general term.
func Parse(raw string, fields map[string]Field) Query {
	q := Query{Filters: make(map[string]Filter)}

	for _, token := range strings.Fields(raw) {
		field, value, ok := strings.Cut(token, ":")
		spec, known := fields[field]
		if !ok || !known || value == "" {
			q.Terms = append(q.Terms, token)
			continue
		}

		q.Filters[field] = Filter{
			Value:      value,
			Kind:       spec.Kind,
			Impossible: !validValue(spec, value),
		}
	}

	return q
}

func validValue(spec Field, value string) bool {
	switch spec.Kind {
	case KindBool:
		return value == "true" || value == "false"
	case KindEnum:
		for _, v := range spec.Enum {
			if v == value {
				return true
			}
		}
		return false
	case KindRef:
		id, err := strconv.ParseInt(value, 10, 64)
		return err == nil && id > 0
	}
	return true
}
