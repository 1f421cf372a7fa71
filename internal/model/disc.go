package model

import (
	"errors"
	"time"
)

// Disc represents a found disc tracked through the pickup lifecycle.
type Disc struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Name      string `json:"name,omitempty"`
	Phone     string `json:"phone"`
	Color     string `json:"color,omitempty"`
	Brand     string `json:"brand,omitempty"`
	Plastic   string `json:"plastic,omitempty"`
	Mold      string `json:"mold,omitempty"`
	Location  string `json:"location,omitempty"`
	Notes     string `json:"notes,omitempty"`
	PhotoMime string `json:"photo_mime,omitempty"`

	Initial   Channel `json:"initial"`
	Reminder  Channel `json:"reminder"`
	Extension Channel `json:"extension"`

	Notified  bool       `json:"notified"`
	Reminded  bool       `json:"reminded"`
	Status    string     `json:"status"`
	HeldUntil *time.Time `json:"held_until,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Channel holds the message source and text for one notification slot.
// Either TemplateID references one of the account's templates, or Custom
// marks Text as free-form (sent verbatim, no substitution). Both unset
// means the slot falls back to the type's default template.
type Channel struct {
	TemplateID *int64 `json:"template_id,omitempty"`
	Custom     bool   `json:"custom,omitempty"`
	Text       string `json:"text,omitempty"`
}

// Disc statuses.
const (
	StatusAwaitingPickup = "awaiting_pickup"
	StatusPickedUp       = "picked_up"
	StatusArchived       = "archived"
)

// ValidDiscStatus reports whether s is a known disc status.
func ValidDiscStatus(s string) bool {
	return s == StatusAwaitingPickup || s == StatusPickedUp || s == StatusArchived
}

// ValidatePhone checks that phone is exactly ten digits.
func ValidatePhone(phone string) error {
	if len(phone) != 10 {
		return errors.New("phone must be exactly 10 digits")
	}
	for _, c := range phone {
		if c < '0' || c > '9' {
			return errors.New("phone must contain only digits")
		}
	}
	return nil
}

// Abandoned reports whether the disc's hold period has lapsed without a
// pickup. Abandonment is derived, never stored: an awaiting-pickup disc
// whose hold date has passed.
func (d *Disc) Abandoned(now time.Time) bool {
	return d.Status == StatusAwaitingPickup && d.HeldUntil != nil && d.HeldUntil.Before(now)
}

// CanNotify reports whether the initial notification may be sent.
func (d *Disc) CanNotify() bool {
	return !d.Notified && d.Status == StatusAwaitingPickup
}

// CanRemind reports whether a reminder may be sent. Requires the initial
// notification to have gone out first.
func (d *Disc) CanRemind() bool {
	return d.Notified && !d.Reminded && d.Status == StatusAwaitingPickup
}

// CanExtend reports whether the hold period may be extended. Covers
// abandoned discs, since abandonment is a sub-state of awaiting pickup.
func (d *Disc) CanExtend() bool {
	return d.Notified && d.Status == StatusAwaitingPickup
}

// CanMarkPickedUp reports whether the disc may be marked as picked up.
func (d *Disc) CanMarkPickedUp() bool {
	return d.Status == StatusAwaitingPickup
}

// CanArchive reports whether the disc may be archived. Only abandoned
// discs qualify, so a picked-up disc can never be archived directly.
func (d *Disc) CanArchive(now time.Time) bool {
	return d.Abandoned(now) && d.Status != StatusArchived
}

// CanRestore reports whether the disc may be returned to awaiting pickup.
func (d *Disc) CanRestore() bool {
	return d.Status == StatusPickedUp || d.Status == StatusArchived
}
