package model

import (
	"testing"
	"time"
)

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		phone   string
		wantErr bool
	}{
		{"", true},
		{"123456789", true},
		{"12345678901", true},
		{"123456789a", true},
		{"503 555 01", true},
		{"5035550199", false},
		{"0000000000", false},
	}

	for _, tt := range tests {
		err := ValidatePhone(tt.phone)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePhone(%q) error = %v, wantErr %v", tt.phone, err, tt.wantErr)
		}
	}
}

func TestAbandoned(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name     string
		disc     Disc
		expected bool
	}{
		{"never notified", Disc{Status: StatusAwaitingPickup}, false},
		{"hold not expired", Disc{Status: StatusAwaitingPickup, Notified: true, HeldUntil: &future}, false},
		{"hold expired", Disc{Status: StatusAwaitingPickup, Notified: true, HeldUntil: &past}, true},
		{"picked up", Disc{Status: StatusPickedUp, Notified: true, HeldUntil: &past}, false},
		{"archived", Disc{Status: StatusArchived, Notified: true, HeldUntil: &past}, false},
	}

	for _, tt := range tests {
		if got := tt.disc.Abandoned(now); got != tt.expected {
			t.Errorf("%s: Abandoned = %v, want %v", tt.name, got, tt.expected)
		}
	}
}

func TestFreshDiscActions(t *testing.T) {
	d := Disc{Status: StatusAwaitingPickup}
	now := time.Now()

	if !d.CanNotify() {
		t.Error("fresh disc should allow notify")
	}
	if d.CanRemind() {
		t.Error("fresh disc should not allow remind")
	}
	if d.CanExtend() {
		t.Error("fresh disc should not allow extend")
	}
	if d.CanArchive(now) {
		t.Error("fresh disc should not allow archive")
	}
	if !d.CanMarkPickedUp() {
		t.Error("fresh disc should allow pickup")
	}
	if d.CanRestore() {
		t.Error("fresh disc should not allow restore")
	}
}

func TestOverdueDiscActions(t *testing.T) {
	// Notified 70 days ago with a 60-day hold: hold lapsed 10 days ago.
	now := time.Now()
	heldUntil := now.Add(-10 * 24 * time.Hour)
	d := Disc{Status: StatusAwaitingPickup, Notified: true, HeldUntil: &heldUntil}

	if !d.Abandoned(now) {
		t.Error("overdue disc should be abandoned")
	}
	if !d.CanArchive(now) {
		t.Error("overdue disc should allow archive")
	}
	if !d.CanExtend() {
		t.Error("overdue disc should allow extend")
	}
	if !d.CanMarkPickedUp() {
		t.Error("overdue disc should allow pickup")
	}
	if !d.CanRemind() {
		t.Error("overdue unreminded disc should allow remind")
	}
}

func TestNotifyRemindExclusive(t *testing.T) {
	// CanRemind must be false whenever CanNotify is true, for every
	// combination of flags and status.
	for _, notified := range []bool{false, true} {
		for _, reminded := range []bool{false, true} {
			for _, status := range []string{StatusAwaitingPickup, StatusPickedUp, StatusArchived} {
				d := Disc{Status: status, Notified: notified, Reminded: reminded}
				if d.CanNotify() && d.CanRemind() {
					t.Errorf("notify and remind both allowed for notified=%v reminded=%v status=%s",
						notified, reminded, status)
				}
			}
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, status := range []string{StatusPickedUp, StatusArchived} {
		d := Disc{Status: status, Notified: true}
		if d.CanNotify() || d.CanRemind() || d.CanExtend() || d.CanMarkPickedUp() {
			t.Errorf("status %s should only allow restore", status)
		}
		if !d.CanRestore() {
			t.Errorf("status %s should allow restore", status)
		}
	}
}
