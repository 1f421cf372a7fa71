package model

import "testing"

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("short"); err == nil {
		t.Error("expected error for short password")
	}
	if err := ValidatePassword("long enough"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"staff@maplehill.test", "a@b"}
	for _, e := range valid {
		if err := ValidateEmail(e); err != nil {
			t.Errorf("ValidateEmail(%q): unexpected error: %v", e, err)
		}
	}

	invalid := []string{"", "nodomain", "@start", "end@", "has space@x.test"}
	for _, e := range invalid {
		if err := ValidateEmail(e); err == nil {
			t.Errorf("ValidateEmail(%q): expected error", e)
		}
	}
}

func TestValidateHoldDuration(t *testing.T) {
	for _, days := range []int{MinHoldDuration, DefaultHoldDuration, MaxHoldDuration} {
		if err := ValidateHoldDuration(days); err != nil {
			t.Errorf("ValidateHoldDuration(%d): unexpected error: %v", days, err)
		}
	}
	for _, days := range []int{0, 29, 366, -1} {
		if err := ValidateHoldDuration(days); err == nil {
			t.Errorf("ValidateHoldDuration(%d): expected error", days)
		}
	}
}
