package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// User represents an account. Each account owns its own discs, templates,
// and notification settings.
type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Name         string     `json:"name"`
	LAF          string     `json:"laf"`
	HoldDuration int        `json:"hold_duration"`
	SMSConsent   bool       `json:"sms_consent"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Hold duration bounds, in days.
const (
	MinHoldDuration     = 30
	MaxHoldDuration     = 365
	DefaultHoldDuration = 60
)

// ValidatePassword checks password strength requirements.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

// ValidateEmail performs a minimal sanity check on an email address.
func ValidateEmail(email string) error {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || strings.ContainsAny(email, " \t") {
		return errors.New("invalid email address")
	}
	return nil
}

// ValidateHoldDuration checks that a hold duration is within bounds.
func ValidateHoldDuration(days int) error {
	if days < MinHoldDuration || days > MaxHoldDuration {
		return fmt.Errorf("hold duration must be between %d and %d days", MinHoldDuration, MaxHoldDuration)
	}
	return nil
}
