package model

import (
	"errors"
	"strings"
	"time"
)

// Template is a reusable message pattern for one notification type.
// Content may reference disc and account fields with $-prefixed variables.
type Template struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Type      string    `json:"type"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Template types, one per notification channel.
const (
	TemplateInitial   = "initial"
	TemplateReminder  = "reminder"
	TemplateExtension = "extension"
)

// ValidTemplateType reports whether t is a known template type.
func ValidTemplateType(t string) bool {
	return t == TemplateInitial || t == TemplateReminder || t == TemplateExtension
}

// ValidateTemplateContent checks that content carries the required
// variables. Every outgoing message must identify the lost-and-found and
// the pickup deadline.
func ValidateTemplateContent(content string) error {
	if !strings.Contains(content, "$laf") {
		return errors.New("template must contain $laf")
	}
	if !strings.Contains(content, "$heldUntil") {
		return errors.New("template must contain $heldUntil")
	}
	return nil
}
