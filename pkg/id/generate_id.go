package id

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a random (v4) UUID in canonical 36-char form.
func NewID() string {
	return uuid.NewString()
}

// NewID32 returns exactly 32 hex characters (a UUID without separators).
func NewID32() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Valid reports whether s parses as a UUID in either form.
func Valid(s string) bool {
	_, err := uuid.Parse(strings.TrimSpace(s))
	return err == nil
}
