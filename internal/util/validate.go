package util

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxMessageLength is the longest chat message the API accepts, in runes.
const MaxMessageLength = 4000

// validIDChars matches characters that are safe inside a URL path segment.
var validIDChars = regexp.MustCompile(`^[a-zA-Z0-9_\-.]+$`)

// ValidateResourceID checks that a session or room id can be used as a
// path segment of the remote API:
//   - Not empty, at most 128 characters
//   - Only alphanumeric characters, hyphens, underscores, and periods
//   - Not "." or ".."
func ValidateResourceID(id string) error {
	if id == "" {
		return fmt.Errorf("resource id must not be empty")
	}
	if len(id) > 128 {
		return fmt.Errorf("resource id must be at most 128 characters, got %d", len(id))
	}
	if !validIDChars.MatchString(id) {
		return fmt.Errorf("resource id %q contains invalid characters (only a-z, A-Z, 0-9, hyphens, underscores, and periods are allowed)", id)
	}
	if id == "." || id == ".." {
		return fmt.Errorf("resource id %q is reserved", id)
	}
	return nil
}

// ValidateMessage checks that chat content is non-blank and within
// MaxMessageLength.
func ValidateMessage(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("message must not be empty")
	}
	if n := utf8.RuneCountInString(content); n > MaxMessageLength {
		return fmt.Errorf("message must be at most %d characters, got %d", MaxMessageLength, n)
	}
	return nil
}

// NormalizeKey lowercases and trims s for use as a lookup key (config
// keys, action types, keychain accounts).
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
