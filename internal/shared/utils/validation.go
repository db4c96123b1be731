package utils

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Request size limits (in bytes)
const (
	MaxRequestBodySize = 2 * 1024 * 1024 // chat bodies carry the research context
	MaxMessageSize     = 64 * 1024
	MaxQuerySize       = 2 * 1024
)

// Field length limits
const (
	MaxUsernameLength   = 64
	MaxPasswordBytes    = 72 // bcrypt rejects anything longer
	MaxCredentialLength = 512
	MaxModelLength      = 256
)

// ValidateString checks presence, rune length and NUL bytes
func ValidateString(value, fieldName string, maxLen int, required bool) error {
	if value == "" {
		if required {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}

	if utf8.RuneCountInString(value) > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	if strings.ContainsRune(value, 0) {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}

	return nil
}

// ValidateUsername requires a non-empty name without whitespace or control characters
func ValidateUsername(username string) error {
	if err := ValidateString(username, "username", MaxUsernameLength, true); err != nil {
		return err
	}

	for _, r := range username {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("username must not contain whitespace or control characters")
		}
	}

	return nil
}

// ValidatePassword requires a non-empty password that bcrypt can hash in full
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("password must not exceed %d bytes", MaxPasswordBytes)
	}
	return nil
}

// ValidateMessage checks a chat message. Whitespace-only counts as empty.
func ValidateMessage(message string) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("message is required")
	}
	if len(message) > MaxMessageSize {
		return fmt.Errorf("message exceeds %d bytes", MaxMessageSize)
	}
	return nil
}

// ValidateQuery checks a research query
func ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query is required")
	}
	if len(query) > MaxQuerySize {
		return fmt.Errorf("query exceeds %d bytes", MaxQuerySize)
	}
	return nil
}

// ValidateCredential checks an optional API key, engine id or model name
func ValidateCredential(value, fieldName string) error {
	limit := MaxCredentialLength
	if fieldName == "openRouterModel" {
		limit = MaxModelLength
	}
	if err := ValidateString(value, fieldName, limit, false); err != nil {
		return err
	}
	if strings.TrimSpace(value) != value {
		return fmt.Errorf("%s must not have leading or trailing whitespace", fieldName)
	}
	return nil
}
