package errors

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// ValidateNodeID validates a node id received from outside the process.
// It rejects empty ids, ids longer than 256 characters and ids containing
// control characters or double quotes (they would break DOT output).
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "node id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node id contains invalid control characters")
		}
	}

	if strings.Contains(id, `"`) {
		return New(ErrCodeInvalidInput, "node id contains invalid characters: %q", `"`)
	}

	return nil
}

// ValidateResourceID validates a graph or session id issued by the server.
func ValidateResourceID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Wrap(ErrCodeInvalidInput, err, "malformed id %q", id)
	}
	return nil
}
