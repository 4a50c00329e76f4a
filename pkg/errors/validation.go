package errors

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// maxIDLength bounds node, edge and attribute identifiers accepted from
// untrusted callers (HTTP requests, config files).
const maxIDLength = 256

// ValidateNodeID validates a node ID received from an external caller.
//
// The rules are intentionally conservative:
//   - No empty IDs
//   - No control characters or null bytes
//   - Maximum length of 256 characters
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node ID cannot be empty")
	}
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "node ID too long (max %d characters)", maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node ID contains invalid control characters")
		}
	}
	return nil
}

// attributeNameRegex matches data attribute names usable for clustering and
// attribute sizing.
var attributeNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)

// ValidateAttributeName validates the name of a node data attribute.
// An empty name is valid and means "not configured".
func ValidateAttributeName(name string) error {
	if name == "" {
		return nil
	}
	if len(name) > maxIDLength {
		return New(ErrCodeInvalidOptions, "attribute name too long (max %d characters)", maxIDLength)
	}
	if !attributeNameRegex.MatchString(name) {
		return New(ErrCodeInvalidOptions, "invalid attribute name: %q", name)
	}
	return nil
}

// ValidateSessionID validates a session identifier. Sessions are keyed by
// UUIDs.
func ValidateSessionID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid session ID %q", id)
	}
	return nil
}

// ValidatePath validates a relative file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}
	return nil
}
