package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxIDLength bounds ids used as file names and document keys.
const maxIDLength = 128

// idRegex matches ids safe to use as a file name or URL segment.
var idRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateID validates a stored chart or session id.
// Ids become file names and URL path segments, so the rules are conservative:
//   - No empty ids
//   - No control characters
//   - No path traversal sequences or separators
//   - Letters, digits, dot, dash and underscore only
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "id cannot be empty")
	}

	if len(id) > maxIDLength {
		return New(ErrCodeInvalidID, "id too long (max %d characters)", maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidID, "id contains invalid control characters")
		}
	}

	if strings.Contains(id, "..") {
		return New(ErrCodeInvalidID, "id cannot contain path traversal sequences (..)")
	}

	if !idRegex.MatchString(id) {
		return New(ErrCodeInvalidID, "invalid id: %q", id)
	}

	return nil
}

// ValidatePath validates a chart file path given on the command line or
// through the HTTP API. Relative and absolute paths are both allowed; null
// bytes and control characters are not.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}

	return nil
}
