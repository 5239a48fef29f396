package errors

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// studentIDRegex matches student identifiers: letters, digits, dot, dash and
// underscore. Identifiers also name record files, so the set is conservative.
var studentIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateStudentID validates a student identifier for safety.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters
//   - No path traversal sequences
//   - Maximum length of 64 characters
func ValidateStudentID(id string) error {
	if id == "" {
		return New(ErrCodeUnauthorized, "student id is required")
	}
	if len(id) > 64 {
		return New(ErrCodeInvalidStudent, "student id too long (max 64 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidStudent, "student id contains invalid control characters")
		}
	}
	if strings.Contains(id, "..") {
		return New(ErrCodeInvalidStudent, "student id contains invalid characters: %q", "..")
	}
	if !studentIDRegex.MatchString(id) {
		return New(ErrCodeInvalidStudent, "invalid student id: %q", id)
	}
	return nil
}

// ParseDeptID parses a department id. Zero selects universal courses only.
func ParseDeptID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, New(ErrCodeInvalidDepartment, "invalid department id: %q", s)
	}
	if id < 0 {
		return 0, New(ErrCodeInvalidDepartment, "department id must be non-negative: %d", id)
	}
	return id, nil
}

// ParseCourseID parses a positive course id.
func ParseCourseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, New(ErrCodeInvalidInput, "invalid course id: %q", s)
	}
	return id, nil
}

// ValidatePath validates a relative file path, such as a catalog path taken
// from a request or config file.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidInput, "path cannot contain path traversal sequences (..)")
	}
	return nil
}
