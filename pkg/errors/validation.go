package errors

import (
	"strings"
	"unicode"
)

// maxNameLength bounds component and category names.
const maxNameLength = 256

// ValidateName validates a component name.
//
// Names are used as box identities, SVG element ids and cache key material, so
// the rules are conservative:
//   - No empty names
//   - No control characters or whitespace
//   - Maximum length of 256 characters
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "component name cannot be empty")
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidName, "component name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "component name %q contains control characters", name)
		}
		if unicode.IsSpace(r) {
			return New(ErrCodeInvalidName, "component name %q contains whitespace", name)
		}
	}
	return nil
}

// ValidatePath validates a relative output path.
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
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid control characters")
		}
	}

	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain '..' segments")
		}
	}
	return nil
}
