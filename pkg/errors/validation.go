package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateResourceID validates a resource identifier from a diagram description.
//
// The rules are conservative:
//   - No empty ids
//   - No control characters
//   - Maximum length of 256 characters
func ValidateResourceID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidDiagram, "resource id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidDiagram, "resource id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDiagram, "resource id %q contains control characters", id)
		}
	}

	return nil
}

// diagramIDRegex matches the ids handed out by the diagram store.
var diagramIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// ValidateDiagramID validates a stored diagram id. Ids become file names in
// the file store, so anything that could escape the store directory is rejected.
func ValidateDiagramID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "diagram id cannot be empty")
	}
	if !diagramIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid diagram id: %q", id)
	}
	return nil
}

// ValidatePath validates a relative path such as an icon target.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
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
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// SafeFilename turns a diagram name into a download file name stem.
// Path separators, quotes and control characters become underscores;
// an empty result becomes "diagram".
func SafeFilename(name string) string {
	name = strings.TrimSpace(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsControl(r), strings.ContainsRune(`/\:"*?<>|`, r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), ". ")
	if out == "" {
		return "diagram"
	}
	return out
}
