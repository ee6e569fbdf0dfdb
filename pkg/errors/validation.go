package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// extensionIDRegex matches valid extension identifiers: lowercase
// alphanumerics separated by single dots or dashes, e.g. "transcription"
// or "respelling.en-us".
var extensionIDRegex = regexp.MustCompile(`^[a-z0-9]+([.-][a-z0-9]+)*$`)

// ValidateExtensionID validates an extension identifier.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters
//   - Maximum length of 128 characters
//   - Lowercase alphanumerics with single dot/dash separators
//
// Ids appear in reports, cache keys, and URLs, so anything fancier is
// rejected up front.
func ValidateExtensionID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidExtension, "extension id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidExtension, "extension id too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidExtension, "extension id contains control characters")
		}
	}

	if !extensionIDRegex.MatchString(id) {
		return New(ErrCodeInvalidExtension, "invalid extension id: %q", id)
	}

	return nil
}

// ValidateFieldName validates a provides/requires field name such as
// "extras.transcription" or "metadata.pos". Field names are dotted paths
// of simple identifiers.
func ValidateFieldName(field string) error {
	if field == "" {
		return New(ErrCodeInvalidInput, "field name cannot be empty")
	}

	if len(field) > 256 {
		return New(ErrCodeInvalidInput, "field name too long (max 256 characters)")
	}

	for _, part := range strings.Split(field, ".") {
		if part == "" {
			return New(ErrCodeInvalidInput, "field name %q has empty path segment", field)
		}
	}

	for _, r := range field {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "field name %q contains invalid characters", field)
		}
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
