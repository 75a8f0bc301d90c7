package errors

import (
	"strings"
	"unicode"
)

// ValidateCoordinate validates a Maven coordinate segment (groupId, artifactId
// or version) for safety. Empty segments are rejected; coordinate identity
// requires both groupId and artifactId.
//
// The validation rules are intentionally conservative:
//   - No empty values
//   - No control characters or whitespace
//   - No path separators (segments end up in repository URLs)
//   - Maximum length of 256 characters
func ValidateCoordinate(field, value string) error {
	if value == "" {
		return New(ErrCodeInvalidNode, "%s cannot be empty", field)
	}

	if len(value) > 256 {
		return New(ErrCodeInvalidNode, "%s too long (max 256 characters)", field)
	}

	for _, r := range value {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidNode, "%s contains invalid characters: %q", field, value)
		}
	}

	if strings.ContainsAny(value, "/\\") || strings.Contains(value, "..") {
		return New(ErrCodeInvalidNode, "%s contains path characters: %q", field, value)
	}

	return nil
}

// ValidateManifestFilename validates a manifest filename for safety.
// It ensures the filename is a simple basename without path components.
func ValidateManifestFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidManifest, "manifest filename cannot be empty")
	}

	// Must be a simple filename, not a path
	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidManifest, "manifest filename cannot contain path separators")
	}

	// Hidden files are configuration, not manifests
	if strings.HasPrefix(filename, ".") {
		return New(ErrCodeInvalidManifest, "manifest filename cannot be a hidden file")
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
