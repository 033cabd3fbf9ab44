package errors

import (
	"strings"
	"unicode"
)

// ValidatePath validates a dataset path given on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//
// GDAL virtual paths (/vsizip/..., /vsicurl/...) are accepted as-is.
func ValidatePath(kind, path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "%s path cannot be empty", kind)
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "%s path too long (max %d characters)", kind, maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s path contains invalid characters", kind)
		}
	}

	return nil
}

// ValidateCreationOption checks that opt has the KEY=VALUE shape GDAL
// expects for dataset creation options.
func ValidateCreationOption(opt string) error {
	key, _, ok := strings.Cut(opt, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return New(ErrCodeInvalidInput, "creation option %q must be KEY=VALUE", opt)
	}
	if strings.ContainsFunc(key, unicode.IsSpace) {
		return New(ErrCodeInvalidInput, "creation option key %q contains whitespace", key)
	}
	return nil
}
