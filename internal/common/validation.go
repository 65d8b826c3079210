package common

import (
	"fmt"
	"slices"
	"strings"

	"resumeforge/internal/errors"
)

// PageSizes are the page size names the layout engine accepts.
var PageSizes = []string{"A4", "Letter"}

// ValidateOutputFormat validates format against configured supported formats
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 {
		return nil // No restrictions configured
	}

	if slices.Contains(supportedFormats, format) {
		return nil
	}

	return errors.NewValidationError(errors.ErrCodeInvalidFormat,
		fmt.Sprintf("unsupported output format '%s'. Supported formats: %v", format, supportedFormats), nil).
		WithContext("format", format)
}

// ValidatePageSize rejects names the layout engine would silently replace.
// An empty name keeps the document's own page size.
func ValidatePageSize(name string) error {
	if name == "" {
		return nil
	}
	for _, size := range PageSizes {
		if strings.EqualFold(strings.TrimSpace(name), size) {
			return nil
		}
	}
	return errors.NewValidationError(errors.ErrCodeInvalidRequest,
		fmt.Sprintf("unsupported page size '%s'. Supported sizes: %v", name, PageSizes), nil).
		WithContext("page_size", name)
}
