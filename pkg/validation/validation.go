package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalidInput indicates the input failed validation
var ErrInvalidInput = errors.New("invalid input")

const maxFeatureNameLength = 256

const utf8BOM = "\ufeff"

// SanitizeString removes potentially dangerous characters and trims whitespace
func SanitizeString(input string) string {
	input = strings.TrimSpace(input)

	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters except newline and tab
	var builder strings.Builder
	for _, r := range input {
		if !unicode.IsControl(r) || r == '\n' || r == '\t' {
			builder.WriteRune(r)
		}
	}

	return builder.String()
}

// SanitizeHeader normalises a CSV header cell: strips a leading byte order
// mark, control characters and surrounding whitespace.
func SanitizeHeader(name string) string {
	name = strings.TrimPrefix(name, utf8BOM)
	return strings.TrimSpace(SanitizeString(name))
}

// ValidateFeatureName checks that a manifest entry can name a CSV column.
// Any header text is allowed as long as it holds no comma or control
// character and survives SanitizeHeader unchanged.
func ValidateFeatureName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: feature name cannot be empty", ErrInvalidInput)
	}

	if len(name) > maxFeatureNameLength {
		return fmt.Errorf("%w: feature name exceeds %d bytes", ErrInvalidInput, maxFeatureNameLength)
	}

	if strings.ContainsRune(name, ',') {
		return fmt.Errorf("%w: feature name %q contains a comma", ErrInvalidInput, name)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: feature name %q contains a control character", ErrInvalidInput, name)
		}
	}

	if SanitizeHeader(name) != name {
		return fmt.Errorf("%w: feature name %q has surrounding whitespace or a byte order mark", ErrInvalidInput, name)
	}

	return nil
}

// ValidateUniqueNames returns an error naming the first duplicate.
func ValidateUniqueNames(names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			return fmt.Errorf("%w: duplicate name %q", ErrInvalidInput, n)
		}
		seen[n] = struct{}{}
	}
	return nil
}

// ValidateProbability checks that p is a finite value in [0, 1]
func ValidateProbability(p float64) error {
	if p != p {
		return fmt.Errorf("%w: probability is NaN", ErrInvalidInput)
	}
	if p < 0 || p > 1 {
		return fmt.Errorf("%w: probability %v outside [0, 1]", ErrInvalidInput, p)
	}
	return nil
}
