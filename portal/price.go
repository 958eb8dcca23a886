package portal

import (
	"fmt"
	"strconv"
	"strings"
)

// ParsePrice converts localized price text into a number.
//
// The portal renders German-locale amounts ("1.234,56 €", "29,90€",
// "42,5 ct/kWh"): "." is a thousands separator and "," the decimal mark.
// Everything that is not a digit, separator or sign is stripped before
// parsing, so currency symbols and unit suffixes are tolerated.
func ParsePrice(text string) (float64, error) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(text) {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',', r == '-':
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, fmt.Errorf("no numeric content in %q", text)
	}

	// A comma marks the decimal point; any dots left of it are thousands
	// separators. Without a comma the text is already machine-formatted.
	if strings.Contains(cleaned, ",") {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("unparsable price %q: %w", text, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative price %q", text)
	}
	return v, nil
}

// parseOptionalPrice parses price text into a pointer, mapping both absent
// elements and unparsable text to nil. An absent value must stay
// distinguishable from a genuine 0.00.
func parseOptionalPrice(text string) *float64 {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	v, err := ParsePrice(text)
	if err != nil {
		return nil
	}
	return &v
}
