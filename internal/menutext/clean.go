// Package menutext turns the vendor's annotated menu text into display text
// and extracts the allergen, supplement and dietary metadata embedded in it.
package menutext

import (
	"regexp"
	"strings"
)

// LineBreak is the vendor's explicit line separator inside menu text.
const LineBreak = "[br]"

const (
	maxNameLength    = 250
	truncatedNameLen = 247
	ellipsis         = "…"
)

var (
	parenthetical   = regexp.MustCompile(`\([^)]+\)`)
	supplementGroup = regexp.MustCompile(`\((?:[1-9]|1[0-5])(?:,[1-9]|,1[0-5])*\)`)
	allergenGroup   = regexp.MustCompile(`\([A-N](?:,[A-N])*\)`)
	commaNoSpace    = regexp.MustCompile(`,([^ ])`)
)

// CleanText strips legend lines, additive and allergen markers from raw menu text.
func CleanText(raw string) string {
	lines := strings.Split(raw, LineBreak)
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	// A trailing parenthetical line is the legend, not content.
	if len(lines) > 0 && parenthetical.MatchString(lines[len(lines)-1]) {
		lines = lines[:len(lines)-1]
	}

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = supplementGroup.ReplaceAllString(line, "")
		line = allergenGroup.ReplaceAllString(line, "")
		line = commaNoSpace.ReplaceAllString(line, ", $1")
		if line == "" {
			continue
		}
		out = append(out, line)
	}

	return strings.TrimSpace(strings.Join(out, " "))
}

// TruncateName shortens names longer than 250 characters to 247 characters plus an ellipsis.
func TruncateName(name string) string {
	runes := []rune(name)
	if len(runes) <= maxNameLength {
		return name
	}
	return string(runes[:truncatedNameLen]) + ellipsis
}
