package validation

import (
	"regexp"
	"strings"
)

var (
	isbnPrefix = regexp.MustCompile(`^ISBN(?:-1[03])?:? `)
	isbn10     = regexp.MustCompile(`^[0-9]{9}[0-9X]$`)
	isbn13     = regexp.MustCompile(`^97[89][0-9]{10}$`)

	// Hyphenated or spaced forms: four groups for ISBN-10, five for ISBN-13.
	// The last group is always the single check character.
	isbn10Grouped = regexp.MustCompile(`^[0-9]{1,5}[- ][0-9]+[- ][0-9]+[- ][0-9X]$`)
	isbn13Grouped = regexp.MustCompile(`^97[89][- ][0-9]{1,5}[- ][0-9]+[- ][0-9]+[- ][0-9]$`)
)

// ValidISBN reports whether s has the shape of an ISBN-10 or ISBN-13, optionally
// prefixed with "ISBN", "ISBN-10" or "ISBN-13". Check digits are not verified.
func ValidISBN(s string) bool {
	s = isbnPrefix.ReplaceAllString(s, "")

	switch {
	case isbn10.MatchString(s), isbn13.MatchString(s):
		return true
	case len(s) == 13 && strings.Count(s, "-")+strings.Count(s, " ") == 3:
		return isbn10Grouped.MatchString(s)
	case len(s) == 17 && strings.Count(s, "-")+strings.Count(s, " ") == 4:
		return isbn13Grouped.MatchString(s)
	default:
		return false
	}
}
