package roomform

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9\s\p{Z}-]`)
	slugWhitespace   = regexp.MustCompile(`[\s\p{Z}]+`)
	slugHyphens      = regexp.MustCompile(`-+`)
)

// Slugify lower-cases and trims s, folds accented letters to ASCII, drops
// anything outside [a-z0-9], whitespace and hyphens, then joins words with
// single hyphens. "  Café Room!! " becomes "cafe-room".
func Slugify(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = stripMarks(s)
	s = slugInvalidChars.ReplaceAllString(s, "")
	s = slugWhitespace.ReplaceAllString(s, "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
