package canon

import (
	"regexp"
	"strings"
)

// Free is the canonical zero-cost price.
const Free = "Free"

var (
	freeForms = map[string]struct{}{
		"free":           {},
		"free admission": {},
		"0":              {},
		"$0":             {},
	}
	zeroCents     = regexp.MustCompile(`(\d)\.00\b`)
	rangeDash     = regexp.MustCompile(`(\d)\s*[-–]\s*(\$?\d)`)
	bareAfterDash = regexp.MustCompile(`–(\d)`)
)

// NormalizePrice rewrites a listing price into "Free", "$N" or "$N–$M".
// Values that match none of those shapes are kept as trimmed text. The second
// return is false for blank input.
func NormalizePrice(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	if isFree(s) {
		return Free, true
	}
	s = zeroCents.ReplaceAllString(s, "$1")
	if isFree(s) {
		return Free, true
	}
	s = rangeDash.ReplaceAllString(s, "$1–$2")
	if s[0] >= '0' && s[0] <= '9' {
		s = "$" + s
	}
	s = bareAfterDash.ReplaceAllString(s, "–$$$1")
	return s, true
}

func isFree(s string) bool {
	_, ok := freeForms[strings.ToLower(s)]
	return ok
}
