package canon

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var statusPrefix = regexp.MustCompile(`(?i)^(sold\s*out|cancell?ed|postponed|rescheduled|low\s+tickets|few\s+tickets\s+left)\s*[|:\-–—]\s*`)

// Trim removes leading and trailing whitespace.
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// Collapse trims s, folds runs of whitespace into single spaces and applies
// Unicode NFC so visually identical strings compare equal.
func Collapse(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}

// StripStatusPrefix removes ticketing status markers such as "SOLD OUT |" or
// "CANCELLED -" from the front of a title. Stacked markers are all removed.
func StripStatusPrefix(s string) string {
	out := strings.TrimSpace(s)
	for {
		loc := statusPrefix.FindStringIndex(out)
		if loc == nil {
			return out
		}
		out = strings.TrimSpace(out[loc[1]:])
	}
}

// CleanTitle is Collapse followed by StripStatusPrefix.
func CleanTitle(s string) string {
	return StripStatusPrefix(Collapse(s))
}

// TitleKey is the match key used when joining records across documents.
func TitleKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CollapsePtr applies Collapse to an optional value. Blank results become nil.
func CollapsePtr(p *string) *string {
	if p == nil {
		return nil
	}
	out := Collapse(*p)
	if out == "" {
		return nil
	}
	return &out
}
