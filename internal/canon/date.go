// Package canon holds the pure canonicalization rules applied to raw listing
// values: dates, prices, text and whole records.
package canon

import (
	"regexp"
	"strings"
	"time"
)

// ISOLayout is the canonical calendar date form.
const ISOLayout = "2006-01-02"

var (
	isoPrefix     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	ordinalSuffix = regexp.MustCompile(`(?i)(\d)(st|nd|rd|th)\b`)
	weekdayPrefix = regexp.MustCompile(`(?i)^(monday|tuesday|wednesday|thursday|friday|saturday|sunday|mon|tues|tue|wed|thurs|thur|thu|fri|sat|sun)\.?,?\s+`)
	monthPeriod   = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|jun|jul|aug|sep|sept|oct|nov|dec)\.`)
	septAbbrev    = regexp.MustCompile(`(?i)\bsept\b`)
)

// Tried in order; the first layout that parses wins.
var datedLayouts = []string{
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
	"1/2/2006",
	"1/2/06",
	"1.2.2006",
	"1.2.06",
}

var yearlessLayouts = []string{
	"January 2",
	"Jan 2",
	"2 January",
	"2 Jan",
	"1/2",
}

// ResolveDate converts a free-form listing date into YYYY-MM-DD. Dates that
// carry no year are placed in now's year, or the next one when that day has
// already passed. The second return is false when nothing could be parsed.
func ResolveDate(raw string, now time.Time) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	if prefix := isoPrefix.FindString(s); prefix != "" {
		t, err := time.Parse(ISOLayout, prefix)
		if err != nil {
			return "", false
		}
		return t.Format(ISOLayout), true
	}

	s = cleanDate(s)
	for _, layout := range datedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(ISOLayout), true
		}
	}
	for _, layout := range yearlessLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return rollForward(t.Month(), t.Day(), now)
		}
	}
	return "", false
}

// ResolveDatePtr is ResolveDate over optional values.
func ResolveDatePtr(raw *string, now time.Time) *string {
	if raw == nil {
		return nil
	}
	out, ok := ResolveDate(*raw, now)
	if !ok {
		return nil
	}
	return &out
}

func cleanDate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = weekdayPrefix.ReplaceAllString(s, "")
	s = ordinalSuffix.ReplaceAllString(s, "$1")
	s = monthPeriod.ReplaceAllString(s, "$1")
	s = septAbbrev.ReplaceAllString(s, "Sep")
	return strings.TrimSpace(s)
}

func rollForward(month time.Month, day int, now time.Time) (string, bool) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	candidate, ok := calendarDate(now.Year(), month, day)
	if !ok {
		return "", false
	}
	if candidate.Before(today) {
		if candidate, ok = calendarDate(now.Year()+1, month, day); !ok {
			return "", false
		}
	}
	return candidate.Format(ISOLayout), true
}

// calendarDate rejects days that time.Date would silently normalize, such as
// February 29 in a common year.
func calendarDate(year int, month time.Month, day int) (time.Time, bool) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}
