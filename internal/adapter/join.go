package adapter

import (
	"strings"

	"github.com/JakeFAU/showcrawl/internal/canon"
	"github.com/JakeFAU/showcrawl/internal/show"
)

// Field selects one optional string field of a candidate.
type Field func(*show.CandidateRecord) **string

// Fields commonly filled by cross-document joins.
var (
	TimeField     Field = func(r *show.CandidateRecord) **string { return &r.Time }
	PriceField    Field = func(r *show.CandidateRecord) **string { return &r.Price }
	ImageField    Field = func(r *show.CandidateRecord) **string { return &r.ImageURL }
	AgeLimitField Field = func(r *show.CandidateRecord) **string { return &r.AgeLimit }
)

// TitleLookup maps normalized titles to a value found in a second document.
type TitleLookup map[string]string

// Add records value for title unless the title is already present or either
// side is blank.
func (l TitleLookup) Add(title, value string) {
	key := canon.TitleKey(title)
	value = strings.TrimSpace(value)
	if key == "" || value == "" {
		return
	}
	if _, exists := l[key]; !exists {
		l[key] = value
	}
}

// JoinByTitle fills field on each record whose title matches a lookup entry
// exactly after lowercasing and trimming. Records that already carry the
// field, or that have no match, are left alone. It returns how many records
// were filled.
func JoinByTitle(records []show.CandidateRecord, lookup TitleLookup, field Field) int {
	if len(lookup) == 0 {
		return 0
	}
	filled := 0
	for i := range records {
		slot := field(&records[i])
		if *slot != nil {
			continue
		}
		value, ok := lookup[canon.TitleKey(show.Value(records[i].Title))]
		if !ok {
			continue
		}
		*slot = show.String(value)
		filled++
	}
	return filled
}
