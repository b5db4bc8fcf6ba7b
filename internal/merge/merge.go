// Package merge collapses duplicate show records.
package merge

import (
	"github.com/JakeFAU/showcrawl/internal/show"
)

// Dedup keeps the first record seen for each key and drops the rest without
// merging any of their fields. Survivors keep their relative order. The second
// return is the number of records dropped.
func Dedup(records []show.ShowRecord) ([]show.ShowRecord, int) {
	seen := make(map[show.Key]struct{}, len(records))
	out := make([]show.ShowRecord, 0, len(records))
	for _, r := range records {
		key := r.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out, len(records) - len(out)
}

// Collapse merges duplicates emitted by a single source. The first occurrence
// keeps its position and its values; later duplicates only fill fields the
// first occurrence left absent.
func Collapse(records []show.ShowRecord) []show.ShowRecord {
	index := make(map[show.Key]int, len(records))
	out := make([]show.ShowRecord, 0, len(records))
	for _, r := range records {
		key := r.Key()
		if i, dup := index[key]; dup {
			out[i] = fill(out[i], r)
			continue
		}
		index[key] = len(out)
		out = append(out, r)
	}
	return out
}

func fill(dst, src show.ShowRecord) show.ShowRecord {
	dst.VenueURL = first(dst.VenueURL, src.VenueURL)
	dst.Date = first(dst.Date, src.Date)
	dst.Time = first(dst.Time, src.Time)
	dst.Price = first(dst.Price, src.Price)
	dst.Description = first(dst.Description, src.Description)
	dst.EventURL = first(dst.EventURL, src.EventURL)
	dst.AgeLimit = first(dst.AgeLimit, src.AgeLimit)
	dst.ImageURL = first(dst.ImageURL, src.ImageURL)
	if len(dst.Tags) == 0 && len(src.Tags) > 0 {
		dst.Tags = append([]string{}, src.Tags...)
	}
	return dst
}

func first(a, b *string) *string {
	if a != nil {
		return a
	}
	return b
}
