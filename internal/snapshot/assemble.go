// Package snapshot builds the persisted snapshot from deduplicated records.
package snapshot

import (
	"sort"
	"time"

	"github.com/JakeFAU/showcrawl/internal/show"
)

// Assembler applies presentation fixes and ordering to a run's records.
type Assembler struct {
	overrides Overrides
}

// NewAssembler creates an Assembler using the given override table.
func NewAssembler(overrides Overrides) *Assembler {
	if overrides == nil {
		overrides = Overrides{}
	}
	return &Assembler{overrides: overrides}
}

// Assemble applies image overrides, orders shows by date with undated shows
// last, and stamps the result. The input slice is not modified.
func (a *Assembler) Assemble(records []show.ShowRecord, errs []show.SourceError, generatedAt time.Time, runID string) show.Snapshot {
	shows := make([]show.ShowRecord, len(records))
	copy(shows, records)

	for i := range shows {
		if image, ok := a.overrides.Lookup(shows[i]); ok {
			shows[i].ImageURL = show.String(image)
		}
	}
	SortByDate(shows)

	failures := make([]show.SourceError, len(errs))
	copy(failures, errs)

	return show.Snapshot{
		GeneratedAt: generatedAt.UTC(),
		RunID:       runID,
		Errors:      failures,
		Shows:       shows,
	}
}

// SortByDate orders records by ascending date. Records without a date go
// last; ties keep their input order.
func SortByDate(records []show.ShowRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		di, dj := records[i].Date, records[j].Date
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return *di < *dj
		}
	})
}
