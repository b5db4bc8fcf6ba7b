package canon

import (
	"strings"

	"github.com/JakeFAU/showcrawl/internal/show"
)

// Defaults used when a source omits the required fields.
const (
	UnknownShow  = "Unknown Show"
	UnknownVenue = "Unknown Venue"
)

// Normalize turns a candidate into a ShowRecord. It never fails: missing
// titles and venues get sentinel values, a supplied price is canonicalized and
// tags default to an empty list. Other optional fields pass through as given.
func Normalize(c show.CandidateRecord) show.ShowRecord {
	r := show.ShowRecord{
		Title:       required(c.Title, UnknownShow),
		Venue:       required(c.Venue, UnknownVenue),
		VenueURL:    clonePtr(c.VenueURL),
		Date:        clonePtr(c.Date),
		Time:        clonePtr(c.Time),
		Description: clonePtr(c.Description),
		EventURL:    clonePtr(c.EventURL),
		AgeLimit:    clonePtr(c.AgeLimit),
		ImageURL:    clonePtr(c.ImageURL),
		Tags:        append([]string{}, c.Tags...),
	}
	if c.Price != nil {
		if price, ok := NormalizePrice(*c.Price); ok {
			r.Price = &price
		}
	}
	return r
}

// NormalizeAll maps Normalize over a batch.
func NormalizeAll(cs []show.CandidateRecord) []show.ShowRecord {
	out := make([]show.ShowRecord, 0, len(cs))
	for _, c := range cs {
		out = append(out, Normalize(c))
	}
	return out
}

func required(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	if v := strings.TrimSpace(*p); v != "" {
		return v
	}
	return fallback
}

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
