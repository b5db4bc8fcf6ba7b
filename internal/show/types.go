// Package show defines the records that flow through the ingestion pipeline.
package show

import (
	"strings"
	"time"
)

// CandidateRecord is what an adapter emits for one listed show. Every field is
// optional; a nil pointer means the source did not supply the value, which is
// distinct from a supplied empty string.
type CandidateRecord struct {
	Title       *string  `json:"title,omitempty"`
	Venue       *string  `json:"venue,omitempty"`
	VenueURL    *string  `json:"venueUrl,omitempty"`
	Date        *string  `json:"date,omitempty"`
	Time        *string  `json:"time,omitempty"`
	Price       *string  `json:"price,omitempty"`
	Description *string  `json:"description,omitempty"`
	EventURL    *string  `json:"eventUrl,omitempty"`
	AgeLimit    *string  `json:"ageLimit,omitempty"`
	ImageURL    *string  `json:"imageUrl,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// ShowRecord is the canonical, normalized form of a show.
type ShowRecord struct {
	Title       string   `json:"title"`
	Venue       string   `json:"venue"`
	VenueURL    *string  `json:"venueUrl,omitempty"`
	Date        *string  `json:"date"`
	Time        *string  `json:"time,omitempty"`
	Price       *string  `json:"price,omitempty"`
	Description *string  `json:"description,omitempty"`
	EventURL    *string  `json:"eventUrl,omitempty"`
	AgeLimit    *string  `json:"ageLimit,omitempty"`
	ImageURL    *string  `json:"imageUrl,omitempty"`
	Tags        []string `json:"tags"`
}

// Candidate converts the record back into candidate form.
func (r ShowRecord) Candidate() CandidateRecord {
	return CandidateRecord{
		Title:       String(r.Title),
		Venue:       String(r.Venue),
		VenueURL:    r.VenueURL,
		Date:        r.Date,
		Time:        r.Time,
		Price:       r.Price,
		Description: r.Description,
		EventURL:    r.EventURL,
		AgeLimit:    r.AgeLimit,
		ImageURL:    r.ImageURL,
		Tags:        r.Tags,
	}
}

// Key identifies a show across sources.
type Key struct {
	Venue string
	Date  string
	Title string
}

// Key derives the dedup identity of the record.
func (r ShowRecord) Key() Key {
	return NewKey(r.Venue, Value(r.Date), r.Title)
}

// NewKey lowercases and trims each component.
func NewKey(venue, date, title string) Key {
	return Key{
		Venue: fold(venue),
		Date:  fold(date),
		Title: fold(title),
	}
}

// String renders the key as venue|date|title, the form used by the image
// override table.
func (k Key) String() string {
	return k.Venue + "|" + k.Date + "|" + k.Title
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SourceError records one adapter that failed during a run.
type SourceError struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// Snapshot is the persisted output of a run.
type Snapshot struct {
	GeneratedAt time.Time     `json:"generatedAt"`
	RunID       string        `json:"runId,omitempty"`
	Errors      []SourceError `json:"errors"`
	Shows       []ShowRecord  `json:"shows"`
}

// String returns a pointer to s.
func String(s string) *string {
	return &s
}

// Value dereferences p, returning "" for nil.
func Value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
