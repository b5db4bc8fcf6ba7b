package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/showcrawl/internal/show"
)

func TestNormalizeDefaults(t *testing.T) {
	t.Parallel()

	r := Normalize(show.CandidateRecord{})

	assert.Equal(t, UnknownShow, r.Title)
	assert.Equal(t, UnknownVenue, r.Venue)
	assert.Nil(t, r.Date)
	assert.Nil(t, r.Price)
	require.NotNil(t, r.Tags)
	assert.Empty(t, r.Tags)
}

func TestNormalizeBlankRequiredFields(t *testing.T) {
	t.Parallel()

	r := Normalize(show.CandidateRecord{Title: show.String("   "), Venue: show.String("")})
	assert.Equal(t, UnknownShow, r.Title)
	assert.Equal(t, UnknownVenue, r.Venue)
}

func TestNormalizeFields(t *testing.T) {
	t.Parallel()

	c := show.CandidateRecord{
		Title:       show.String("  The Band "),
		Venue:       show.String(" The Hall"),
		Date:        show.String("2026-03-14"),
		Price:       show.String("10-20"),
		Description: show.String(""),
		Tags:        []string{"rock"},
	}
	r := Normalize(c)

	assert.Equal(t, "The Band", r.Title)
	assert.Equal(t, "The Hall", r.Venue)
	require.NotNil(t, r.Price)
	assert.Equal(t, "$10–$20", *r.Price)
	require.NotNil(t, r.Description)
	assert.Equal(t, "", *r.Description)
	assert.Nil(t, r.Time)
	assert.Equal(t, []string{"rock"}, r.Tags)

	c.Tags[0] = "jazz"
	assert.Equal(t, "rock", r.Tags[0])
}

func TestNormalizeBlankPriceBecomesAbsent(t *testing.T) {
	t.Parallel()

	r := Normalize(show.CandidateRecord{Price: show.String("  ")})
	assert.Nil(t, r.Price)
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []show.CandidateRecord{
		{},
		{Title: show.String(" A "), Venue: show.String("B"), Price: show.String("$5.00 - $8.00")},
		{Title: show.String("X"), Date: show.String("2026-01-01"), Price: show.String("free"), Tags: []string{"a", "b"}},
	}
	for _, c := range inputs {
		once := Normalize(c)
		twice := Normalize(once.Candidate())
		assert.Equal(t, once, twice)
	}
}

func TestNormalizeAll(t *testing.T) {
	t.Parallel()

	out := NormalizeAll([]show.CandidateRecord{{}, {Title: show.String("x")}})
	require.Len(t, out, 2)
	assert.Equal(t, "x", out[1].Title)
	assert.NotNil(t, NormalizeAll(nil))
}
