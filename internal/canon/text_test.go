package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripStatusPrefix(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"SOLD OUT | The Band":        "The Band",
		"sold out - The Band":        "The Band",
		"CANCELLED - The Band":       "The Band",
		"Canceled: The Band":         "The Band",
		"POSTPONED – The Band":       "The Band",
		"SOLD OUT | CANCELED — Duo":  "Duo",
		"Soldier of Fortune":         "Soldier of Fortune",
		"The Sold Out Show":          "The Sold Out Show",
		"  Few Tickets Left | Trio ": "Trio",
	}
	for in, want := range cases {
		assert.Equal(t, want, StripStatusPrefix(in), in)
	}
}

func TestCollapse(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a b c", Collapse("  a \n\t b   c "))
	assert.Equal(t, "café", Collapse("café"))
	assert.Equal(t, "", Collapse("   "))
}

func TestCleanTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "The Band w/ Guests", CleanTitle("SOLD OUT |  The Band\n w/ Guests"))
}

func TestTitleKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, TitleKey(" The Band "), TitleKey("the band"))
}

func TestCollapsePtr(t *testing.T) {
	t.Parallel()

	assert.Nil(t, CollapsePtr(nil))
	blank := " \n "
	assert.Nil(t, CollapsePtr(&blank))
	v := " a  b "
	got := CollapsePtr(&v)
	if assert.NotNil(t, got) {
		assert.Equal(t, "a b", *got)
	}
}
