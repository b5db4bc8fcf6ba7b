package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{raw: "Free", want: "Free", ok: true},
		{raw: "FREE", want: "Free", ok: true},
		{raw: " free admission ", want: "Free", ok: true},
		{raw: "0", want: "Free", ok: true},
		{raw: "$0", want: "Free", ok: true},
		{raw: "$0.00", want: "Free", ok: true},
		{raw: "$15.00", want: "$15", ok: true},
		{raw: "15", want: "$15", ok: true},
		{raw: "$10 - $20", want: "$10–$20", ok: true},
		{raw: "$10.00-$20.00", want: "$10–$20", ok: true},
		{raw: "10-20", want: "$10–$20", ok: true},
		{raw: "$12.50", want: "$12.50", ok: true},
		{raw: "$15 adv / $20 dos", want: "$15 adv / $20 dos", ok: true},
		{raw: "   ", ok: false},
		{raw: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			got, ok := NormalizePrice(tt.raw)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizePriceIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"Free", "free admission", "$0.00", "$15.00", "15", "$10 - $20",
		"10-20", "$12.50", "$15 adv / $20 dos", "$5–$10", "Donation",
	}
	for _, raw := range inputs {
		once, ok := NormalizePrice(raw)
		require.True(t, ok, raw)
		twice, ok := NormalizePrice(once)
		require.True(t, ok, once)
		assert.Equal(t, once, twice, "input %q", raw)
	}
}
