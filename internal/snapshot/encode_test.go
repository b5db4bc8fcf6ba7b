package snapshot

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/showcrawl/internal/show"
)

func TestEncodeEmptySnapshot(t *testing.T) {
	t.Parallel()

	data, err := Encode(show.Snapshot{GeneratedAt: time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"generatedAt":"2026-03-10T17:00:00Z","errors":[],"shows":[]}`, string(data))
	assert.True(t, bytes.HasSuffix(data, []byte("}\n")))
}

func TestEncodeIsStable(t *testing.T) {
	t.Parallel()

	snap := show.Snapshot{
		GeneratedAt: time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC),
		RunID:       "run-1",
		Shows:       []show.ShowRecord{rec("The Band", "2026-03-14")},
	}
	first, err := Encode(snap)
	require.NoError(t, err)
	second, err := Encode(snap)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Contains(t, string(first), "\n  \"runId\": \"run-1\"")
}
