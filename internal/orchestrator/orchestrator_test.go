package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/showcrawl/internal/adapter"
	"github.com/JakeFAU/showcrawl/internal/show"
)

type fakeAdapter struct {
	name  string
	delay time.Duration
	fetch func(ctx context.Context) ([]show.CandidateRecord, error)
}

func (f fakeAdapter) Name() string { return f.name }

func (f fakeAdapter) Fetch(ctx context.Context) ([]show.CandidateRecord, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.fetch(ctx)
}

func records(titles ...string) func(context.Context) ([]show.CandidateRecord, error) {
	return func(context.Context) ([]show.CandidateRecord, error) {
		out := make([]show.CandidateRecord, 0, len(titles))
		for _, title := range titles {
			out = append(out, show.CandidateRecord{Title: show.String(title)})
		}
		return out, nil
	}
}

func TestRunIsolatesFailingAdapter(t *testing.T) {
	t.Parallel()

	adapters := []adapter.Adapter{
		fakeAdapter{name: "A", fetch: func(context.Context) ([]show.CandidateRecord, error) {
			return nil, errors.New("listing page returned 500")
		}},
		fakeAdapter{name: "B", fetch: records("one", "two")},
	}

	res := New(zap.NewNop()).Run(context.Background(), adapters)

	require.Len(t, res.Errors, 1)
	assert.Equal(t, show.SourceError{Source: "A", Error: "listing page returned 500"}, res.Errors[0])
	require.Len(t, res.Batches, 1)
	assert.Equal(t, "B", res.Batches[0].Source)
	assert.Len(t, res.Candidates(), 2)
}

func TestRunRecoversPanickingAdapter(t *testing.T) {
	t.Parallel()

	adapters := []adapter.Adapter{
		fakeAdapter{name: "boom", fetch: func(context.Context) ([]show.CandidateRecord, error) {
			panic("nil map")
		}},
		fakeAdapter{name: "ok", fetch: records("x")},
	}

	res := New(nil).Run(context.Background(), adapters)

	require.Len(t, res.Errors, 1)
	assert.Equal(t, "boom", res.Errors[0].Source)
	assert.NotEmpty(t, res.Errors[0].Error)
	assert.Len(t, res.Candidates(), 1)
}

func TestRunKeepsRegistryOrderRegardlessOfCompletion(t *testing.T) {
	t.Parallel()

	adapters := []adapter.Adapter{
		fakeAdapter{name: "slow", delay: 40 * time.Millisecond, fetch: records("s")},
		fakeAdapter{name: "fast", fetch: records("f")},
	}

	res := New(nil).Run(context.Background(), adapters)

	require.Len(t, res.Batches, 2)
	assert.Equal(t, "slow", res.Batches[0].Source)
	assert.Equal(t, "fast", res.Batches[1].Source)
}

func TestRunIsConcurrent(t *testing.T) {
	t.Parallel()

	var adapters []adapter.Adapter
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		adapters = append(adapters, fakeAdapter{name: name, delay: 60 * time.Millisecond, fetch: records(name)})
	}

	start := time.Now()
	res := New(nil).Run(context.Background(), adapters)
	assert.Less(t, time.Since(start), 250*time.Millisecond)
	assert.Len(t, res.Candidates(), 5)
}

func TestRunAllFailing(t *testing.T) {
	t.Parallel()

	fail := func(context.Context) ([]show.CandidateRecord, error) { return nil, errors.New("down") }
	res := New(nil).Run(context.Background(), []adapter.Adapter{
		fakeAdapter{name: "a", fetch: fail},
		fakeAdapter{name: "b", fetch: fail},
	})

	assert.Len(t, res.Errors, 2)
	assert.Empty(t, res.Batches)
	assert.Empty(t, res.Candidates())
}

func TestRunEmptyRegistry(t *testing.T) {
	t.Parallel()

	res := New(nil).Run(context.Background(), nil)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Batches)
}
