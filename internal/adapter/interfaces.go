// Package adapter defines the contract every listing source implements and the
// shared harness adapters use to fetch documents.
package adapter

import (
	"context"
	"net/http"
	"time"

	"github.com/JakeFAU/showcrawl/internal/show"
)

// Adapter turns one external listing source into candidate records. Fetch
// returns an error only when the source as a whole could not be read; problems
// with individual items are skipped by the adapter.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context) ([]show.CandidateRecord, error)
}

// Fetcher retrieves a single document.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// Limiter paces requests per host.
type Limiter interface {
	Wait(ctx context.Context, url string) error
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// FetchRequest describes one document retrieval.
type FetchRequest struct {
	URL     string
	Headers http.Header
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
	Rendered   bool
}
