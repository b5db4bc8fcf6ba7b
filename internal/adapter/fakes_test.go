package adapter

import (
	"context"
	"sync"
	"time"

	"github.com/JakeFAU/showcrawl/internal/show"
)

type fakeFetcher struct {
	mu       sync.Mutex
	requests []FetchRequest
	handler  func(ctx context.Context, req FetchRequest) (FetchResponse, error)
}

func (f *fakeFetcher) Fetch(ctx context.Context, req FetchRequest) (FetchResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.handler != nil {
		return f.handler(ctx, req)
	}
	return FetchResponse{URL: req.URL, StatusCode: 200, Body: []byte("<html><body><h1>ok</h1></body></html>")}, nil
}

func (f *fakeFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *recordingSleeper) sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return nil
}

func (s *recordingSleeper) recorded() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

type fakeLimiter struct {
	mu   sync.Mutex
	urls []string
	err  error
}

func (l *fakeLimiter) Wait(_ context.Context, url string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.urls = append(l.urls, url)
	return l.err
}

type staticAdapter struct {
	name    string
	records []show.CandidateRecord
}

func (a staticAdapter) Name() string { return a.name }

func (a staticAdapter) Fetch(context.Context) ([]show.CandidateRecord, error) {
	return a.records, nil
}
