// Package collyfetcher fetches static listing pages with gocolly.
package collyfetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/JakeFAU/showcrawl/internal/adapter"
)

const (
	defaultTimeout     = 15 * time.Second
	defaultMaxBodySize = 10 << 20
)

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
	// MaxBodySize caps response bodies in bytes. Zero uses 10 MiB.
	MaxBodySize int
}

// Fetcher implements adapter.Fetcher. Every fetch runs on a clone of one base
// collector so the HTTP transport and its idle connections are shared. It is
// safe for concurrent use.
type Fetcher struct {
	cfg  Config
	base *colly.Collector
}

// hookRegistrar is the subset of *colly.Collector the fetch callbacks attach to.
type hookRegistrar interface {
	OnRequest(colly.RequestCallback)
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

// New builds a Fetcher.
func New(cfg Config) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = defaultMaxBodySize
	}
	base := colly.NewCollector(colly.AllowURLRevisit(), colly.MaxBodySize(cfg.MaxBodySize))
	base.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     60 * time.Second,
	})
	// Clones share the HTTP backend, so the timeout is set once here and never
	// per fetch.
	base.SetRequestTimeout(cfg.Timeout)
	if cfg.UserAgent != "" {
		base.UserAgent = cfg.UserAgent
	}
	return &Fetcher{cfg: cfg, base: base}
}

// capture collects the outcome of one visit.
type capture struct {
	started  time.Time
	response adapter.FetchResponse
	err      error
}

// Fetch performs one GET. Non-2xx statuses are returned as errors.
func (f *Fetcher) Fetch(ctx context.Context, request adapter.FetchRequest) (adapter.FetchResponse, error) {
	if err := ctx.Err(); err != nil {
		return adapter.FetchResponse{}, fmt.Errorf("fetch %s: %w", request.URL, err)
	}
	collector := f.collector()
	out := &capture{started: time.Now()}
	attach(collector, request.Headers, out)

	done := make(chan error, 1)
	go func() { done <- collector.Visit(request.URL) }()

	select {
	case <-ctx.Done():
		return adapter.FetchResponse{}, fmt.Errorf("fetch %s: %w", request.URL, ctx.Err())
	case err := <-done:
		if out.err != nil {
			return adapter.FetchResponse{}, fmt.Errorf("fetch %s: %w", request.URL, out.err)
		}
		if err != nil {
			return adapter.FetchResponse{}, fmt.Errorf("fetch %s: %w", request.URL, err)
		}
		return out.response, nil
	}
}

func (f *Fetcher) collector() *colly.Collector {
	return f.base.Clone()
}

func attach(hooks hookRegistrar, headers http.Header, out *capture) {
	hooks.OnRequest(func(r *colly.Request) {
		for key, values := range headers {
			for _, v := range values {
				r.Headers.Add(key, v)
			}
		}
	})
	hooks.OnResponse(func(r *colly.Response) {
		out.response = adapter.FetchResponse{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Headers:    r.Headers.Clone(),
			Body:       append([]byte(nil), r.Body...),
			Duration:   time.Since(out.started),
		}
	})
	hooks.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			out.err = fmt.Errorf("status %d: %w", r.StatusCode, err)
			return
		}
		out.err = err
	})
}
