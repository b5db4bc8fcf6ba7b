package adapter

import (
	"bytes"
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/JakeFAU/showcrawl/internal/metrics"
)

// Harness defaults.
const (
	DefaultTimeout    = 15 * time.Second
	DefaultJitterMin  = 300 * time.Millisecond
	DefaultJitterMax  = 900 * time.Millisecond
	DefaultBatchSize  = 8
	DefaultBatchPause = 500 * time.Millisecond
)

// ClientConfig controls the fetch harness.
type ClientConfig struct {
	// Timeout bounds each fetch.
	Timeout time.Duration
	// JitterMin and JitterMax bound the random delay before each fetch.
	// Both zero disables jitter.
	JitterMin time.Duration
	JitterMax time.Duration
	// BatchSize and BatchPause shape listing+detail fan-out.
	BatchSize  int
	BatchPause time.Duration
}

// DefaultClientConfig returns the production harness settings.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:    DefaultTimeout,
		JitterMin:  DefaultJitterMin,
		JitterMax:  DefaultJitterMax,
		BatchSize:  DefaultBatchSize,
		BatchPause: DefaultBatchPause,
	}
}

// Client is the fetch harness shared by adapters. Every fetch is preceded by a
// randomized delay, bounded by a timeout and optionally rate limited per host.
type Client struct {
	fetcher Fetcher
	limiter Limiter
	logger  *zap.Logger
	cfg     ClientConfig
	sleep   func(context.Context, time.Duration) error
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithLimiter applies per-host pacing to every fetch.
func WithLimiter(l Limiter) ClientOption {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient wraps a Fetcher with the harness behavior.
func NewClient(fetcher Fetcher, cfg ClientConfig, opts ...ClientOption) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.JitterMax < cfg.JitterMin {
		cfg.JitterMax = cfg.JitterMin
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BatchPause < 0 {
		cfg.BatchPause = 0
	}
	c := &Client{
		fetcher: fetcher,
		logger:  zap.NewNop(),
		cfg:     cfg,
		sleep:   sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the effective harness configuration.
func (c *Client) Config() ClientConfig {
	return c.cfg
}

type fetchOptions struct {
	noJitter bool
	headers  http.Header
}

// FetchOption adjusts a single fetch.
type FetchOption func(*fetchOptions)

// WithoutJitter skips the randomized pre-fetch delay for one call.
func WithoutJitter() FetchOption {
	return func(o *fetchOptions) {
		o.noJitter = true
	}
}

// WithHeader adds a request header.
func WithHeader(key, value string) FetchOption {
	return func(o *fetchOptions) {
		if o.headers == nil {
			o.headers = http.Header{}
		}
		o.headers.Add(key, value)
	}
}

// Get fetches url and returns the body. Non-2xx responses are errors.
func (c *Client) Get(ctx context.Context, url string, opts ...FetchOption) ([]byte, error) {
	var o fetchOptions
	for _, opt := range opts {
		opt(&o)
	}

	if !o.noJitter {
		if err := c.sleep(ctx, c.jitter()); err != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, err)
		}
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, url); err != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, err)
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.fetcher.Fetch(fetchCtx, FetchRequest{URL: url, Headers: o.headers})
	if err != nil {
		metrics.ObserveFetch(url, "error")
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	metrics.ObserveFetch(url, strconv.Itoa(resp.StatusCode))
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	c.logger.Debug("fetched document",
		zap.String("url", url),
		zap.Int("bytes", len(resp.Body)),
		zap.Duration("duration", resp.Duration),
		zap.Bool("rendered", resp.Rendered),
	)
	return resp.Body, nil
}

// Document fetches url and parses it as HTML.
func (c *Client) Document(ctx context.Context, url string, opts ...FetchOption) (*goquery.Document, error) {
	body, err := c.Get(ctx, url, opts...)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return doc, nil
}

func (c *Client) jitter() time.Duration {
	spread := c.cfg.JitterMax - c.cfg.JitterMin
	if spread <= 0 {
		return c.cfg.JitterMin
	}
	// #nosec G404 -- request pacing does not need cryptographic randomness.
	return c.cfg.JitterMin + time.Duration(rand.Int64N(int64(spread)+1))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("wait canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
