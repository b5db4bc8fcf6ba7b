package collyfetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/showcrawl/internal/adapter"
)

var _ adapter.Fetcher = (*Fetcher)(nil)

func TestNewAppliesDefaults(t *testing.T) {
	t.Parallel()

	f := New(Config{UserAgent: "showcrawl-test"})
	assert.Equal(t, defaultTimeout, f.cfg.Timeout)
	assert.Equal(t, defaultMaxBodySize, f.cfg.MaxBodySize)

	c := f.collector()
	assert.Equal(t, "showcrawl-test", c.UserAgent)
	assert.True(t, c.AllowURLRevisit)
}

func TestAttachHooks(t *testing.T) {
	t.Parallel()

	var hooks recorder
	out := &capture{started: time.Now()}
	attach(&hooks, http.Header{"Accept-Language": {"en-US"}}, out)

	req := &colly.Request{Headers: &http.Header{}}
	hooks.request(req)
	assert.Equal(t, "en-US", req.Headers.Get("Accept-Language"))

	target, err := url.Parse("https://hall.example/calendar")
	require.NoError(t, err)
	hooks.response(&colly.Response{
		StatusCode: http.StatusOK,
		Body:       []byte("<ul></ul>"),
		Headers:    &http.Header{"Content-Type": {"text/html"}},
		Request:    &colly.Request{URL: target},
	})
	assert.Equal(t, "https://hall.example/calendar", out.response.URL)
	assert.Equal(t, "<ul></ul>", string(out.response.Body))
	assert.Equal(t, "text/html", out.response.Headers.Get("Content-Type"))

	hooks.fail(&colly.Response{StatusCode: http.StatusGone}, errors.New("Gone"))
	require.Error(t, out.err)
	assert.Contains(t, out.err.Error(), "410")

	hooks.fail(nil, errors.New("dial tcp: refused"))
	assert.EqualError(t, out.err, "dial tcp: refused")
}

func TestFetchAgainstServer(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/calendar" {
			http.Error(w, "no such page", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<p>" + r.Header.Get("Accept-Language") + "|" + r.UserAgent() + "</p>"))
	}))
	defer srv.Close()

	f := New(Config{UserAgent: "showcrawl-test", Timeout: 2 * time.Second})
	resp, err := f.Fetch(context.Background(), adapter.FetchRequest{
		URL:     srv.URL + "/calendar",
		Headers: http.Header{"Accept-Language": {"en-US"}},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<p>en-US|showcrawl-test</p>", strings.TrimSpace(string(resp.Body)))

	_, err = f.Fetch(context.Background(), adapter.FetchRequest{URL: srv.URL + "/calendar"})
	require.NoError(t, err, "revisiting a URL is allowed")

	_, err = f.Fetch(context.Background(), adapter.FetchRequest{URL: srv.URL + "/gone"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestFetchConcurrentCallers(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.URL.Query().Get("n")))
	}))
	defer srv.Close()

	f := New(Config{UserAgent: "showcrawl-test", Timeout: 2 * time.Second})
	var g errgroup.Group
	bodies := make([]string, 8)
	for i := range bodies {
		g.Go(func() error {
			resp, err := f.Fetch(context.Background(), adapter.FetchRequest{
				URL: srv.URL + "/e?n=" + string(rune('a'+i)),
			})
			if err != nil {
				return err
			}
			bodies[i] = string(resp.Body)
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f", "g", "h"}, bodies)
	assert.Equal(t, 2*time.Second, f.cfg.Timeout)
}

func TestFetchHonorsContext(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	defer close(release)

	f := New(Config{Timeout: 5 * time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := f.Fetch(ctx, adapter.FetchRequest{URL: srv.URL})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	canceled, stop := context.WithCancel(context.Background())
	stop()
	_, err = f.Fetch(canceled, adapter.FetchRequest{URL: srv.URL})
	assert.ErrorIs(t, err, context.Canceled)
}

type recorder struct {
	request  colly.RequestCallback
	response colly.ResponseCallback
	fail     colly.ErrorCallback
}

func (r *recorder) OnRequest(cb colly.RequestCallback)   { r.request = cb }
func (r *recorder) OnResponse(cb colly.ResponseCallback) { r.response = cb }
func (r *recorder) OnError(cb colly.ErrorCallback)       { r.fail = cb }
