package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/JakeFAU/showcrawl/internal/adapter"
	"github.com/JakeFAU/showcrawl/internal/canon"
	"github.com/JakeFAU/showcrawl/internal/show"
)

// JSONLD reads schema.org Event objects embedded in a page and, when
// configured, fills show times from a second, browser-rendered document.
type JSONLD struct {
	cfg      Config
	client   *adapter.Client
	rendered *adapter.Client
	clock    adapter.Clock
	logger   *zap.Logger
}

// NewJSONLD builds a JSON-LD adapter. rendered fetches RenderURL; when nil the
// static client is used instead.
func NewJSONLD(cfg Config, client, rendered *adapter.Client, clock adapter.Clock, logger *zap.Logger) *JSONLD {
	if rendered == nil {
		rendered = client
	}
	return &JSONLD{cfg: cfg, client: client, rendered: rendered, clock: clock, logger: named(logger, cfg.Name)}
}

// Name implements adapter.Adapter.
func (a *JSONLD) Name() string { return a.cfg.Name }

// Fetch implements adapter.Adapter.
func (a *JSONLD) Fetch(ctx context.Context) ([]show.CandidateRecord, error) {
	doc, err := a.client.Document(ctx, a.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("load event markup: %w", err)
	}
	now := a.clock.Now()
	records := []show.CandidateRecord{}
	for _, ev := range scriptEvents(doc, a.logger) {
		rec, ok := eventRecord(ev, now)
		if !ok {
			continue
		}
		records = append(records, stamp(rec, a.cfg))
	}
	records = orListingURL(records, a.cfg.URL)

	if a.cfg.RenderURL != "" && len(records) > 0 {
		lookup, err := a.renderedTimes(ctx)
		if err != nil {
			a.logger.Warn("rendered time lookup failed; leaving times unset", zap.Error(err))
			return records, nil
		}
		filled := adapter.JoinByTitle(records, lookup, adapter.TimeField)
		a.logger.Debug("joined rendered times", zap.Int("filled", filled), zap.Int("records", len(records)))
	}
	return records, nil
}

func (a *JSONLD) renderedTimes(ctx context.Context) (adapter.TitleLookup, error) {
	doc, err := a.rendered.Document(ctx, a.cfg.RenderURL)
	if err != nil {
		return nil, err
	}
	ex := newExtractor(a.cfg.Selectors, a.cfg.RenderURL, a.clock.Now())
	lookup := adapter.TitleLookup{}
	doc.Find(a.cfg.Selectors.Item).Each(func(_ int, s *goquery.Selection) {
		title, when := ex.text(s, a.cfg.Selectors.Title), ex.text(s, a.cfg.Selectors.Time)
		if title == nil || when == nil {
			return
		}
		lookup.Add(canon.StripStatusPrefix(*title), *when)
	})
	return lookup, nil
}

// scriptEvents decodes every ld+json block and returns the Event objects,
// descending into arrays and @graph containers. Malformed blocks are skipped.
func scriptEvents(doc *goquery.Document, logger *zap.Logger) []map[string]any {
	var events []map[string]any
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var payload any
		if err := json.Unmarshal([]byte(s.Text()), &payload); err != nil {
			logger.Debug("skipping malformed ld+json block", zap.Error(err))
			return
		}
		events = collectEvents(payload, events)
	})
	return events
}

func collectEvents(v any, into []map[string]any) []map[string]any {
	switch node := v.(type) {
	case []any:
		for _, item := range node {
			into = collectEvents(item, into)
		}
	case map[string]any:
		if graph, ok := node["@graph"]; ok {
			return collectEvents(graph, into)
		}
		if isEventType(node["@type"]) {
			into = append(into, node)
		}
	}
	return into
}

func isEventType(v any) bool {
	switch t := v.(type) {
	case string:
		return strings.HasSuffix(t, "Event")
	case []any:
		for _, item := range t {
			if isEventType(item) {
				return true
			}
		}
	}
	return false
}

func eventRecord(ev map[string]any, now time.Time) (show.CandidateRecord, bool) {
	title := canon.CleanTitle(str(ev["name"]))
	if title == "" {
		return show.CandidateRecord{}, false
	}
	rec := show.CandidateRecord{
		Title:       show.String(title),
		Description: canon.CollapsePtr(optional(str(ev["description"]))),
		EventURL:    optional(str(ev["url"])),
		ImageURL:    optional(firstURL(ev["image"])),
		AgeLimit:    optional(str(ev["typicalAgeRange"])),
		Price:       optional(offerPrice(ev["offers"])),
	}

	start := str(ev["startDate"])
	rec.Date = canon.ResolveDatePtr(optional(start), now)
	if t, err := time.Parse(time.RFC3339, start); err == nil {
		rec.Time = show.String(t.Format("3:04 PM"))
	} else if t, err := time.Parse("2006-01-02T15:04", start); err == nil {
		rec.Time = show.String(t.Format("3:04 PM"))
	}

	if loc := firstObject(ev["location"]); loc != nil {
		rec.Venue = optional(strings.TrimSpace(str(loc["name"])))
		rec.VenueURL = optional(str(loc["url"]))
	}
	return rec, true
}

func offerPrice(v any) string {
	offer := firstObject(v)
	if offer == nil {
		return ""
	}
	low, high := num(offer["lowPrice"]), num(offer["highPrice"])
	switch {
	case low != "" && high != "" && low != high:
		return low + "-" + high
	case low != "":
		return low
	}
	return num(offer["price"])
}

func firstObject(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case []any:
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				return m
			}
		}
	}
	return nil
}

func firstURL(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		for _, item := range t {
			if u := firstURL(item); u != "" {
				return u
			}
		}
	case map[string]any:
		return str(t["url"])
	}
	return ""
}

func str(v any) string {
	s, _ := v.(string) //nolint:errcheck // non-strings read as empty
	return strings.TrimSpace(s)
}

func num(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
