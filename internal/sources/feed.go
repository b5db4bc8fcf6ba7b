package sources

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/JakeFAU/showcrawl/internal/adapter"
	"github.com/JakeFAU/showcrawl/internal/canon"
	"github.com/JakeFAU/showcrawl/internal/show"
)

// Feed reads shows from an RSS or Atom feed. The item's published time is the
// show date.
type Feed struct {
	cfg    Config
	client *adapter.Client
	clock  adapter.Clock
	parser *gofeed.Parser
	logger *zap.Logger
}

// NewFeed builds a feed adapter.
func NewFeed(cfg Config, client *adapter.Client, clock adapter.Clock, logger *zap.Logger) *Feed {
	return &Feed{
		cfg:    cfg,
		client: client,
		clock:  clock,
		parser: gofeed.NewParser(),
		logger: named(logger, cfg.Name),
	}
}

// Name implements adapter.Adapter.
func (a *Feed) Name() string { return a.cfg.Name }

// Fetch implements adapter.Adapter.
func (a *Feed) Fetch(ctx context.Context) ([]show.CandidateRecord, error) {
	body, err := a.client.Get(ctx, a.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("load feed: %w", err)
	}
	feed, err := a.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	loc := a.clock.Now().Location()
	records := make([]show.CandidateRecord, 0, len(feed.Items))
	for _, item := range feed.Items {
		rec, ok := feedRecord(item, loc)
		if !ok {
			continue
		}
		records = append(records, stamp(rec, a.cfg))
	}
	a.logger.Debug("parsed feed", zap.String("feed", feed.Title), zap.Int("records", len(records)))
	// The channel link is the human-facing listing; the feed URL is the fallback.
	listing := strings.TrimSpace(feed.Link)
	if listing == "" {
		listing = a.cfg.URL
	}
	return orListingURL(records, listing), nil
}

func feedRecord(item *gofeed.Item, loc *time.Location) (show.CandidateRecord, bool) {
	if item == nil {
		return show.CandidateRecord{}, false
	}
	title := canon.CleanTitle(item.Title)
	if title == "" {
		return show.CandidateRecord{}, false
	}
	rec := show.CandidateRecord{
		Title:       show.String(title),
		EventURL:    optional(strings.TrimSpace(item.Link)),
		Description: canon.CollapsePtr(optional(plainText(item.Description))),
		ImageURL:    optional(feedImage(item)),
	}
	if item.PublishedParsed != nil {
		rec.Date = show.String(item.PublishedParsed.In(loc).Format(canon.ISOLayout))
	}
	if len(item.Categories) > 0 {
		rec.Tags = append([]string{}, item.Categories...)
	}
	return rec, true
}

func feedImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	return ""
}

// plainText strips markup from feed descriptions.
func plainText(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return doc.Text()
}
