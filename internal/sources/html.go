package sources

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/JakeFAU/showcrawl/internal/adapter"
	"github.com/JakeFAU/showcrawl/internal/show"
)

// HTML reads every show from a single listing document.
type HTML struct {
	cfg    Config
	client *adapter.Client
	clock  adapter.Clock
	logger *zap.Logger
}

// NewHTML builds a single-document adapter.
func NewHTML(cfg Config, client *adapter.Client, clock adapter.Clock, logger *zap.Logger) *HTML {
	return &HTML{cfg: cfg, client: client, clock: clock, logger: named(logger, cfg.Name)}
}

// Name implements adapter.Adapter.
func (a *HTML) Name() string { return a.cfg.Name }

// Fetch implements adapter.Adapter.
func (a *HTML) Fetch(ctx context.Context) ([]show.CandidateRecord, error) {
	doc, err := a.client.Document(ctx, a.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("load listing: %w", err)
	}
	ex := newExtractor(a.cfg.Selectors, a.cfg.URL, a.clock.Now())
	records := extractAll(doc, ex, a.cfg)
	a.logger.Debug("extracted listing", zap.Int("records", len(records)))
	return orListingURL(records, a.cfg.URL), nil
}

func extractAll(doc *goquery.Document, ex extractor, cfg Config) []show.CandidateRecord {
	out := []show.CandidateRecord{}
	doc.Find(cfg.Selectors.Item).Each(func(_ int, s *goquery.Selection) {
		rec, ok := ex.record(s)
		if !ok {
			return
		}
		out = append(out, stamp(rec, cfg))
	})
	return out
}

func named(logger *zap.Logger, name string) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger.With(zap.String("adapter", name))
}
