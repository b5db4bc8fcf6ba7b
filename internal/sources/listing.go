package sources

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/showcrawl/internal/adapter"
	"github.com/JakeFAU/showcrawl/internal/show"
)

// Listing reads stubs from a listing document and enriches each one from its
// own detail document.
type Listing struct {
	cfg    Config
	client *adapter.Client
	clock  adapter.Clock
	logger *zap.Logger
}

// NewListing builds a listing+detail adapter.
func NewListing(cfg Config, client *adapter.Client, clock adapter.Clock, logger *zap.Logger) *Listing {
	return &Listing{cfg: cfg, client: client, clock: clock, logger: named(logger, cfg.Name)}
}

// Name implements adapter.Adapter.
func (a *Listing) Name() string { return a.cfg.Name }

// Fetch implements adapter.Adapter. A listing failure fails the adapter; a
// detail failure only costs that show its detail fields.
func (a *Listing) Fetch(ctx context.Context) ([]show.CandidateRecord, error) {
	doc, err := a.client.Document(ctx, a.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("load listing: %w", err)
	}
	now := a.clock.Now()
	stubs := extractAll(doc, newExtractor(a.cfg.Selectors, a.cfg.URL, now), a.cfg)
	a.logger.Debug("extracted listing stubs", zap.Int("stubs", len(stubs)))

	// Stubs without a link have no detail page; they get the listing URL
	// only after enrichment.
	records := a.client.FetchDetails(ctx, stubs, func(ctx context.Context, stub show.CandidateRecord) (show.CandidateRecord, error) {
		if stub.EventURL == nil {
			return stub, nil
		}
		detailURL := *stub.EventURL
		page, err := a.client.Document(ctx, detailURL)
		if err != nil {
			return stub, err
		}
		ex := newExtractor(a.cfg.Detail, detailURL, now)
		enriched := ex.enrich(stub, page.Selection)
		return stamp(enriched, Config{Venue: a.cfg.Venue}), nil
	})
	return orListingURL(records, a.cfg.URL), nil
}
