package sources

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/showcrawl/internal/canon"
	"github.com/JakeFAU/showcrawl/internal/show"
)

// extractor pulls candidate fields out of HTML using configured selectors.
type extractor struct {
	sel  Selectors
	base *url.URL
	now  time.Time
}

func newExtractor(sel Selectors, pageURL string, now time.Time) extractor {
	base, _ := url.Parse(pageURL) //nolint:errcheck // validated with the adapter config
	return extractor{sel: sel, base: base, now: now}
}

// record extracts one candidate from s. Items without a title are skipped.
func (e extractor) record(s *goquery.Selection) (show.CandidateRecord, bool) {
	title := e.text(s, e.sel.Title)
	if title == nil {
		return show.CandidateRecord{}, false
	}
	title = show.String(canon.StripStatusPrefix(*title))
	if *title == "" {
		return show.CandidateRecord{}, false
	}

	return show.CandidateRecord{
		Title:       title,
		Venue:       e.text(s, e.sel.Venue),
		Date:        e.date(s),
		Time:        e.text(s, e.sel.Time),
		Price:       e.text(s, e.sel.Price),
		Description: e.text(s, e.sel.Description),
		EventURL:    e.link(s, e.sel.Link, "href"),
		ImageURL:    e.link(s, e.sel.Image, "src"),
		AgeLimit:    e.text(s, e.sel.AgeLimit),
	}, true
}

// enrich overlays fields found in a detail document onto a stub. Title and
// date only fill gaps; everything else prefers the detail page.
func (e extractor) enrich(stub show.CandidateRecord, s *goquery.Selection) show.CandidateRecord {
	if stub.Title == nil {
		if title := e.text(s, e.sel.Title); title != nil {
			stub.Title = show.String(canon.StripStatusPrefix(*title))
		}
	}
	if stub.Date == nil {
		stub.Date = e.date(s)
	}
	stub.Venue = prefer(e.text(s, e.sel.Venue), stub.Venue)
	stub.Time = prefer(e.text(s, e.sel.Time), stub.Time)
	stub.Price = prefer(e.text(s, e.sel.Price), stub.Price)
	stub.Description = prefer(e.text(s, e.sel.Description), stub.Description)
	stub.ImageURL = prefer(e.link(s, e.sel.Image, "src"), stub.ImageURL)
	stub.AgeLimit = prefer(e.text(s, e.sel.AgeLimit), stub.AgeLimit)
	return stub
}

func (e extractor) text(s *goquery.Selection, selector string) *string {
	if selector == "" {
		return nil
	}
	found := s.Find(selector).First()
	if found.Length() == 0 {
		return nil
	}
	return canon.CollapsePtr(show.String(found.Text()))
}

func (e extractor) date(s *goquery.Selection) *string {
	if e.sel.Date == "" {
		return nil
	}
	found := s.Find(e.sel.Date).First()
	if found.Length() == 0 {
		return nil
	}
	raw := found.Text()
	if e.sel.DateAttr != "" {
		if v, ok := found.Attr(e.sel.DateAttr); ok {
			raw = v
		}
	}
	return canon.ResolveDatePtr(&raw, e.now)
}

func (e extractor) link(s *goquery.Selection, selector, attr string) *string {
	if selector == "" {
		return nil
	}
	found := s.Find(selector).First()
	if found.Length() == 0 {
		return nil
	}
	if goquery.NodeName(found) != "a" && goquery.NodeName(found) != "img" {
		// Allow selectors that point at a wrapper around the element.
		if inner := found.Find("a, img").First(); inner.Length() > 0 {
			found = inner
		}
	}
	raw, ok := found.Attr(attr)
	if !ok {
		return nil
	}
	return resolve(e.base, raw)
}

func resolve(base *url.URL, raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return nil
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	return show.String(ref.String())
}

func prefer(a, b *string) *string {
	if a != nil {
		return a
	}
	return b
}

// stamp applies the fixed per-source fields.
func stamp(rec show.CandidateRecord, cfg Config) show.CandidateRecord {
	if cfg.Venue != "" {
		rec.Venue = show.String(cfg.Venue)
	}
	if cfg.VenueURL != "" && rec.VenueURL == nil {
		rec.VenueURL = show.String(cfg.VenueURL)
	}
	if len(cfg.Tags) > 0 {
		rec.Tags = append(append([]string{}, rec.Tags...), cfg.Tags...)
	}
	return rec
}

// orListingURL points records without their own page at the page they were
// listed on.
func orListingURL(records []show.CandidateRecord, listingURL string) []show.CandidateRecord {
	if listingURL == "" {
		return records
	}
	for i := range records {
		if records[i].EventURL == nil {
			records[i].EventURL = show.String(listingURL)
		}
	}
	return records
}
