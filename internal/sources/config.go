// Package sources provides configurable adapters for common listing shapes:
// selector-driven HTML pages, listing pages with per-show detail pages,
// schema.org JSON-LD event markup and RSS/Atom feeds.
package sources

import (
	"fmt"
	"net/url"
	"strings"
)

// Adapter kinds.
const (
	KindHTML    = "html"
	KindListing = "listing"
	KindJSONLD  = "jsonld"
	KindFeed    = "feed"
)

// Config describes one configured source.
type Config struct {
	Name     string `mapstructure:"name"`
	Kind     string `mapstructure:"kind"`
	URL      string `mapstructure:"url"`
	Venue    string `mapstructure:"venue"`
	VenueURL string `mapstructure:"venue_url"`
	// Render fetches the main document through the headless browser.
	Render bool `mapstructure:"render"`
	// RenderURL is the second document a jsonld source reads show times from.
	// It is always fetched through the headless browser when one is available.
	RenderURL string    `mapstructure:"render_url"`
	Selectors Selectors `mapstructure:"selectors"`
	Detail    Selectors `mapstructure:"detail"`
	Tags      []string  `mapstructure:"tags"`
}

// Selectors are CSS selectors evaluated relative to Item (or to the whole
// document when Item is empty).
type Selectors struct {
	Item        string `mapstructure:"item"`
	Title       string `mapstructure:"title"`
	Venue       string `mapstructure:"venue"`
	Date        string `mapstructure:"date"`
	DateAttr    string `mapstructure:"date_attr"`
	Time        string `mapstructure:"time"`
	Price       string `mapstructure:"price"`
	Description string `mapstructure:"description"`
	Link        string `mapstructure:"link"`
	Image       string `mapstructure:"image"`
	AgeLimit    string `mapstructure:"age_limit"`
}

// Validate checks the fields every kind needs.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("adapter name is required")
	}
	u, err := url.Parse(c.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("adapter %q: url must be absolute", c.Name)
	}
	switch c.Kind {
	case KindHTML, KindListing:
		if c.Selectors.Item == "" || c.Selectors.Title == "" {
			return fmt.Errorf("adapter %q: selectors.item and selectors.title are required", c.Name)
		}
		if c.Kind == KindListing && c.Selectors.Link == "" {
			return fmt.Errorf("adapter %q: selectors.link is required for listing sources", c.Name)
		}
	case KindJSONLD:
		if c.RenderURL != "" && (c.Selectors.Item == "" || c.Selectors.Title == "" || c.Selectors.Time == "") {
			return fmt.Errorf("adapter %q: render_url needs selectors.item, selectors.title and selectors.time", c.Name)
		}
	case KindFeed:
	default:
		return fmt.Errorf("adapter %q: unknown kind %q", c.Name, c.Kind)
	}
	return nil
}

// NeedsHeadless reports whether the source requires a browser fetcher.
func (c Config) NeedsHeadless() bool {
	return c.Render
}
