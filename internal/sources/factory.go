package sources

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/showcrawl/internal/adapter"
)

// Deps are the shared services adapters are built with.
type Deps struct {
	// Static fetches plain HTTP documents.
	Static *adapter.Client
	// Rendered fetches through a headless browser. Nil when rendering is
	// disabled.
	Rendered *adapter.Client
	Clock    adapter.Clock
	Logger   *zap.Logger
}

// NewFromConfig builds the adapter for one source.
func NewFromConfig(cfg Config, deps Deps) (adapter.Adapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Static == nil || deps.Clock == nil {
		return nil, fmt.Errorf("adapter %q: static client and clock are required", cfg.Name)
	}
	main := deps.Static
	if cfg.Render {
		if deps.Rendered == nil {
			return nil, fmt.Errorf("adapter %q: render requested but headless fetching is disabled", cfg.Name)
		}
		main = deps.Rendered
	}

	switch cfg.Kind {
	case KindHTML:
		return NewHTML(cfg, main, deps.Clock, deps.Logger), nil
	case KindListing:
		return NewListing(cfg, main, deps.Clock, deps.Logger), nil
	case KindJSONLD:
		return NewJSONLD(cfg, main, deps.Rendered, deps.Clock, deps.Logger), nil
	case KindFeed:
		return NewFeed(cfg, main, deps.Clock, deps.Logger), nil
	default:
		return nil, fmt.Errorf("adapter %q: unknown kind %q", cfg.Name, cfg.Kind)
	}
}

// Build constructs a registry from configured sources in order.
func Build(cfgs []Config, deps Deps) (*adapter.Registry, error) {
	registry, err := adapter.NewRegistry()
	if err != nil {
		return nil, err
	}
	for _, cfg := range cfgs {
		a, err := NewFromConfig(cfg, deps)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(a); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
