// Package orchestrator invokes every registered adapter concurrently and
// collects successes and failures without letting one source affect another.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/showcrawl/internal/adapter"
	"github.com/JakeFAU/showcrawl/internal/metrics"
	"github.com/JakeFAU/showcrawl/internal/settle"
	"github.com/JakeFAU/showcrawl/internal/show"
)

// Batch is the raw output of one successful adapter.
type Batch struct {
	Source  string
	Records []show.CandidateRecord
}

// Result holds the settled outcome of a run. Both slices follow registry
// order.
type Result struct {
	Batches []Batch
	Errors  []show.SourceError
}

// Candidates concatenates every batch in order.
func (r Result) Candidates() []show.CandidateRecord {
	var out []show.CandidateRecord
	for _, b := range r.Batches {
		out = append(out, b.Records...)
	}
	return out
}

// Orchestrator runs adapters.
type Orchestrator struct {
	logger *zap.Logger
}

// New builds an Orchestrator.
func New(logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{logger: logger}
}

// Run starts every adapter at once and waits for all of them to settle. A
// failing adapter contributes a SourceError and no records.
func (o *Orchestrator) Run(ctx context.Context, adapters []adapter.Adapter) Result {
	outcomes := settle.All(ctx, len(adapters), func(ctx context.Context, i int) ([]show.CandidateRecord, error) {
		return o.invoke(ctx, adapters[i])
	})

	var res Result
	for i, outcome := range outcomes {
		name := adapters[i].Name()
		if outcome.Err != nil {
			res.Errors = append(res.Errors, show.SourceError{Source: name, Error: outcome.Err.Error()})
			continue
		}
		res.Batches = append(res.Batches, Batch{Source: name, Records: outcome.Value})
	}
	return res
}

func (o *Orchestrator) invoke(ctx context.Context, a adapter.Adapter) (records []show.CandidateRecord, err error) {
	name := a.Name()
	logger := o.logger.With(zap.String("adapter", name))
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			records, err = nil, fmt.Errorf("adapter panicked: %v", r)
			logger.Error("adapter panicked", zap.Any("panic", r))
		}
		status := "success"
		if err != nil {
			status = "failure"
		}
		metrics.ObserveAdapterRun(name, status, len(records), time.Since(start))
	}()

	logger.Info("adapter started")
	records, err = a.Fetch(ctx)
	if err != nil {
		logger.Warn("adapter failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return nil, err
	}
	logger.Info("adapter finished",
		zap.Int("records", len(records)),
		zap.Duration("duration", time.Since(start)),
	)
	return records, nil
}
