// Package pipeline runs every adapter and turns their output into one
// persisted snapshot.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/showcrawl/internal/adapter"
	"github.com/JakeFAU/showcrawl/internal/canon"
	"github.com/JakeFAU/showcrawl/internal/merge"
	"github.com/JakeFAU/showcrawl/internal/metrics"
	"github.com/JakeFAU/showcrawl/internal/orchestrator"
	"github.com/JakeFAU/showcrawl/internal/publisher"
	"github.com/JakeFAU/showcrawl/internal/show"
	"github.com/JakeFAU/showcrawl/internal/snapshot"
	"github.com/JakeFAU/showcrawl/internal/storage"
)

// Hasher digests the encoded snapshot for notifications.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// IDGenerator issues run identifiers.
type IDGenerator interface {
	NewID() (string, error)
}

// Deps wires a Pipeline.
type Deps struct {
	Orchestrator *orchestrator.Orchestrator
	Assembler    *snapshot.Assembler
	Writer       storage.Writer
	Clock        adapter.Clock
	IDs          IDGenerator
	Logger       *zap.Logger

	// Publisher and Topic are optional. Both must be set for notifications.
	Publisher publisher.Publisher
	Topic     string
	Hasher    Hasher

	// MetricsTextfile, when set, receives the default gatherer after each run.
	MetricsTextfile string
}

// Report summarizes a completed run.
type Report struct {
	Snapshot       show.Snapshot
	URI            string
	Discarded      int
	NotificationID string
}

// Pipeline is the "run all adapters" operation.
type Pipeline struct {
	deps   Deps
	logger *zap.Logger
}

// New validates deps and builds a Pipeline.
func New(deps Deps) (*Pipeline, error) {
	switch {
	case deps.Orchestrator == nil:
		return nil, errors.New("orchestrator is required")
	case deps.Assembler == nil:
		return nil, errors.New("assembler is required")
	case deps.Writer == nil:
		return nil, errors.New("writer is required")
	case deps.Clock == nil:
		return nil, errors.New("clock is required")
	case deps.IDs == nil:
		return nil, errors.New("id generator is required")
	case deps.Publisher != nil && deps.Hasher == nil:
		return nil, errors.New("hasher is required when publishing")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{deps: deps, logger: logger.Named("pipeline")}, nil
}

// Run fetches every adapter, merges their output and persists the snapshot.
// Adapter failures are reported in the snapshot; a write failure fails the run.
func (p *Pipeline) Run(ctx context.Context, adapters []adapter.Adapter) (Report, error) {
	result := p.deps.Orchestrator.Run(ctx, adapters)

	var merged []show.ShowRecord
	for _, batch := range result.Batches {
		merged = append(merged, merge.Collapse(canon.NormalizeAll(batch.Records))...)
	}
	shows, discarded := merge.Dedup(merged)
	metrics.ObserveDedupDiscarded(discarded)

	runID, err := p.deps.IDs.NewID()
	if err != nil {
		return Report{}, fmt.Errorf("run id: %w", err)
	}
	snap := p.deps.Assembler.Assemble(shows, result.Errors, p.deps.Clock.Now(), runID)

	uri, err := p.deps.Writer.Write(ctx, snap)
	if err != nil {
		p.logger.Error("snapshot write failed", zap.String("run_id", runID), zap.Error(err))
		return Report{Snapshot: snap, Discarded: discarded}, fmt.Errorf("persist snapshot: %w", err)
	}
	metrics.ObserveSnapshot(len(snap.Shows), snap.GeneratedAt)
	p.logger.Info("snapshot written",
		zap.String("run_id", runID),
		zap.String("uri", uri),
		zap.Int("shows", len(snap.Shows)),
		zap.Int("errors", len(snap.Errors)),
		zap.Int("discarded", discarded),
	)

	report := Report{Snapshot: snap, URI: uri, Discarded: discarded}
	report.NotificationID = p.notify(ctx, snap, uri)
	p.exportMetrics()
	return report, nil
}

func (p *Pipeline) notify(ctx context.Context, snap show.Snapshot, uri string) string {
	if p.deps.Publisher == nil || p.deps.Topic == "" {
		return ""
	}
	data, err := snapshot.Encode(snap)
	if err != nil {
		p.logger.Warn("snapshot notification skipped", zap.Error(err))
		return ""
	}
	digest, err := p.deps.Hasher.Hash(data)
	if err != nil {
		p.logger.Warn("snapshot notification skipped", zap.Error(err))
		return ""
	}
	id, err := p.deps.Publisher.Publish(ctx, p.deps.Topic, publisher.Notification{
		RunID:       snap.RunID,
		URI:         uri,
		SHA256:      digest,
		Shows:       len(snap.Shows),
		Errors:      len(snap.Errors),
		GeneratedAt: snap.GeneratedAt,
	})
	if err != nil {
		p.logger.Warn("snapshot notification failed", zap.String("topic", p.deps.Topic), zap.Error(err))
		return ""
	}
	return id
}

func (p *Pipeline) exportMetrics() {
	if p.deps.MetricsTextfile == "" {
		return
	}
	if err := metrics.WriteTextfile(p.deps.MetricsTextfile); err != nil {
		p.logger.Warn("metrics textfile export failed", zap.String("path", p.deps.MetricsTextfile), zap.Error(err))
	}
}
