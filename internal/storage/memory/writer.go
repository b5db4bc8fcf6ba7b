// Package memory keeps snapshots in memory for tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/JakeFAU/showcrawl/internal/show"
)

// Writer records every snapshot written to it.
type Writer struct {
	mu        sync.RWMutex
	snapshots []show.Snapshot
	err       error
}

// New creates an empty Writer.
func New() *Writer {
	return &Writer{}
}

// FailWith makes subsequent writes return err.
func (w *Writer) FailWith(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.err = err
}

// Write stores snap and returns a pseudo URI.
func (w *Writer) Write(_ context.Context, snap show.Snapshot) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return "", w.err
	}
	w.snapshots = append(w.snapshots, snap)
	return fmt.Sprintf("memory://snapshots/%d", len(w.snapshots)), nil
}

// Snapshots returns the recorded snapshots in write order.
func (w *Writer) Snapshots() []show.Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]show.Snapshot, len(w.snapshots))
	copy(out, w.snapshots)
	return out
}

// Last returns the most recent snapshot.
func (w *Writer) Last() (show.Snapshot, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if len(w.snapshots) == 0 {
		return show.Snapshot{}, false
	}
	return w.snapshots[len(w.snapshots)-1], true
}
