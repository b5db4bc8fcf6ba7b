// Package storage routes snapshots to their destinations. Concrete writers
// live in the local, gcs, memory and postgres subpackages.
package storage

import (
	"context"
	"fmt"
	"strings"

	gcsstorage "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/JakeFAU/showcrawl/internal/show"
	"github.com/JakeFAU/showcrawl/internal/storage/gcs"
	"github.com/JakeFAU/showcrawl/internal/storage/local"
)

// Writer persists a snapshot and returns the URI it was written to.
type Writer interface {
	Write(ctx context.Context, snap show.Snapshot) (string, error)
}

// CloseFunc releases resources held by an opened writer.
type CloseFunc func() error

// Open returns the writer for destination: gs://bucket/object uploads to
// Cloud Storage, anything else is a local file path.
func Open(ctx context.Context, destination string, opts ...option.ClientOption) (Writer, CloseFunc, error) {
	if strings.HasPrefix(destination, "gs://") {
		cfg, err := gcs.ParseURI(destination)
		if err != nil {
			return nil, nil, err
		}
		client, err := gcsstorage.NewClient(ctx, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("create storage client: %w", err)
		}
		w, err := gcs.New(client, cfg)
		if err != nil {
			_ = client.Close() //nolint:errcheck // construction error wins
			return nil, nil, err
		}
		return w, client.Close, nil
	}

	w, err := local.New(local.Config{Path: destination})
	if err != nil {
		return nil, nil, err
	}
	return w, func() error { return nil }, nil
}

// Multi writes every snapshot to a primary writer and then to each mirror.
// Any failure fails the write.
type Multi struct {
	writers []Writer
}

// NewMulti combines writers. The first writer's URI is the one reported.
func NewMulti(primary Writer, mirrors ...Writer) *Multi {
	writers := make([]Writer, 0, 1+len(mirrors))
	writers = append(writers, primary)
	for _, m := range mirrors {
		if m != nil {
			writers = append(writers, m)
		}
	}
	return &Multi{writers: writers}
}

// Write implements Writer.
func (m *Multi) Write(ctx context.Context, snap show.Snapshot) (string, error) {
	var primaryURI string
	for i, w := range m.writers {
		uri, err := w.Write(ctx, snap)
		if err != nil {
			if i == 0 {
				return "", fmt.Errorf("write snapshot: %w", err)
			}
			return "", fmt.Errorf("mirror snapshot (%s written): %w", primaryURI, err)
		}
		if i == 0 {
			primaryURI = uri
		}
	}
	return primaryURI, nil
}
