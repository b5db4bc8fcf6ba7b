// Package local writes snapshots to the local filesystem.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/JakeFAU/showcrawl/internal/show"
	"github.com/JakeFAU/showcrawl/internal/snapshot"
)

// Config captures the parameters for the local snapshot writer.
type Config struct {
	// Path is the snapshot file consumers read.
	Path string `mapstructure:"path" yaml:"path"`
}

// Writer replaces a snapshot file atomically.
type Writer struct {
	path string
}

// New creates a local writer, creating the parent directory when needed and
// checking that it is writable.
func New(cfg Config) (*Writer, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("output path is required")
	}
	path, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve output path: %w", err)
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return nil, fmt.Errorf("output path %s is a directory", path)
	}

	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		if mkErr := os.MkdirAll(dir, 0o750); mkErr != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", mkErr)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to stat output directory: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("output directory %s is not a directory", dir)
	}

	probe, err := os.CreateTemp(dir, ".writable-*")
	if err != nil {
		return nil, fmt.Errorf("output directory is not writable: %w", err)
	}
	_ = probe.Close() //nolint:errcheck // probe is removed immediately
	if err := os.Remove(probe.Name()); err != nil {
		return nil, fmt.Errorf("failed to clean up probe file: %w", err)
	}

	return &Writer{path: path}, nil
}

// Path returns the absolute snapshot path.
func (w *Writer) Path() string {
	return w.path
}

// Write encodes snap to a temporary file beside the target and renames it into
// place. A failed write leaves the previous snapshot untouched.
func (w *Writer) Write(ctx context.Context, snap show.Snapshot) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := snapshot.Encode(snap)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(filepath.Dir(w.path), "."+filepath.Base(w.path)+".*")
	if err != nil {
		return "", fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = os.Remove(tmpName) //nolint:errcheck // best effort
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close() //nolint:errcheck // write error wins
		cleanup()
		return "", fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close() //nolint:errcheck // sync error wins
		cleanup()
		return "", fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, w.path); err != nil {
		cleanup()
		return "", fmt.Errorf("replace snapshot: %w", err)
	}
	return "file://" + w.path, nil
}
