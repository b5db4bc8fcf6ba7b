// Package gcs writes snapshots to Google Cloud Storage.
package gcs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/JakeFAU/showcrawl/internal/show"
	"github.com/JakeFAU/showcrawl/internal/snapshot"
)

// Config names the destination object.
type Config struct {
	Bucket string
	Object string
}

// ParseURI splits a gs://bucket/object destination.
func ParseURI(raw string) (Config, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Config{}, fmt.Errorf("parse gcs uri: %w", err)
	}
	if u.Scheme != "gs" {
		return Config{}, fmt.Errorf("gcs uri %q must use the gs scheme", raw)
	}
	cfg := Config{Bucket: u.Host, Object: strings.TrimPrefix(u.Path, "/")}
	if cfg.Bucket == "" || cfg.Object == "" {
		return Config{}, fmt.Errorf("gcs uri %q needs a bucket and an object", raw)
	}
	return cfg, nil
}

// Writer uploads snapshots to one object. GCS object writes are atomic, so
// readers never observe a partial snapshot.
type Writer struct {
	client *storage.Client
	bucket string
	object string
}

// New creates a GCS-backed writer.
func New(client *storage.Client, cfg Config) (*Writer, error) {
	if client == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	if strings.TrimSpace(cfg.Object) == "" {
		return nil, fmt.Errorf("object name is required")
	}
	return &Writer{client: client, bucket: cfg.Bucket, object: cfg.Object}, nil
}

// Write uploads snap and returns its gs:// URI.
func (w *Writer) Write(ctx context.Context, snap show.Snapshot) (string, error) {
	data, err := snapshot.Encode(snap)
	if err != nil {
		return "", err
	}
	writer := w.client.Bucket(w.bucket).Object(w.object).NewWriter(ctx)
	writer.ContentType = snapshot.ContentType
	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		closeErr := writer.Close()
		if closeErr != nil {
			return "", fmt.Errorf("copy object: %w (close writer: %v)", err, closeErr)
		}
		return "", fmt.Errorf("copy object: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close writer: %w", err)
	}
	return fmt.Sprintf("gs://%s/%s", w.bucket, w.object), nil
}
