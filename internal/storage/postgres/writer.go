// Package postgres mirrors snapshots into Postgres tables.
//
// The writer expects two tables:
//
//	CREATE TABLE shows (
//		run_id      uuid NOT NULL,
//		show_key    text PRIMARY KEY,
//		title       text NOT NULL,
//		venue       text NOT NULL,
//		show_date   text,
//		show_time   text,
//		price       text,
//		description text,
//		venue_url   text,
//		event_url   text,
//		age_limit   text,
//		image_url   text,
//		tags        text[] NOT NULL
//	);
//	CREATE TABLE snapshot_runs (
//		run_id       uuid PRIMARY KEY,
//		generated_at timestamptz NOT NULL,
//		show_count   integer NOT NULL,
//		errors       jsonb NOT NULL
//	);
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/showcrawl/internal/show"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Default table names.
const (
	DefaultShowsTable = "shows"
	DefaultRunsTable  = "snapshot_runs"
)

// Config controls the Postgres connection pool and target tables.
type Config struct {
	DSN             string
	ShowsTable      string
	RunsTable       string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

type beginCloser interface {
	Begin(context.Context) (pgx.Tx, error)
	Close()
}

// Writer replaces the shows table with each snapshot and records the run.
type Writer struct {
	pool       beginCloser
	showsTable string
	runsTable  string
}

// New connects to Postgres and returns a Writer.
func New(ctx context.Context, cfg Config) (*Writer, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("output.postgres.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	w, err := NewWithPool(pool, cfg.ShowsTable, cfg.RunsTable)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return w, nil
}

// NewWithPool constructs a Writer from an existing pool (primarily for testing).
func NewWithPool(pool beginCloser, showsTable, runsTable string) (*Writer, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if showsTable == "" {
		showsTable = DefaultShowsTable
	}
	if runsTable == "" {
		runsTable = DefaultRunsTable
	}
	for _, table := range []string{showsTable, runsTable} {
		if !validTableName.MatchString(table) {
			return nil, fmt.Errorf("invalid table name %q", table)
		}
	}
	return &Writer{pool: pool, showsTable: showsTable, runsTable: runsTable}, nil
}

// Close releases the underlying pool resources.
func (w *Writer) Close() {
	if w == nil || w.pool == nil {
		return
	}
	w.pool.Close()
}

// Write replaces the mirrored shows with snap inside one transaction.
func (w *Writer) Write(ctx context.Context, snap show.Snapshot) (string, error) {
	if snap.RunID == "" {
		return "", fmt.Errorf("snapshot run id is required")
	}
	errorsJSON, err := json.Marshal(nonNilErrors(snap.Errors))
	if err != nil {
		return "", fmt.Errorf("marshal source errors: %w", err)
	}

	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	if err := w.replace(ctx, tx, snap, errorsJSON); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return "", fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit snapshot: %w", err)
	}
	return fmt.Sprintf("postgres:%s?run_id=%s", w.showsTable, snap.RunID), nil
}

func (w *Writer) replace(ctx context.Context, tx pgx.Tx, snap show.Snapshot, errorsJSON []byte) error {
	if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s`, w.showsTable)); err != nil {
		return fmt.Errorf("clear shows: %w", err)
	}

	insertShow := fmt.Sprintf(`
INSERT INTO %s (
	run_id,
	show_key,
	title,
	venue,
	show_date,
	show_time,
	price,
	description,
	venue_url,
	event_url,
	age_limit,
	image_url,
	tags
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13
)`, w.showsTable)
	for _, r := range snap.Shows {
		tags := r.Tags
		if tags == nil {
			tags = []string{}
		}
		args := []any{
			snap.RunID,
			r.Key().String(),
			r.Title,
			r.Venue,
			r.Date,
			r.Time,
			r.Price,
			r.Description,
			r.VenueURL,
			r.EventURL,
			r.AgeLimit,
			r.ImageURL,
			tags,
		}
		if _, err := tx.Exec(ctx, insertShow, args...); err != nil {
			return fmt.Errorf("insert show %q: %w", r.Title, err)
		}
	}

	insertRun := fmt.Sprintf(`
INSERT INTO %s (
	run_id,
	generated_at,
	show_count,
	errors
) VALUES (
	$1,$2,$3,$4
)`, w.runsTable)
	if _, err := tx.Exec(ctx, insertRun, snap.RunID, snap.GeneratedAt, len(snap.Shows), errorsJSON); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func nonNilErrors(errs []show.SourceError) []show.SourceError {
	if errs == nil {
		return []show.SourceError{}
	}
	return errs
}
