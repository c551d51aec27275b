// Package store records simulation runs in SQLite: every collision, plus a
// population sample every few ticks.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"voidfield/internal/sim"
)

//go:embed schema.sql
var schema string

// ErrRunNotFound is returned for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// Store persists run recordings.
type Store struct {
	sqlDB       *sql.DB
	sampleEvery uint64
}

// Stats summarises one recorded run.
type Stats struct {
	RunID         string
	Preset        string
	Seed          int64
	StartedAt     time.Time
	Collisions    int
	Samples       int
	LastTick      uint64
	PeakParticles int
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens (creating if needed) the database at path and applies the
// schema. A population sample is kept every sampleEvery ticks.
func Open(path string, sampleEvery int) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if sampleEvery <= 0 {
		return nil, fmt.Errorf("sample interval must be positive, got %d", sampleEvery)
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB, sampleEvery: uint64(sampleEvery)}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// BeginRun registers a new run and returns its id.
func (s *Store) BeginRun(ctx context.Context, preset string, cfg sim.Config) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO runs (id, preset, seed, width, height, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, preset, cfg.Seed, cfg.Width, cfg.Height, toMillis(time.Now()),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// RecordFrame stores the frame's collisions and, on sample ticks, its
// population counts. Frames without either cost nothing.
func (s *Store) RecordFrame(ctx context.Context, runID string, f sim.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sample := f.Tick%s.sampleEvery == 0
	if len(f.Collisions) == 0 && !sample {
		return nil
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, c := range f.Collisions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO collisions (run_id, tick, a, b, x, y) VALUES (?, ?, ?, ?, ?, ?)`,
			runID, int64(f.Tick), int64(c.A), int64(c.B), c.At.X, c.At.Y,
		); err != nil {
			return fmt.Errorf("insert collision: %w", err)
		}
	}
	if sample {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO samples (run_id, tick, particles, effects, paths, balls) VALUES (?, ?, ?, ?, ?, ?)`,
			runID, int64(f.Tick), len(f.Particles), len(f.Effects), len(f.Paths), f.Balls(),
		); err != nil {
			return fmt.Errorf("insert sample: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit frame: %w", err)
	}
	return nil
}

// RunStats summarises a run.
func (s *Store) RunStats(ctx context.Context, runID string) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	st := Stats{RunID: runID}
	var startedAt int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT preset, seed, started_at FROM runs WHERE id = ?`, runID,
	).Scan(&st.Preset, &st.Seed, &startedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Stats{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return Stats{}, fmt.Errorf("query run: %w", err)
	}
	st.StartedAt = fromMillis(startedAt)

	var collisionTick, sampleTick int64
	if err := s.sqlDB.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(MAX(tick), 0) FROM collisions WHERE run_id = ?`, runID,
	).Scan(&st.Collisions, &collisionTick); err != nil {
		return Stats{}, fmt.Errorf("query collisions: %w", err)
	}
	if err := s.sqlDB.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(MAX(tick), 0), COALESCE(MAX(particles), 0) FROM samples WHERE run_id = ?`, runID,
	).Scan(&st.Samples, &sampleTick, &st.PeakParticles); err != nil {
		return Stats{}, fmt.Errorf("query samples: %w", err)
	}
	st.LastTick = uint64(max(collisionTick, sampleTick))
	return st, nil
}
