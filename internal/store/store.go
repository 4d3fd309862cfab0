// Package store persists sequencer runs and their frames in SQLite.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"lifegrid/internal/sequencer"
)

//go:embed schema.sql
var schemaSQL string

const currentSchemaVersion = 1

// ErrNotFound is returned when a run or frame does not exist.
var ErrNotFound = errors.New("store: not found")

// Run describes one recorded sequencer run.
type Run struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Rows      int       `json:"rows"`
	Cols      int       `json:"cols"`
	Seed      int64     `json:"seed"`
	CreatedAt time.Time `json:"created_at"`
}

// Store provides durable storage for run history.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path and applies the
// schema. It is safe to call on an existing database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// NewRunID returns a time-ordered UUIDv7 string.
func NewRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// CreateRun inserts a run. An empty ID is replaced by NewRunID and a zero
// CreatedAt by the current time. The stored run is returned.
func (s *Store) CreateRun(ctx context.Context, r Run) (Run, error) {
	if r.ID == "" {
		r.ID = NewRunID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	r.CreatedAt = r.CreatedAt.UTC().Truncate(time.Millisecond)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, name, rows, cols, seed, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.ID, r.Name, r.Rows, r.Cols, r.Seed, r.CreatedAt.UnixMilli())
	if err != nil {
		return Run{}, fmt.Errorf("create run: %w", err)
	}
	return r, nil
}

// WriteFrame stores one frame of a run. Rewriting the same generation is a
// no-op.
func (s *Store) WriteFrame(ctx context.Context, runID string, f sequencer.Frame) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO frames (run_id, gen, alive, cells)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id, gen) DO NOTHING
	`, runID, f.Gen, f.Alive, f.Cells)
	if err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Runs lists every run, oldest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, rows, cols, seed, created_at FROM runs ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRun loads a single run.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, rows, cols, seed, created_at FROM runs WHERE id = ?
	`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

// Frames returns every frame of a run in generation order.
func (s *Store) Frames(ctx context.Context, runID string) ([]sequencer.Frame, error) {
	run, err := s.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT gen, alive, cells FROM frames WHERE run_id = ? ORDER BY gen
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list frames: %w", err)
	}
	defer rows.Close()

	var out []sequencer.Frame
	for rows.Next() {
		f := sequencer.Frame{Rows: run.Rows, Cols: run.Cols}
		if err := rows.Scan(&f.Gen, &f.Alive, &f.Cells); err != nil {
			return nil, fmt.Errorf("list frames: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Frame returns a single generation of a run.
func (s *Store) Frame(ctx context.Context, runID string, gen int) (sequencer.Frame, error) {
	run, err := s.GetRun(ctx, runID)
	if err != nil {
		return sequencer.Frame{}, err
	}
	f := sequencer.Frame{Gen: gen, Rows: run.Rows, Cols: run.Cols}
	err = s.db.QueryRowContext(ctx, `
		SELECT alive, cells FROM frames WHERE run_id = ? AND gen = ?
	`, runID, gen).Scan(&f.Alive, &f.Cells)
	if errors.Is(err, sql.ErrNoRows) {
		return sequencer.Frame{}, fmt.Errorf("run %s generation %d: %w", runID, gen, ErrNotFound)
	}
	if err != nil {
		return sequencer.Frame{}, fmt.Errorf("get frame: %w", err)
	}
	return f, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var r Run
	var created int64
	if err := sc.Scan(&r.ID, &r.Name, &r.Rows, &r.Cols, &r.Seed, &created); err != nil {
		return Run{}, err
	}
	r.CreatedAt = time.UnixMilli(created).UTC()
	return r, nil
}

// Recorder is a sequencer.Sink that writes every frame to a run.
type Recorder struct {
	store *Store
	runID string
}

// NewRecorder returns a sink that records frames under runID.
func NewRecorder(s *Store, runID string) *Recorder {
	return &Recorder{store: s, runID: runID}
}

// Emit implements sequencer.Sink.
func (r *Recorder) Emit(ctx context.Context, f sequencer.Frame) error {
	return r.store.WriteFrame(ctx, r.runID, f)
}
