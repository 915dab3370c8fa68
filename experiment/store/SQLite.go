package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a Store backed by a SQLite database
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

// NewSQLiteStore returns a new SQLiteStore for the database at path. The
// database is opened by Init.
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

// Init opens the database and creates its tables if needed
func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("init: sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("init: %v", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("init: %v", err)
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return fmt.Errorf("init: %v", err)
	}

	s.db = db
	return nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// CreateRun records a new run
func (s *SQLiteStore) CreateRun(ctx context.Context, run Run) error {
	db, err := s.getDB()
	if err != nil {
		return fmt.Errorf("createRun: %v", err)
	}

	// Seeds are stored as text since SQLite integers are signed
	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, env_id, algorithm, seed, started, finished,
			total_steps)
		VALUES (?, ?, ?, ?, ?, NULL, ?)
	`, run.ID, run.EnvID, run.Algorithm, fmt.Sprint(run.Seed),
		run.Started.UnixNano(), run.TotalSteps)
	if err != nil {
		return fmt.Errorf("createRun: %v", err)
	}
	return nil
}

// RecordEpisode records an episode of an existing run
func (s *SQLiteStore) RecordEpisode(ctx context.Context,
	episode Episode) error {
	db, err := s.getDB()
	if err != nil {
		return fmt.Errorf("recordEpisode: %v", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO episodes (run_id, idx, ep_return, length, success)
		VALUES (?, ?, ?, ?, ?)
	`, episode.RunID, episode.Index, episode.Return, episode.Length,
		episode.Success)
	if err != nil {
		return fmt.Errorf("recordEpisode: %v", err)
	}
	return nil
}

// FinishRun marks a run as finished after totalSteps steps
func (s *SQLiteStore) FinishRun(ctx context.Context, id string,
	totalSteps int, finished time.Time) error {
	db, err := s.getDB()
	if err != nil {
		return fmt.Errorf("finishRun: %v", err)
	}

	res, err := db.ExecContext(ctx, `
		UPDATE runs SET finished = ?, total_steps = ? WHERE id = ?
	`, finished.UnixNano(), totalSteps, id)
	if err != nil {
		return fmt.Errorf("finishRun: %v", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finishRun: no such run %v", id)
	}
	return nil
}

// GetRun returns the run with the given ID and whether it exists
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (Run, bool,
	error) {
	db, err := s.getDB()
	if err != nil {
		return Run{}, false, fmt.Errorf("getRun: %v", err)
	}

	row := db.QueryRowContext(ctx, `
		SELECT id, env_id, algorithm, seed, started, finished, total_steps
		FROM runs WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, false, nil
		}
		return Run{}, false, fmt.Errorf("getRun: %v", err)
	}
	return run, true, nil
}

// Runs returns all runs ordered by start time
func (s *SQLiteStore) Runs(ctx context.Context) ([]Run, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, fmt.Errorf("runs: %v", err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, env_id, algorithm, seed, started, finished, total_steps
		FROM runs ORDER BY started
	`)
	if err != nil {
		return nil, fmt.Errorf("runs: %v", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("runs: %v", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("runs: %v", err)
	}
	return runs, nil
}

// scanRun scans a row of the runs table
func scanRun(row interface{ Scan(...any) error }) (Run, error) {
	var (
		run      Run
		seed     string
		started  int64
		finished sql.NullInt64
	)
	err := row.Scan(&run.ID, &run.EnvID, &run.Algorithm, &seed, &started,
		&finished, &run.TotalSteps)
	if err != nil {
		return Run{}, err
	}

	if _, err := fmt.Sscan(seed, &run.Seed); err != nil {
		return Run{}, fmt.Errorf("invalid seed %q: %v", seed, err)
	}
	run.Started = time.Unix(0, started).UTC()
	if finished.Valid {
		run.Finished = time.Unix(0, finished.Int64).UTC()
	}
	return run, nil
}

// Episodes returns the episodes of a run ordered by index
func (s *SQLiteStore) Episodes(ctx context.Context, runID string) ([]Episode,
	error) {
	db, err := s.getDB()
	if err != nil {
		return nil, fmt.Errorf("episodes: %v", err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT run_id, idx, ep_return, length, success
		FROM episodes WHERE run_id = ? ORDER BY idx
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("episodes: %v", err)
	}
	defer rows.Close()

	var episodes []Episode
	for rows.Next() {
		var e Episode
		if err := rows.Scan(&e.RunID, &e.Index, &e.Return, &e.Length,
			&e.Success); err != nil {
			return nil, fmt.Errorf("episodes: %v", err)
		}
		episodes = append(episodes, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("episodes: %v", err)
	}
	return episodes, nil
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("sqlite store not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			env_id TEXT NOT NULL,
			algorithm TEXT NOT NULL,
			seed TEXT NOT NULL,
			started INTEGER NOT NULL,
			finished INTEGER,
			total_steps INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS episodes (
			run_id TEXT NOT NULL REFERENCES runs(id),
			idx INTEGER NOT NULL,
			ep_return REAL NOT NULL,
			length INTEGER NOT NULL,
			success INTEGER NOT NULL,
			PRIMARY KEY (run_id, idx)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("createTables: %v", err)
		}
	}
	return nil
}
