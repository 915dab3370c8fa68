// Package store records the runs of experiments and the episodes
// completed in each run. Runs can be kept in memory or in a SQLite
// database.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StoreEnv names the environment variable holding the path of the
// SQLite database runs are recorded in. If the variable is empty, runs
// are kept in memory.
const StoreEnv string = "GOPANDA_STORE"

// Run describes a single training or evaluation run
type Run struct {
	ID        string
	EnvID     string
	Algorithm string
	Seed      uint64

	Started  time.Time
	Finished time.Time // Zero until the run is finished

	TotalSteps int
}

// Episode is the summary of a single episode of a run
type Episode struct {
	RunID   string
	Index   int
	Return  float64
	Length  int
	Success bool
}

// Store records runs and their episodes
type Store interface {
	Init(ctx context.Context) error
	CreateRun(ctx context.Context, run Run) error
	RecordEpisode(ctx context.Context, episode Episode) error
	FinishRun(ctx context.Context, id string, totalSteps int,
		finished time.Time) error

	// GetRun returns the run with the given ID and whether it exists
	GetRun(ctx context.Context, id string) (Run, bool, error)

	// Runs returns all runs ordered by start time
	Runs(ctx context.Context) ([]Run, error)

	// Episodes returns the episodes of a run ordered by index
	Episodes(ctx context.Context, runID string) ([]Episode, error)
}

// NewRun returns a new Run with a fresh ID started at the current time
func NewRun(envID, algorithm string, seed uint64) Run {
	return Run{
		ID:        uuid.NewString(),
		EnvID:     envID,
		Algorithm: algorithm,
		Seed:      seed,
		Started:   time.Now().UTC(),
	}
}

// New returns an initialized Store. If path is empty, runs are kept in
// memory. Otherwise, runs are recorded in the SQLite database at path.
func New(ctx context.Context, path string) (Store, error) {
	var s Store
	if path == "" {
		s = NewMemoryStore()
	} else {
		s = NewSQLiteStore(path)
	}

	if err := s.Init(ctx); err != nil {
		CloseIfSupported(s)
		return nil, fmt.Errorf("new: could not initialize store: %v", err)
	}
	return s, nil
}

// CloseIfSupported closes s if it holds resources that must be released
func CloseIfSupported(s Store) error {
	closer, ok := s.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
