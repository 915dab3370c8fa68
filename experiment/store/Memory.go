package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore is a Store that keeps all runs in memory
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]Run
	episodes    map[string][]Episode
}

// NewMemoryStore returns a new, uninitialized MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Init initializes the store, removing any recorded runs
func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]Run)
	s.episodes = make(map[string][]Episode)
	return nil
}

// CreateRun records a new run
func (s *MemoryStore) CreateRun(_ context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return fmt.Errorf("createRun: store not initialized")
	}
	if _, ok := s.runs[run.ID]; ok {
		return fmt.Errorf("createRun: run %v already exists", run.ID)
	}
	s.runs[run.ID] = run
	return nil
}

// RecordEpisode records an episode of an existing run
func (s *MemoryStore) RecordEpisode(_ context.Context, episode Episode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[episode.RunID]; !ok {
		return fmt.Errorf("recordEpisode: no such run %v", episode.RunID)
	}
	s.episodes[episode.RunID] = append(s.episodes[episode.RunID], episode)
	return nil
}

// FinishRun marks a run as finished after totalSteps steps
func (s *MemoryStore) FinishRun(_ context.Context, id string, totalSteps int,
	finished time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[id]
	if !ok {
		return fmt.Errorf("finishRun: no such run %v", id)
	}
	run.TotalSteps = totalSteps
	run.Finished = finished
	s.runs[id] = run
	return nil
}

// GetRun returns the run with the given ID and whether it exists
func (s *MemoryStore) GetRun(_ context.Context, id string) (Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

// Runs returns all runs ordered by start time
func (s *MemoryStore) Runs(_ context.Context) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]Run, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Started.Before(runs[j].Started)
	})
	return runs, nil
}

// Episodes returns the episodes of a run in the order they were recorded
func (s *MemoryStore) Episodes(_ context.Context, runID string) ([]Episode,
	error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]Episode(nil), s.episodes[runID]...), nil
}
