package store

import (
	"context"
	"fmt"

	ts "github.com/samuelfneumann/gopanda/timestep"
)

// Recorder tracks the episodes of an experiment and records a summary
// of each finished episode in a Store. Recorder satisfies the
// trackers.Tracker interface.
//
// Errors from the Store do not interrupt the experiment. The first
// error is kept, no further episodes are recorded, and the error is
// returned by Save.
type Recorder struct {
	ctx   context.Context
	store Store
	runID string

	episode int
	ret     float64
	length  int
	err     error
}

// NewRecorder returns a Recorder which records episodes of run runID
// in s
func NewRecorder(ctx context.Context, s Store, runID string) *Recorder {
	return &Recorder{ctx: ctx, store: s, runID: runID}
}

// Track accumulates the return and length of the current episode and
// records the episode once t is its last step
func (r *Recorder) Track(t ts.TimeStep) {
	if t.First() {
		r.ret, r.length = 0, 0
		return
	}
	r.ret += t.Reward
	r.length++

	if !t.Last() || r.err != nil {
		return
	}

	err := r.store.RecordEpisode(r.ctx, Episode{
		RunID:   r.runID,
		Index:   r.episode,
		Return:  r.ret,
		Length:  r.length,
		Success: t.Success(),
	})
	if err != nil {
		r.err = fmt.Errorf("track: could not record episode %v: %v",
			r.episode, err)
	}
	r.episode++
}

// Episodes returns the number of episodes recorded
func (r *Recorder) Episodes() int {
	return r.episode
}

// Save returns the first error encountered while recording episodes
func (r *Recorder) Save() error {
	return r.err
}
