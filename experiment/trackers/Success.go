package trackers

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/samuelfneumann/gopanda/timestep"
)

// Success tracks whether each episode of an experiment ended in
// success, 1.0 for a success and 0.0 otherwise. An episode is a success
// if its last timestep is.
type Success struct {
	successes []float64
	filename  string
}

// NewSuccess returns a new Success tracker which will save its data at
// the specified location filename
func NewSuccess(filename string) *Success {
	return &Success{filename: filename}
}

// Track records the success of the episode if t is its last timestep
func (s *Success) Track(t timestep.TimeStep) {
	if !t.Last() {
		return
	}

	success := 0.0
	if t.Success() {
		success = 1.0
	}
	s.successes = append(s.successes, success)
}

// Rate returns the fraction of finished episodes that were successful
func (s *Success) Rate() float64 {
	if len(s.successes) == 0 {
		return 0
	}

	return stat.Mean(s.successes, nil)
}

// Data returns the success of all finished episodes
func (s *Success) Data() []float64 {
	return append([]float64(nil), s.successes...)
}

// Save saves the data tracked by the Success Tracker to disk.
func (s *Success) Save() error {
	if err := save(s.filename, s.successes); err != nil {
		return fmt.Errorf("save: could not save successes: %v", err)
	}
	return nil
}
