// Package environment outlines the interfaces and structs needed to
// implement goal-conditioned environments
package environment

import (
	"gonum.org/v1/gonum/mat"

	ts "github.com/samuelfneumann/gopanda/timestep"
)

// Starter implements a distribution of starting states and samples starting
// states for environments
type Starter interface {
	Start() *mat.VecDense
}

// Ender determines when an episode ends
type Ender interface {
	End(*ts.TimeStep) bool
}

// Environment implements a simulated environment, which includes a Task
// to complete. Environments start ready to use, and must be reset
// between episodes.
type Environment interface {
	Reset() (ts.TimeStep, error)
	Step(action *mat.VecDense) (ts.TimeStep, bool, error)
	CurrentTimeStep() ts.TimeStep

	DiscountSpec() Spec
	ObservationSpec() Spec
	ActionSpec() Spec
	GoalSpec() Spec
}

// Closer is an Environment that holds resources that must be released
type Closer interface {
	Environment
	Close() error
}
