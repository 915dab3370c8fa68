// Package timestep implements timesteps of the agent-environment interaction
package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StepType denotes the type of step that a TimeStep can be, either  first
// environmental step, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// EndType denotes how an episode ended
type EndType int

const (
	// Unended means the episode has not ended yet
	Unended EndType = iota

	// Timeout means the episode was cut off by an episode step limit
	Timeout

	// TerminalStateReached means the environment entered a terminal state
	TerminalStateReached
)

func (e EndType) String() string {
	switch e {
	case Timeout:
		return "Timeout"
	case TerminalStateReached:
		return "TerminalStateReached"
	default:
		return "Unended"
	}
}

// Keys of the step information recorded by goal-conditioned environments
const (
	IsSuccess       string = "is_success"
	GripperDistance string = "gripper_distance"
)

// Info holds auxiliary step information keyed by name. Reward functions
// look keys up directly, so a missing key is a programming error.
type Info map[string]float64

// Get returns the value stored for key, panicking if the key is missing.
func (i Info) Get(key string) float64 {
	v, ok := i[key]
	if !ok {
		panic(fmt.Sprintf("get: info has no key %q", key))
	}
	return v
}

// TimeStep packages together a single timestep in a goal-conditioned
// environment. The Observation holds the full state observation, while
// AchievedGoal and DesiredGoal hold the goal the agent currently
// achieves and the goal it must reach.
type TimeStep struct {
	StepType
	Reward       float64
	Discount     float64
	Observation  *mat.VecDense
	AchievedGoal *mat.VecDense
	DesiredGoal  *mat.VecDense
	Info         Info
	Number       int
	endType      EndType
}

// New returns a new TimeStep
func New(t StepType, r, d float64, o, achieved, desired *mat.VecDense,
	info Info, n int) TimeStep {
	return TimeStep{
		StepType:     t,
		Reward:       r,
		Discount:     d,
		Observation:  o,
		AchievedGoal: achieved,
		DesiredGoal:  desired,
		Info:         info,
		Number:       n,
	}
}

// First returns whether a TimeStep is the first in an environment
func (t *TimeStep) First() bool {
	return t.StepType == First
}

// Mid returns whether a TimeStep is a middle step in an environment
func (t *TimeStep) Mid() bool {
	return t.StepType == Mid
}

// Last returns whether a TimeStep is the last step in an environment
func (t *TimeStep) Last() bool {
	return t.StepType == Last
}

// SetEnd sets the way the episode ended
func (t *TimeStep) SetEnd(e EndType) {
	t.endType = e
}

// EndType returns how the episode ended. If the TimeStep is not the last
// in the episode, Unended is returned.
func (t *TimeStep) EndType() EndType {
	return t.endType
}

// Success returns whether the step information marks the step as a
// success. Steps without success information are not successful.
func (t *TimeStep) Success() bool {
	return t.Info[IsSuccess] == 1.0
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  Reward:  %.2f  |  Discount: %.2f  |  " +
		"Step Number:  %v"

	return fmt.Sprintf(str, t.StepType, t.Reward, t.Discount, t.Number)
}
