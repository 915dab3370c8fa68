// Package random implements an agent which selects actions uniformly at
// random from the action space of an environment and never learns.
package random

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/samuelfneumann/gopanda/agent"
	"github.com/samuelfneumann/gopanda/environment"
	ts "github.com/samuelfneumann/gopanda/timestep"
)

// Type is the agent.Type of the random agent
const Type agent.Type = "Random"

func init() {
	agent.Register(Type, Config{})
}

// Config configures a random agent. The zero value is valid.
type Config struct{}

// CreateAgent implements the agent.Config interface
func (c Config) CreateAgent(env environment.Environment,
	seed uint64) (agent.Agent, error) {
	return New(env, seed)
}

// Validate implements the agent.Config interface
func (c Config) Validate() error {
	return nil
}

// Type implements the agent.Config interface
func (c Config) Type() agent.Type {
	return Type
}

// Random selects actions uniformly at random within the bounds of the
// action space of an environment
type Random struct {
	actions *distmv.Uniform
	eval    bool
}

// New returns a new random agent acting in env
func New(env environment.Environment, seed uint64) (*Random, error) {
	spec := env.ActionSpec()
	bounds := make([]r1.Interval, spec.LowerBound.Len())
	for i := range bounds {
		low, high := spec.LowerBound.AtVec(i), spec.UpperBound.AtVec(i)
		if math.IsInf(low, 0) || math.IsInf(high, 0) {
			return nil, fmt.Errorf("new: action dimension %v is unbounded", i)
		}
		bounds[i] = r1.Interval{Min: low, Max: high}
	}

	return &Random{
		actions: distmv.NewUniform(bounds, rand.NewSource(seed)),
	}, nil
}

// SelectAction returns an action sampled uniformly at random
func (r *Random) SelectAction(_ ts.TimeStep) (*mat.VecDense, error) {
	action := r.actions.Rand(nil)
	return mat.NewVecDense(len(action), action), nil
}

// Eval sets the agent to evaluation mode. Actions remain random.
func (r *Random) Eval() { r.eval = true }

// Train sets the agent to training mode
func (r *Random) Train() { r.eval = false }

// IsEval returns whether the agent is in evaluation mode
func (r *Random) IsEval() bool { return r.eval }

// Step implements the agent.Learner interface. The random agent does
// not learn.
func (r *Random) Step() error { return nil }

// Observe implements the agent.Learner interface
func (r *Random) Observe(mat.Vector, ts.TimeStep) error { return nil }

// ObserveFirst implements the agent.Learner interface
func (r *Random) ObserveFirst(ts.TimeStep) error { return nil }

// EndEpisode implements the agent.Learner interface
func (r *Random) EndEpisode() {}
