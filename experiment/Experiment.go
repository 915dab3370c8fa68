// Package experiment implements functionality for running an experiment
package experiment

import (
	"fmt"

	"github.com/samuelfneumann/gopanda/agent"
	"github.com/samuelfneumann/gopanda/environment/envconfig"
	"github.com/samuelfneumann/gopanda/experiment/checkpointer"
	"github.com/samuelfneumann/gopanda/experiment/trackers"
)

// Interface Experiment outlines structs that can run experiments.
// Experiments send each environment TimeStep to their Trackers, which
// cache the data they need in RAM to be later saved to disk. The Save()
// function will then save all cached data to disk. This is usually
// performed after an experiment has been run. The Run() method will
// run all episodes until the maximum timestep limit is reached, and
// the RunEpisode() function will run a single episode.
//
// New Trackers can be registered with an Experiment through the
// constructor or through an Experiment's Register() function.
// Checkpointers are handed the total number of steps taken after each
// step so that they can periodically save the agent.
type Experiment interface {
	Run() error

	// RunEpisode returns whether the step limit has been reached
	RunEpisode() (bool, error)

	// Save all tracked data
	Save() error

	// Adds a new trackers.Tracker to the (possibly already running)
	// experiment. Useful if you want to track data only after a
	// specified event.
	Register(t trackers.Tracker)

	// AddCheckpointer adds a checkpointer to the experiment
	AddCheckpointer(c checkpointer.Checkpointer)

	// TotalSteps returns the number of steps taken so far
	TotalSteps() int

	// Agent returns the agent of the experiment
	Agent() agent.Agent
}

// Type is the type of an experiment
type Type string

const (
	OnlineExp Type = "OnlineExperiment"
)

// Config represents a configuration of an experiment.
type Config struct {
	Type
	MaxSteps  uint
	EnvConf   envconfig.Config
	AgentConf agent.TypedConfig
}

// CreateExp creates the experiment described by the Config. The
// environment and agent are both seeded with seed.
func (c Config) CreateExp(seed uint64, t ...trackers.Tracker) (Experiment,
	error) {
	if err := c.AgentConf.Validate(); err != nil {
		return nil, fmt.Errorf("createExp: invalid agent config: %v", err)
	}

	env, _, err := c.EnvConf.Create(seed, false)
	if err != nil {
		return nil, fmt.Errorf("createExp: could not create environment: %v",
			err)
	}

	a, err := c.AgentConf.CreateAgent(env, seed)
	if err != nil {
		return nil, fmt.Errorf("createExp: could not create agent: %v", err)
	}

	switch c.Type {
	case OnlineExp:
		return NewOnline(env, a, int(c.MaxSteps), t, nil), nil
	}

	return nil, fmt.Errorf("createExp: no such experiment type %v", c.Type)
}
