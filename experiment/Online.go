package experiment

import (
	"fmt"
	"io"
	"time"

	"github.com/samuelfneumann/gopanda/agent"
	env "github.com/samuelfneumann/gopanda/environment"
	"github.com/samuelfneumann/gopanda/experiment/checkpointer"
	"github.com/samuelfneumann/gopanda/experiment/trackers"
	ts "github.com/samuelfneumann/gopanda/timestep"
	"github.com/samuelfneumann/gopanda/utils/progressbar"
)

// Online is an Experiment that runs an agent online only. No offline
// evaluation is performed.
type Online struct {
	environment   env.Environment
	agent         agent.Agent
	maxSteps      int
	currentSteps  int
	trackers      []trackers.Tracker
	checkpointers []checkpointer.Checkpointer
	progress      *progressbar.ProgressBar
}

// NewOnline creates and returns a new online experiment on a given
// environment with a given agent. The steps parameter determines how
// many timesteps the experiment is run for, the t parameter determines
// what data is tracked and the c parameter determines when the agent
// is checkpointed.
func NewOnline(e env.Environment, a agent.Agent, steps int,
	t []trackers.Tracker, c []checkpointer.Checkpointer) *Online {
	if steps < 0 {
		panic(fmt.Sprintf("newOnline: steps must be non-negative, got %v",
			steps))
	}
	return &Online{
		environment:   e,
		agent:         a,
		maxSteps:      steps,
		trackers:      t,
		checkpointers: c,
	}
}

// ShowProgress displays a progress bar of the total steps on out while
// the experiment runs
func (o *Online) ShowProgress(out io.Writer, width int) {
	o.progress = progressbar.NewProgressBar(out, width, o.maxSteps,
		time.Second)
}

// Register registers a trackers.Tracker with an Experiment so that data
// generated during the experiment can be tracked and saved
func (o *Online) Register(t trackers.Tracker) {
	o.trackers = append(o.trackers, t)
}

// AddCheckpointer adds a checkpointer to the experiment
func (o *Online) AddCheckpointer(c checkpointer.Checkpointer) {
	o.checkpointers = append(o.checkpointers, c)
}

// TotalSteps returns the number of steps taken so far
func (o *Online) TotalSteps() int {
	return o.currentSteps
}

// Agent returns the agent of the experiment
func (o *Online) Agent() agent.Agent {
	return o.agent
}

// RunEpisode runs a single episode of the experiment
func (o *Online) RunEpisode() (bool, error) {
	step, err := o.environment.Reset()
	if err != nil {
		return true, fmt.Errorf("runEpisode: could not reset: %v", err)
	}
	if err := o.agent.ObserveFirst(step); err != nil {
		return true, fmt.Errorf("runEpisode: %v", err)
	}
	o.track(step)

	// Run the next timestep
	for !step.Last() && o.currentSteps < o.maxSteps {
		o.currentSteps++

		// Select action, step in environment
		action, err := o.agent.SelectAction(step)
		if err != nil {
			return true, fmt.Errorf("runEpisode: could not select action: "+
				"%v", err)
		}
		step, _, err = o.environment.Step(action)
		if err != nil {
			return true, fmt.Errorf("runEpisode: %v", err)
		}

		// Cache the environment step in each Tracker
		o.track(step)

		// Observe the timestep and step the agent
		if err := o.agent.Observe(action, step); err != nil {
			return true, fmt.Errorf("runEpisode: %v", err)
		}
		if err := o.agent.Step(); err != nil {
			return true, fmt.Errorf("runEpisode: %v", err)
		}

		if err := o.checkpoint(); err != nil {
			return true, fmt.Errorf("runEpisode: %v", err)
		}
		if o.progress != nil {
			o.progress.Increment()
		}
	}
	o.agent.EndEpisode()

	// Return whether or not the max timestep limit has been reached
	return o.currentSteps >= o.maxSteps, nil
}

// Run runs the entire experiment for all timesteps
func (o *Online) Run() error {
	if o.progress != nil {
		o.progress.Display()
		defer o.progress.Close()
	}

	for ended := false; !ended; {
		var err error
		if ended, err = o.RunEpisode(); err != nil {
			return fmt.Errorf("run: %v", err)
		}
	}
	return nil
}

// Save saves all the data cached by the Trackers
func (o *Online) Save() error {
	for _, t := range o.trackers {
		if err := t.Save(); err != nil {
			return fmt.Errorf("save: %v", err)
		}
	}
	return nil
}

// track tracks the current timestep by caching its data in each
// Tracker
func (o *Online) track(t ts.TimeStep) {
	for _, tracker := range o.trackers {
		tracker.Track(t)
	}
}

// checkpoint checkpoints each checkpointer
func (o *Online) checkpoint() error {
	for _, c := range o.checkpointers {
		if err := c.Checkpoint(o.currentSteps); err != nil {
			return err
		}
	}
	return nil
}
