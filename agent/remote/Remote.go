// Package remote implements agents whose learning algorithm runs in an
// external learner server. The agent forwards observations, actions and
// rewards to the server and receives actions in return. The server
// implements goal-conditioned off-policy algorithms (TQC and SAC) with
// hindsight experience replay.
//
// The protocol is as follows, with all bodies JSON objects:
//
//	POST   /agents              create an agent, returns {"id"}
//	POST   /agents/load         load a saved agent, returns {"id"}
//	POST   /agents/{id}/act     select an action, returns {"action"}
//	POST   /agents/{id}/observe record a transition
//	POST   /agents/{id}/step    perform an update
//	POST   /agents/{id}/save    save the agent to a path
//	DELETE /agents/{id}         release the agent
package remote

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tidwall/sjson"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gopanda/agent"
	"github.com/samuelfneumann/gopanda/environment"
	ts "github.com/samuelfneumann/gopanda/timestep"
)

// Algorithms implemented by the learner server
const (
	TQC agent.Type = "TQC"
	SAC agent.Type = "SAC"
)

func init() {
	agent.Register(TQC, Config{})
	agent.Register(SAC, Config{})
}

// ParseAlgorithm returns the algorithm named by s
func ParseAlgorithm(s string) (agent.Type, error) {
	switch agent.Type(s) {
	case TQC, SAC:
		return agent.Type(s), nil
	}
	return "", fmt.Errorf("parseAlgorithm: no such algorithm %q, expected "+
		"%v or %v", s, TQC, SAC)
}

// Hyperparameters are the hyperparameters of the learner
type Hyperparameters struct {
	LearningRate  float64 `json:"learning_rate"`
	BufferSize    int     `json:"buffer_size"`
	BatchSize     int     `json:"batch_size"`
	Gamma         float64 `json:"gamma"`
	Tau           float64 `json:"tau"`
	NetArch       []int   `json:"net_arch"`
	NCritics      int     `json:"n_critics"`
	LearningStart int     `json:"learning_starts"`

	// Hindsight experience replay
	NSampledGoal          int    `json:"n_sampled_goal"`
	GoalSelectionStrategy string `json:"goal_selection_strategy"`
}

// DefaultHyperparameters returns the hyperparameters used to train on
// the moving-platform environments
func DefaultHyperparameters() Hyperparameters {
	return Hyperparameters{
		LearningRate:          1e-3,
		BufferSize:            1_000_000,
		BatchSize:             2048,
		Gamma:                 0.95,
		Tau:                   0.05,
		NetArch:               []int{512, 512, 512},
		NCritics:              2,
		LearningStart:         100,
		NSampledGoal:          4,
		GoalSelectionStrategy: "future",
	}
}

// Validate returns an error if the hyperparameters are invalid
func (h Hyperparameters) Validate() error {
	switch {
	case h.LearningRate <= 0:
		return fmt.Errorf("validate: learning rate must be positive")
	case h.BufferSize <= 0 || h.BatchSize <= 0:
		return fmt.Errorf("validate: buffer and batch sizes must be positive")
	case h.BatchSize > h.BufferSize:
		return fmt.Errorf("validate: batch size %v exceeds buffer size %v",
			h.BatchSize, h.BufferSize)
	case h.Gamma < 0 || h.Gamma > 1:
		return fmt.Errorf("validate: gamma must be in [0, 1]")
	case h.Tau <= 0 || h.Tau > 1:
		return fmt.Errorf("validate: tau must be in (0, 1]")
	case len(h.NetArch) == 0:
		return fmt.Errorf("validate: network architecture must have at " +
			"least one layer")
	case h.NCritics <= 0:
		return fmt.Errorf("validate: there must be at least one critic")
	case h.NSampledGoal < 0:
		return fmt.Errorf("validate: number of sampled goals cannot be " +
			"negative")
	}

	switch h.GoalSelectionStrategy {
	case "future", "final", "episode":
	default:
		return fmt.Errorf("validate: no such goal selection strategy %q",
			h.GoalSelectionStrategy)
	}

	for _, units := range h.NetArch {
		if units <= 0 {
			return fmt.Errorf("validate: layers must have positive width")
		}
	}
	return nil
}

// Config configures a remote agent. If LoadPath is set, the agent is
// loaded from the path instead of created.
type Config struct {
	Algorithm agent.Type
	EnvID     string
	URL       string
	Timeout   time.Duration
	LoadPath  string
	Hyperparameters
}

// Validate implements the agent.Config interface
func (c Config) Validate() error {
	if _, err := ParseAlgorithm(string(c.Algorithm)); err != nil {
		return fmt.Errorf("validate: %v", err)
	}
	if c.EnvID == "" {
		return fmt.Errorf("validate: no environment id")
	}
	if c.LoadPath != "" {
		return nil
	}
	return c.Hyperparameters.Validate()
}

// Type implements the agent.Config interface
func (c Config) Type() agent.Type {
	return c.Algorithm
}

// CreateAgent implements the agent.Config interface
func (c Config) CreateAgent(env environment.Environment,
	seed uint64) (agent.Agent, error) {
	return New(context.Background(), env, c, seed)
}

// Remote is an agent whose learner runs in a learner server. Remote
// satisfies the agent.Agent, agent.Closer and agent.Saver interfaces.
type Remote struct {
	client *Client
	id     string
	algo   agent.Type
	eval   bool
	ctx    context.Context

	prevStep ts.TimeStep
}

// New creates a new agent in the learner server, or loads one if
// c.LoadPath is set. The context bounds every later request of the
// agent.
func New(ctx context.Context, env environment.Environment, c Config,
	seed uint64) (*Remote, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	var (
		body []byte
		err  error
		path = "/agents"
	)
	body, err = setFields(body,
		field{"algo", string(c.Algorithm)},
		field{"env_id", c.EnvID},
		field{"seed", seed},
	)
	if err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	if c.LoadPath != "" {
		path = "/agents/load"
		body, err = setFields(body, field{"path", c.LoadPath})
	} else {
		body, err = setSpaces(body, env)
		if err == nil {
			body, err = setFields(body,
				field{"hyperparameters", c.Hyperparameters})
		}
	}
	if err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	client := NewClient(c.URL, c.Timeout)
	resp, err := client.Do(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	id := resp.Get("id").String()
	if id == "" {
		return nil, fmt.Errorf("new: server returned no agent id")
	}

	return &Remote{
		client: client,
		id:     id,
		algo:   c.Algorithm,
		ctx:    ctx,
	}, nil
}

// setSpaces describes the observation and action spaces of env in the
// request body
func setSpaces(body []byte, env environment.Environment) ([]byte, error) {
	var err error
	sizes := map[string]int{
		"observation_space.observation":   env.ObservationSpec().Shape.Len(),
		"observation_space.achieved_goal": env.GoalSpec().Shape.Len(),
		"observation_space.desired_goal":  env.GoalSpec().Shape.Len(),
	}
	for path, size := range sizes {
		body, err = sjson.SetBytes(body, path, size)
		if err != nil {
			return nil, fmt.Errorf("setSpaces: %v", err)
		}
	}

	spec := env.ActionSpec()
	body, err = setVec(body, "action_space.low", spec.LowerBound)
	if err != nil {
		return nil, fmt.Errorf("setSpaces: %v", err)
	}
	body, err = setVec(body, "action_space.high", spec.UpperBound)
	if err != nil {
		return nil, fmt.Errorf("setSpaces: %v", err)
	}
	return body, nil
}

// ID returns the id of the agent in the learner server
func (r *Remote) ID() string {
	return r.id
}

// Algorithm returns the learning algorithm of the agent
func (r *Remote) Algorithm() agent.Type {
	return r.algo
}

// SelectAction asks the learner server for an action. In evaluation
// mode actions are deterministic.
func (r *Remote) SelectAction(t ts.TimeStep) (*mat.VecDense, error) {
	body, err := setObservation(nil, "observation", t)
	if err != nil {
		return nil, fmt.Errorf("selectAction: %v", err)
	}
	body, err = setFields(body, field{"deterministic", r.eval})
	if err != nil {
		return nil, fmt.Errorf("selectAction: %v", err)
	}

	resp, err := r.client.Do(r.ctx, http.MethodPost, r.path("act"), body)
	if err != nil {
		return nil, fmt.Errorf("selectAction: %v", err)
	}

	action, err := vecOf(resp.Get("action"))
	if err != nil {
		return nil, fmt.Errorf("selectAction: %v", err)
	}
	return action, nil
}

// ObserveFirst records the first timestep of an episode
func (r *Remote) ObserveFirst(t ts.TimeStep) error {
	if !t.First() {
		return fmt.Errorf("observeFirst: timestep %v is not the first "+
			"of an episode", t.Number)
	}
	r.prevStep = t
	return nil
}

// Observe sends the transition from the previous timestep to nextStep
// to the learner server
func (r *Remote) Observe(action mat.Vector, nextStep ts.TimeStep) error {
	body, err := setObservation(nil, "observation", r.prevStep)
	if err != nil {
		return fmt.Errorf("observe: %v", err)
	}
	body, err = setObservation(body, "next_observation", nextStep)
	if err != nil {
		return fmt.Errorf("observe: %v", err)
	}
	body, err = setVec(body, "action", action)
	if err != nil {
		return fmt.Errorf("observe: %v", err)
	}

	body, err = setFields(body,
		field{"reward", nextStep.Reward},
		field{"done", nextStep.Last()},
		field{"timeout", nextStep.EndType() == ts.Timeout},
		field{"info", map[string]float64(nextStep.Info)},
	)
	if err != nil {
		return fmt.Errorf("observe: %v", err)
	}

	if _, err := r.client.Do(r.ctx, http.MethodPost, r.path("observe"),
		body); err != nil {
		return fmt.Errorf("observe: %v", err)
	}
	r.prevStep = nextStep
	return nil
}

// Step asks the learner server to perform an update. Updates are
// skipped in evaluation mode.
func (r *Remote) Step() error {
	if r.eval {
		return nil
	}
	if _, err := r.client.Do(r.ctx, http.MethodPost, r.path("step"),
		nil); err != nil {
		return fmt.Errorf("step: %v", err)
	}
	return nil
}

// EndEpisode implements the agent.Learner interface
func (r *Remote) EndEpisode() {
	r.prevStep = ts.TimeStep{}
}

// Save asks the learner server to save the agent to path
func (r *Remote) Save(path string) error {
	body, err := setFields(nil, field{"path", path})
	if err != nil {
		return fmt.Errorf("save: %v", err)
	}
	if _, err := r.client.Do(r.ctx, http.MethodPost, r.path("save"),
		body); err != nil {
		return fmt.Errorf("save: %v", err)
	}
	return nil
}

// Close releases the agent in the learner server
func (r *Remote) Close() error {
	if _, err := r.client.Do(r.ctx, http.MethodDelete, "/agents/"+r.id,
		nil); err != nil {
		return fmt.Errorf("close: %v", err)
	}
	return nil
}

// Eval sets the agent to evaluation mode
func (r *Remote) Eval() { r.eval = true }

// Train sets the agent to training mode
func (r *Remote) Train() { r.eval = false }

// IsEval returns whether the agent is in evaluation mode
func (r *Remote) IsEval() bool { return r.eval }

func (r *Remote) path(endpoint string) string {
	return "/agents/" + r.id + "/" + endpoint
}
