package experiment_test

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/gopanda/agent"
	"github.com/samuelfneumann/gopanda/agent/random"
	"github.com/samuelfneumann/gopanda/environment/envconfig"
	"github.com/samuelfneumann/gopanda/environment/panda"
	"github.com/samuelfneumann/gopanda/experiment"
	"github.com/samuelfneumann/gopanda/experiment/checkpointer"
	"github.com/samuelfneumann/gopanda/experiment/trackers"
	ts "github.com/samuelfneumann/gopanda/timestep"
)

const envID = "PandaPickAndPlaceAndMove-v1"

// countingAgent counts the calls made to a random agent
type countingAgent struct {
	agent.Agent

	firsts, observed, steps, ends int
	evalActions, trainActions     int
	saved                         []string
}

func (c *countingAgent) SelectAction(t ts.TimeStep) (*mat.VecDense,
	error) {
	if c.IsEval() {
		c.evalActions++
	} else {
		c.trainActions++
	}
	return c.Agent.SelectAction(t)
}

func (c *countingAgent) ObserveFirst(t ts.TimeStep) error {
	c.firsts++
	return c.Agent.ObserveFirst(t)
}

func (c *countingAgent) Observe(a mat.Vector, t ts.TimeStep) error {
	c.observed++
	return c.Agent.Observe(a, t)
}

func (c *countingAgent) Step() error {
	c.steps++
	return c.Agent.Step()
}

func (c *countingAgent) EndEpisode() {
	c.ends++
	c.Agent.EndEpisode()
}

func (c *countingAgent) Save(path string) error {
	c.saved = append(c.saved, path)
	return nil
}

func newEnv(t *testing.T) *panda.Env {
	env, _, err := envconfig.Make(envID, 1, false)
	if err != nil {
		t.Fatalf("make: %v", err)
	}
	return env
}

func newAgent(t *testing.T, env *panda.Env) *countingAgent {
	r, err := random.New(env, 1)
	if err != nil {
		t.Fatalf("random: %v", err)
	}
	return &countingAgent{Agent: r}
}

func TestOnline(t *testing.T) {
	dir := t.TempDir()
	env := newEnv(t)
	a := newAgent(t, env)

	ret := trackers.NewReturn(filepath.Join(dir, "return.bin"))
	length := trackers.NewEpisodeLength(filepath.Join(dir, "length.bin"))
	check := checkpointer.NewNStep(50, a, checkpointer.StepNamer(dir, envID))

	o := experiment.NewOnline(env, a, 120, []trackers.Tracker{ret},
		[]checkpointer.Checkpointer{check})
	o.Register(length)

	if err := o.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}

	if o.TotalSteps() != 120 {
		t.Errorf("totalSteps: expected 120, got %v", o.TotalSteps())
	}
	if a.firsts != 3 || a.ends != 3 {
		t.Errorf("run: expected 3 episodes, got %v first steps and %v "+
			"episode ends", a.firsts, a.ends)
	}
	if a.observed != 120 || a.steps != 120 || a.trainActions != 120 {
		t.Errorf("run: expected 120 observations, updates and actions, got "+
			"%v, %v and %v", a.observed, a.steps, a.trainActions)
	}

	// The last episode is cut off by the step limit
	if want := []float64{50, 50}; !floats.Equal(length.Data(), want) {
		t.Errorf("run: expected episode lengths %v, got %v", want,
			length.Data())
	}
	if len(ret.Data()) != 2 {
		t.Errorf("run: expected 2 returns, got %v", ret.Data())
	}

	want := []string{
		filepath.Join(dir, envID+"_50_steps"),
		filepath.Join(dir, envID+"_100_steps"),
	}
	if len(a.saved) != len(want) || a.saved[0] != want[0] ||
		a.saved[1] != want[1] {
		t.Errorf("run: expected checkpoints %v, got %v", want, a.saved)
	}

	if err := o.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	for _, name := range []string{"return.bin", "length.bin"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("save: %v not saved: %v", name, err)
		}
	}
}

func TestOnlineProgress(t *testing.T) {
	env := newEnv(t)
	a := newAgent(t, env)

	var out strings.Builder
	o := experiment.NewOnline(env, a, 10, nil, nil)
	o.ShowProgress(&out, 20)

	if err := o.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "100.00%") {
		t.Errorf("run: expected full progress bar, got %q", out.String())
	}
}

func TestEvaluate(t *testing.T) {
	env := newEnv(t)
	a := newAgent(t, env)
	length := trackers.NewEpisodeLength("")

	eval, err := experiment.Evaluate(env, a, 3, length)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	if len(eval.Returns) != 3 || len(eval.Successes) != 3 {
		t.Errorf("evaluate: expected 3 episodes, got %v returns and %v "+
			"successes", len(eval.Returns), len(eval.Successes))
	}
	if a.evalActions != 150 || a.trainActions != 0 {
		t.Errorf("evaluate: expected 150 evaluation actions, got %v "+
			"evaluation and %v training actions", a.evalActions,
			a.trainActions)
	}
	if a.IsEval() {
		t.Error("evaluate: agent should be returned to training mode")
	}
	if a.observed != 0 || a.steps != 0 {
		t.Error("evaluate: agent should not learn")
	}
	if want := []float64{50, 50, 50}; !floats.Equal(length.Data(), want) {
		t.Errorf("evaluate: expected lengths %v, got %v", want, length.Data())
	}

	if _, err := experiment.Evaluate(env, a, 0); err == nil {
		t.Error("evaluate: zero episodes should fail")
	}
}

func TestEvaluationStatistics(t *testing.T) {
	e := experiment.Evaluation{
		Returns:   []float64{1, 2, 3, 4},
		Successes: []float64{1, 0, 0, 1},
	}

	mean, std := e.MeanReturn()
	if math.Abs(mean-2.5) > 1e-12 || math.Abs(std-math.Sqrt(1.25)) > 1e-12 {
		t.Errorf("meanReturn: expected 2.5 +/- %v, got %v +/- %v",
			math.Sqrt(1.25), mean, std)
	}
	if rate := e.SuccessRate(); rate != 0.5 {
		t.Errorf("successRate: expected 0.5, got %v", rate)
	}
	if s := e.String(); !strings.HasPrefix(s, "mean_reward=2.50 +/- 1.118") {
		t.Errorf("string: unexpected format %q", s)
	}
}

func TestCreateExp(t *testing.T) {
	envConf, err := envconfig.Lookup(envID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}

	c := experiment.Config{
		Type:      experiment.OnlineExp,
		MaxSteps:  10,
		EnvConf:   envConf,
		AgentConf: agent.NewTypedConfig(random.Config{}),
	}
	exp, err := c.CreateExp(2)
	if err != nil {
		t.Fatalf("createExp: %v", err)
	}
	if err := exp.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if exp.TotalSteps() != 10 {
		t.Errorf("run: expected 10 steps, got %v", exp.TotalSteps())
	}

	c.Type = "OfflineExperiment"
	if _, err := c.CreateExp(2); err == nil {
		t.Error("createExp: unknown experiment type should fail")
	}
}
