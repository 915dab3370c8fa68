package experiment

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/samuelfneumann/gopanda/agent"
	env "github.com/samuelfneumann/gopanda/environment"
	"github.com/samuelfneumann/gopanda/experiment/trackers"
)

// EvaluationEpisodes is the number of episodes of an evaluation run
const EvaluationEpisodes int = 100

// Evaluation holds the returns of each episode of an evaluation run
type Evaluation struct {
	Returns   []float64
	Successes []float64
}

// MeanReturn returns the mean and the population standard deviation of
// the episodic returns
func (e Evaluation) MeanReturn() (mean, std float64) {
	if len(e.Returns) == 0 {
		return 0, 0
	}
	return stat.PopMeanStdDev(e.Returns, nil)
}

// SuccessRate returns the fraction of successful episodes
func (e Evaluation) SuccessRate() float64 {
	if len(e.Successes) == 0 {
		return 0
	}
	return stat.Mean(e.Successes, nil)
}

// String formats the mean return and its standard deviation
func (e Evaluation) String() string {
	mean, std := e.MeanReturn()
	return fmt.Sprintf("mean_reward=%.2f +/- %v", mean, std)
}

// Evaluate runs the agent's policy in evaluation mode for the given
// number of episodes. The agent does not learn during evaluation and
// is returned to training mode afterwards if it was training before.
// Each timestep is also sent to the trackers t.
func Evaluate(e env.Environment, a agent.Agent, episodes int,
	t ...trackers.Tracker) (Evaluation, error) {
	if episodes <= 0 {
		return Evaluation{}, fmt.Errorf("evaluate: episodes must be "+
			"positive, got %v", episodes)
	}

	if !a.IsEval() {
		a.Eval()
		defer a.Train()
	}

	returns := trackers.NewReturn("")
	success := trackers.NewSuccess("")
	all := append([]trackers.Tracker{returns, success}, t...)

	for i := 0; i < episodes; i++ {
		step, err := e.Reset()
		if err != nil {
			return Evaluation{}, fmt.Errorf("evaluate: could not reset: %v",
				err)
		}
		for _, tracker := range all {
			tracker.Track(step)
		}

		for !step.Last() {
			action, err := a.SelectAction(step)
			if err != nil {
				return Evaluation{}, fmt.Errorf("evaluate: could not select "+
					"action: %v", err)
			}
			if step, _, err = e.Step(action); err != nil {
				return Evaluation{}, fmt.Errorf("evaluate: %v", err)
			}
			for _, tracker := range all {
				tracker.Track(step)
			}
		}
	}

	return Evaluation{Returns: returns.Data(), Successes: success.Data()}, nil
}
