package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samuelfneumann/gopanda/agent/remote"
	"github.com/samuelfneumann/gopanda/environment/envconfig"
	"github.com/samuelfneumann/gopanda/experiment"
	ts "github.com/samuelfneumann/gopanda/timestep"
	"github.com/samuelfneumann/gopanda/utils/progressbar"
)

type evaluateOptions struct {
	url      string
	seed     uint64
	episodes int
}

func newEvaluateCmd() *cobra.Command {
	opts := evaluateOptions{}

	cmd := &cobra.Command{
		Use:   "evaluate <envId> <TQC|SAC> <modelPath>",
		Short: "Evaluate a trained agent deterministically",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.url, "url", "", "learner server URL "+
		"(default $"+remote.URLEnv+")")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "environment seed")
	cmd.Flags().IntVar(&opts.episodes, "episodes",
		experiment.EvaluationEpisodes, "number of evaluation episodes")

	return cmd
}

func runEvaluate(cmd *cobra.Command, args []string,
	opts evaluateOptions) error {
	envID, err := parseEnvID(args[0])
	if err != nil {
		return err
	}
	algo, err := parseAlgorithm(args[1])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	env, _, err := envconfig.Make(envID, opts.seed, false)
	if err != nil {
		return fmt.Errorf("evaluate: %v", err)
	}

	a, err := remote.New(ctx, env, remote.Config{
		Algorithm: algo,
		EnvID:     envID,
		URL:       opts.url,
		LoadPath:  args[2],
	}, opts.seed)
	if err != nil {
		return fmt.Errorf("evaluate: could not load agent: %v", err)
	}
	defer a.Close()

	progress := &episodeProgress{progressbar.NewManualProgressBar(
		cmd.ErrOrStderr(), 50, opts.episodes)}
	eval, err := experiment.Evaluate(env, a, opts.episodes, progress)
	if err != nil {
		return fmt.Errorf("evaluate: %v", err)
	}
	fmt.Fprintln(cmd.ErrOrStderr())

	fmt.Fprintf(cmd.OutOrStdout(), "### %v\n", eval)
	return nil
}

// episodeProgress displays the number of finished episodes
type episodeProgress struct {
	*progressbar.ManualProgressBar
}

func (e *episodeProgress) Track(t ts.TimeStep) {
	if t.Last() {
		e.Increment()
		e.Display()
	}
}

func (e *episodeProgress) Save() error { return nil }
