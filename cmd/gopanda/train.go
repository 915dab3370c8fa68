package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/samuelfneumann/gopanda/agent/remote"
	"github.com/samuelfneumann/gopanda/environment/envconfig"
	"github.com/samuelfneumann/gopanda/experiment"
	"github.com/samuelfneumann/gopanda/experiment/checkpointer"
	"github.com/samuelfneumann/gopanda/experiment/store"
	"github.com/samuelfneumann/gopanda/experiment/trackers"
)

// CheckpointInterval is the number of steps between checkpoints of a
// training run
const CheckpointInterval int = 100_000

type trainOptions struct {
	url       string
	storePath string
	out       string
	seed      uint64
	progress  bool
	naming    string
	interval  int
}

func newTrainCmd() *cobra.Command {
	opts := trainOptions{}

	cmd := &cobra.Command{
		Use:   "train <envId> <TQC|SAC> <timesteps>",
		Short: "Train an agent in the learner server",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrain(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.url, "url", "", "learner server URL "+
		"(default $"+remote.URLEnv+")")
	cmd.Flags().StringVar(&opts.storePath, "store", os.Getenv(store.StoreEnv),
		"SQLite database recording the run")
	cmd.Flags().StringVar(&opts.out, "out", ".", "directory holding "+
		"checkpoints, trained models and episode data")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "environment seed")
	cmd.Flags().BoolVar(&opts.progress, "progress", true, "show a "+
		"progress bar")
	cmd.Flags().StringVar(&opts.naming, "checkpoint-naming",
		string(checkpointer.StepNaming), "checkpoint file naming: steps, "+
			"enumerate or time")
	cmd.Flags().IntVar(&opts.interval, "checkpoint-interval",
		CheckpointInterval, "number of steps between checkpoints")

	return cmd
}

func runTrain(cmd *cobra.Command, args []string, opts trainOptions) error {
	envID, err := parseEnvID(args[0])
	if err != nil {
		return err
	}
	algo, err := parseAlgorithm(args[1])
	if err != nil {
		return err
	}
	timesteps, err := parseTimesteps(args[2])
	if err != nil {
		return err
	}
	naming, err := checkpointer.ParseNaming(opts.naming)
	if err != nil {
		return err
	}
	if opts.interval <= 0 {
		return fmt.Errorf("checkpoint interval must be positive, got %v",
			opts.interval)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	env, _, err := envconfig.Make(envID, opts.seed, false)
	if err != nil {
		return fmt.Errorf("train: %v", err)
	}

	a, err := remote.New(ctx, env, remote.Config{
		Algorithm:       algo,
		EnvID:           envID,
		URL:             opts.url,
		Hyperparameters: remote.DefaultHyperparameters(),
	}, opts.seed)
	if err != nil {
		return fmt.Errorf("train: could not create agent: %v", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Printf("train: %v", err)
		}
	}()

	runs, err := store.New(ctx, opts.storePath)
	if err != nil {
		return fmt.Errorf("train: %v", err)
	}
	defer store.CloseIfSupported(runs)

	run := store.NewRun(envID, string(algo), opts.seed)
	if err := runs.CreateRun(ctx, run); err != nil {
		return fmt.Errorf("train: %v", err)
	}
	log.Printf("Training %v on %v for %v steps (run %v)", algo, envID,
		timesteps, run.ID)

	timestamp := checkpointer.Timestamp(run.Started.Local())
	name := fmt.Sprintf("%v_%v_%v", envID, algo, timestamp)

	dataDir := filepath.Join(opts.out, "tensorboard", envID)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("train: %v", err)
	}
	t := []trackers.Tracker{
		trackers.NewReturn(filepath.Join(dataDir, name+"_return.bin")),
		trackers.NewEpisodeLength(filepath.Join(dataDir, name+"_length.bin")),
		trackers.NewSuccess(filepath.Join(dataDir, name+"_success.bin")),
		store.NewRecorder(ctx, runs, run.ID),
	}

	checkpointDir := filepath.Join(opts.out, "model_checkpoints", envID,
		string(algo), envID+"_"+timestamp)
	namer, err := checkpointer.NewNamer(naming, checkpointDir, envID)
	if err != nil {
		return fmt.Errorf("train: %v", err)
	}
	c := checkpointer.NewNStep(opts.interval, a, namer)

	exp := experiment.NewOnline(env, a, timesteps, t,
		[]checkpointer.Checkpointer{c})
	if opts.progress {
		exp.ShowProgress(cmd.ErrOrStderr(), 50)
	}
	if err := exp.Run(); err != nil {
		return fmt.Errorf("train: %v", err)
	}

	modelPath := filepath.Join(opts.out, "trained", envID, string(algo),
		envID+string(algo)+timestamp)
	if err := a.Save(modelPath); err != nil {
		return fmt.Errorf("train: could not save model: %v", err)
	}
	log.Printf("Saved model to %v", modelPath)

	if err := exp.Save(); err != nil {
		return fmt.Errorf("train: %v", err)
	}
	err = runs.FinishRun(ctx, run.ID, exp.TotalSteps(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("train: %v", err)
	}

	return nil
}
