package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/samuelfneumann/gopanda/agent/random"
	"github.com/samuelfneumann/gopanda/environment/envconfig"
)

// ResetInterval is the number of showcase steps after which the
// environment is reset even if the episode has not ended
const ResetInterval int = 800

type showcaseOptions struct {
	seed   uint64
	steps  int
	delay  time.Duration
	frames string
}

// renderer is a simulation which can save the current scene to an image
type renderer interface {
	Render(filename string) (bool, error)
}

func newShowcaseCmd() *cobra.Command {
	opts := showcaseOptions{}

	cmd := &cobra.Command{
		Use:   "showcase <envId>",
		Short: "Act uniformly at random in an environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShowcase(cmd, args, opts)
		},
	}

	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "environment and action "+
		"seed")
	cmd.Flags().IntVar(&opts.steps, "steps", 0, "number of steps to take, "+
		"or 0 to run until interrupted")
	cmd.Flags().DurationVar(&opts.delay, "delay", 50*time.Millisecond,
		"pause between steps")
	cmd.Flags().StringVar(&opts.frames, "frames", "", "directory to save a "+
		"PNG frame of each step in")

	return cmd
}

func runShowcase(cmd *cobra.Command, args []string,
	opts showcaseOptions) error {
	envID, err := parseEnvID(args[0])
	if err != nil {
		return err
	}
	if opts.steps < 0 {
		return fmt.Errorf("steps must be non-negative, got %v", opts.steps)
	}

	env, step, err := envconfig.Make(envID, opts.seed, opts.frames != "")
	if err != nil {
		return fmt.Errorf("showcase: %v", err)
	}

	var r renderer
	if opts.frames != "" {
		var ok bool
		if r, ok = env.Backend().(renderer); !ok {
			return fmt.Errorf("showcase: simulation cannot render")
		}
		if err := os.MkdirAll(opts.frames, 0o755); err != nil {
			return fmt.Errorf("showcase: %v", err)
		}
	}

	a, err := random.New(env, opts.seed)
	if err != nil {
		return fmt.Errorf("showcase: %v", err)
	}

	episodes := 0
	for i := 0; opts.steps == 0 || i < opts.steps; i++ {
		if i%ResetInterval == 0 || step.Last() {
			if step, err = env.Reset(); err != nil {
				return fmt.Errorf("showcase: %v", err)
			}
			episodes++
		}

		action, err := a.SelectAction(step)
		if err != nil {
			return fmt.Errorf("showcase: %v", err)
		}
		if step, _, err = env.Step(action); err != nil {
			return fmt.Errorf("showcase: %v", err)
		}

		if r != nil {
			frame := filepath.Join(opts.frames, fmt.Sprintf("frame_%06d.png",
				i))
			if _, err := r.Render(frame); err != nil {
				return fmt.Errorf("showcase: %v", err)
			}
		}
		time.Sleep(opts.delay)
	}

	log.Printf("Showcased %v steps over %v episodes", opts.steps, episodes)
	return nil
}
