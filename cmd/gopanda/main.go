// Command gopanda trains, evaluates and showcases agents on the
// moving-platform pick-and-place environments.
//
// Agents are trained in a learner server reached over HTTP, whose URL
// is read from GOPANDA_LEARNER_URL. Runs and their episodes are
// recorded in the SQLite database named by GOPANDA_STORE, or in memory
// if it is unset. Both variables may be set in a .env file.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	for _, envFile := range []string{
		".env",
		"../../.env",
		"../../../.env",
	} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gopanda",
		Short: "gopanda trains agents to place objects on a moving platform",
		Long: "gopanda trains, evaluates and showcases agents on the " +
			"PandaPickAndPlaceAndThrow and PandaPickAndPlaceAndMove " +
			"environments.",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newTrainCmd(), newEvaluateCmd(), newShowcaseCmd(),
		newEnvsCmd(), newRunsCmd())
	return rootCmd
}
