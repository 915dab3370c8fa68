package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/samuelfneumann/gopanda/experiment/store"
)

func newRunsCmd() *cobra.Command {
	var storePath string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List the training runs recorded in the run store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if storePath == "" {
				return fmt.Errorf("runs: no run store, set --store or $%v",
					store.StoreEnv)
			}
			return listRuns(cmd, storePath)
		},
	}

	cmd.Flags().StringVar(&storePath, "store", os.Getenv(store.StoreEnv),
		"SQLite database runs are recorded in")
	return cmd
}

func listRuns(cmd *cobra.Command, path string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	runs, err := store.New(ctx, path)
	if err != nil {
		return fmt.Errorf("runs: %v", err)
	}
	defer store.CloseIfSupported(runs)

	all, err := runs.Runs(ctx)
	if err != nil {
		return fmt.Errorf("runs: %v", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tENV\tALGO\tSTEPS\tEPISODES\tSTARTED")
	for _, run := range all {
		episodes, err := runs.Episodes(ctx, run.ID)
		if err != nil {
			return fmt.Errorf("runs: %v", err)
		}
		fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\t%v\n", run.ID, run.EnvID,
			run.Algorithm, run.TotalSteps, len(episodes),
			run.Started.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
