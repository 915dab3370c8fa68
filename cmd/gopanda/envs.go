package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samuelfneumann/gopanda/environment/envconfig"
)

func newEnvsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "envs",
		Short: "List the registered environments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, id := range envconfig.IDs() {
				c, _ := envconfig.Lookup(id)
				fmt.Fprintf(cmd.OutOrStdout(), "%v\tmax_episode_steps=%v\n",
					id, c.EpisodeCutoff)
			}
			return nil
		},
	}
}
