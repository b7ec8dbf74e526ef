package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pocketvcs/pocket/pkg/graph"
)

func newGraphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Render the shove graph with timeline heads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			g, err := graph.Build(r)
			if err != nil {
				return err
			}
			if len(g.Nodes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no shoves yet")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), g.Render())
			return nil
		},
	}
}
