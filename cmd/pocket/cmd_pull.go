package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pocketvcs/pocket/pkg/merge"
	"github.com/pocketvcs/pocket/pkg/remote"
)

func newPullCmd() *cobra.Command {
	var timeline string
	var strategyName string

	cmd := &cobra.Command{
		Use:   "pull [remote]",
		Short: "Fetch remote history and merge it into the current timeline",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strategy, err := merge.ParseStrategy(strategyName)
			if err != nil {
				return err
			}
			remoteName := ""
			if len(args) == 1 {
				remoteName = args[0]
			}
			r, err := openRepo()
			if err != nil {
				return err
			}

			m := remote.NewManager(r, r.Logger())
			res, err := m.Pull(cmd.Context(), remoteName, timeline, strategy)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "fished %s/%s: %d shove(s), %d object(s)\n",
				res.Fetch.Remote, res.Fetch.Timeline, res.Fetch.ShovesReceived, res.Fetch.ObjectsReceived)
			return printMergeResult(cmd, res.Fetch.Remote+"/"+res.Fetch.Timeline, res.Merge)
		},
	}

	cmd.Flags().StringVarP(&timeline, "timeline", "t", "", "remote timeline to pull (default: current)")
	cmd.Flags().StringVarP(&strategyName, "strategy", "s", "", "merge strategy: auto, ff-only, always-shove, ours, theirs")

	return cmd
}
