package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pocketvcs/pocket/pkg/remote"
)

func newFishCmd() *cobra.Command {
	var timeline string

	cmd := &cobra.Command{
		Use:   "fish [remote]",
		Short: "Fetch remote history without moving any local head",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			remoteName := ""
			if len(args) == 1 {
				remoteName = args[0]
			}
			r, err := openRepo()
			if err != nil {
				return err
			}

			m := remote.NewManager(r, r.Logger())
			res, err := m.Fetch(cmd.Context(), remoteName, timeline)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "fished %s/%s: %d shove(s), %d object(s), head %s\n",
				res.Remote, res.Timeline, res.ShovesReceived, res.ObjectsReceived, res.Head.Short())
			return nil
		},
	}

	cmd.Flags().StringVarP(&timeline, "timeline", "t", "", "remote timeline to fetch (default: current)")

	return cmd
}
