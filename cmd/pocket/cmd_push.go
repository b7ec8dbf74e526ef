package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pocketvcs/pocket/pkg/remote"
)

func newPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push [remote] [timeline]",
		Short: "Upload local history and advance the remote head",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var remoteName, timeline string
			if len(args) > 0 {
				remoteName = args[0]
			}
			if len(args) > 1 {
				timeline = args[1]
			}
			r, err := openRepo()
			if err != nil {
				return err
			}

			m := remote.NewManager(r, r.Logger())
			res, err := m.Push(cmd.Context(), remoteName, timeline)
			if err != nil {
				return err
			}
			if res.ShovesSent == 0 && res.ObjectsSent == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s/%s is up to date at %s\n",
					res.Remote, res.Timeline, res.Head.Short())
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pushed %s/%s: %d shove(s), %d object(s), head %s\n",
				res.Remote, res.Timeline, res.ShovesSent, res.ObjectsSent, res.Head.Short())
			return nil
		},
	}
}
