package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pocketvcs/pocket/pkg/merge"
)

func newMergeCmd() *cobra.Command {
	var strategyName string

	cmd := &cobra.Command{
		Use:   "merge <timeline>",
		Short: "Merge another timeline into the current one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strategy, err := merge.ParseStrategy(strategyName)
			if err != nil {
				return err
			}
			r, err := openRepo()
			if err != nil {
				return err
			}

			merger := merge.NewMerger(r, r.Logger())
			res, err := merger.MergeTimeline(args[0], strategy)
			if err != nil {
				return err
			}
			return printMergeResult(cmd, args[0], res)
		},
	}

	cmd.Flags().StringVarP(&strategyName, "strategy", "s", "", "merge strategy: auto, ff-only, always-shove, ours, theirs")

	return cmd
}

func printMergeResult(cmd *cobra.Command, source string, res *merge.Result) error {
	out := cmd.OutOrStdout()
	switch {
	case res.AlreadyUpToDate:
		fmt.Fprintln(out, "already up to date")
	case !res.Success:
		fmt.Fprintf(out, "merge of %s stopped on %d conflicted path(s):\n", source, len(res.Conflicts))
		for _, c := range res.Conflicts {
			fmt.Fprintf(out, "  ! %s\n", c.Path)
		}
		fmt.Fprintln(out, "resolve by piling the corrected files, then shove")
	case res.FastForward:
		fmt.Fprintf(out, "fast-forwarded to %s\n", res.Shove.ID.Short())
	default:
		fmt.Fprintf(out, "merged %s as %s\n", source, res.Shove.ID.Short())
	}
	return nil
}
