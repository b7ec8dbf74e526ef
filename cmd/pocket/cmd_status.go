package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pocketvcs/pocket/pkg/repo"
)

func newStatusCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show working tree status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			st, err := r.Status()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if st.Head == "" {
				fmt.Fprintf(out, "on %s (no shoves yet)\n", st.Timeline)
			} else {
				fmt.Fprintf(out, "on %s at %s\n", st.Timeline, st.Head.Short())
			}

			if len(st.Conflicts) > 0 {
				fmt.Fprintln(out, "\nUnresolved conflicts:")
				for _, p := range st.Conflicts {
					fmt.Fprintf(out, "  ! %s\n", p)
				}
			}
			if len(st.Piled) > 0 {
				fmt.Fprintln(out, "\nPiled for shove:")
				for _, pf := range st.Piled {
					marker := statusMarker(pf.Entry.Status)
					if verbose && pf.Entry.ObjectID != "" {
						fmt.Fprintf(out, "  %s %s (%s)\n", marker, pf.Path, pf.Entry.ObjectID.Short())
						continue
					}
					fmt.Fprintf(out, "  %s %s\n", marker, pf.Path)
				}
			}
			if len(st.Modified) > 0 {
				fmt.Fprintln(out, "\nModified, not piled:")
				for _, p := range st.Modified {
					fmt.Fprintf(out, "  ~ %s\n", p)
				}
			}
			if len(st.Untracked) > 0 {
				fmt.Fprintln(out, "\nUntracked:")
				for _, p := range st.Untracked {
					fmt.Fprintf(out, "  ? %s\n", p)
				}
			}

			if st.IsClean() && len(st.Untracked) == 0 {
				fmt.Fprintln(out, "nothing to shove, working tree clean")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show staged object ids")

	return cmd
}

func statusMarker(status repo.PileStatus) string {
	switch status {
	case repo.PileAdded:
		return "+"
	case repo.PileModified:
		return "~"
	case repo.PileDeleted:
		return "-"
	case repo.PileRenamed:
		return "R"
	}
	return "?"
}
