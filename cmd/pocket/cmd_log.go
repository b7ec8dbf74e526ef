package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogCmd() *cobra.Command {
	var verbose bool
	var timeline string
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show shove history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}

			shoves, err := r.Log(timeline, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(shoves) == 0 {
				fmt.Fprintln(out, "no shoves yet")
				return nil
			}

			for i, s := range shoves {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "shove %s\n", s.ID)
				if s.IsMerge() {
					fmt.Fprintf(out, "Merge: %s %s\n", s.ParentIDs[0].Short(), s.ParentIDs[1].Short())
				}
				fmt.Fprintf(out, "Author: %s <%s>\n", s.Author.Name, s.Author.Email)
				fmt.Fprintf(out, "Date:   %s\n", s.Timestamp.Local().Format("Mon Jan 2 15:04:05 2006"))
				fmt.Fprintf(out, "\n    %s\n", firstLine(s.Message))

				if !verbose {
					continue
				}
				changes, err := r.ShoveChanges(s)
				if err != nil {
					return err
				}
				if len(changes) > 0 {
					fmt.Fprintln(out)
				}
				for _, c := range changes {
					fmt.Fprintf(out, "    %-8s %s\n", c.Type, c.Path)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show per-file changes")
	cmd.Flags().StringVarP(&timeline, "timeline", "t", "", "log a specific timeline (default: current)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "limit the number of shoves shown")

	return cmd
}
