package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUnpileCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "unpile [files...]",
		Short: "Remove files from the pile",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if all {
				if err := r.UnpileAll(); err != nil {
					return err
				}
				fmt.Fprintln(out, "pile cleared")
				return nil
			}
			if len(args) == 0 {
				return fmt.Errorf("unpile: name files, or use --all")
			}
			for _, path := range args {
				if err := r.Unpile(path); err != nil {
					return err
				}
				fmt.Fprintf(out, "unpiled %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "clear the entire pile")

	return cmd
}
