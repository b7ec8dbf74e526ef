package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPileCmd() *cobra.Command {
	var all bool
	var pattern string

	cmd := &cobra.Command{
		Use:   "pile [files...]",
		Short: "Stage files for the next shove",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch {
			case all:
				staged, err := r.StageAll()
				if err != nil {
					return err
				}
				for _, p := range staged {
					fmt.Fprintf(out, "piled %s\n", p)
				}
				if len(staged) == 0 {
					fmt.Fprintln(out, "nothing to pile")
				}
				return nil
			case pattern != "":
				staged, err := r.StagePattern(pattern)
				if err != nil {
					return err
				}
				for _, p := range staged {
					fmt.Fprintf(out, "piled %s\n", p)
				}
				if len(staged) == 0 {
					fmt.Fprintf(out, "no files match %q\n", pattern)
				}
				return nil
			case len(args) == 0:
				return fmt.Errorf("pile: name files, or use --all or --pattern")
			}

			for _, path := range args {
				if err := r.StagePath(path); err != nil {
					return err
				}
				fmt.Fprintf(out, "piled %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "pile every modified and untracked file")
	cmd.Flags().StringVarP(&pattern, "pattern", "p", "", "pile files matching a glob pattern")

	return cmd
}
