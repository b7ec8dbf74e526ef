package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newIgnoreCmd() *cobra.Command {
	var add, remove []string
	var list bool

	cmd := &cobra.Command{
		Use:   "ignore",
		Short: "Edit and inspect ignore patterns",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			for _, pattern := range add {
				if err := r.AddIgnorePattern(pattern); err != nil {
					return err
				}
				fmt.Fprintf(out, "ignoring %s\n", pattern)
			}
			for _, pattern := range remove {
				if err := r.RemoveIgnorePattern(pattern); err != nil {
					return err
				}
				fmt.Fprintf(out, "no longer ignoring %s\n", pattern)
			}

			if list || (len(add) == 0 && len(remove) == 0) {
				patterns, err := r.IgnorePatterns()
				if err != nil {
					return err
				}
				for _, p := range patterns {
					fmt.Fprintln(out, p)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&add, "add", nil, "add an ignore pattern")
	cmd.Flags().StringArrayVar(&remove, "remove", nil, "remove an ignore pattern")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "list ignore patterns")

	return cmd
}
