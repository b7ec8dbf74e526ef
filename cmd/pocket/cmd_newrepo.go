package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pocketvcs/pocket/pkg/repo"
)

func newNewRepoCmd() *cobra.Command {
	var noDefault bool
	var template string

	cmd := &cobra.Command{
		Use:   "new-repo [path]",
		Short: "Create a new repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			abs, err := filepath.Abs(root)
			if err != nil {
				return err
			}

			r, err := repo.New(abs, newLogger())
			if err != nil {
				return err
			}
			if !noDefault {
				if err := r.WriteDefaultFiles(template); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created repository in %s\n", abs)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noDefault, "no-default", false, "skip the default README and .pocketignore")
	cmd.Flags().StringVar(&template, "template", "", "project name for the default README (default: directory name)")

	return cmd
}
