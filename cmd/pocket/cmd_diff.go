package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pocketvcs/pocket/pkg/diff"
	"github.com/pocketvcs/pocket/pkg/object"
)

func newDiffCmd() *cobra.Command {
	opts := diff.DefaultOptions()
	cmd := &cobra.Command{
		Use:   "diff [files...]",
		Short: "Show changes between the head snapshot and the working tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}

			var headFiles map[string]object.TreeFile
			head, err := r.HeadShove()
			if err != nil {
				return err
			}
			if head != nil {
				headFiles, err = r.Store.FlattenTree(head.RootTreeID)
				if err != nil {
					return err
				}
			}

			paths := args
			if len(paths) == 0 {
				st, err := r.Status()
				if err != nil {
					return err
				}
				paths = st.Modified
			}

			out := cmd.OutOrStdout()
			for _, rel := range paths {
				rel = filepath.ToSlash(rel)

				var oldData []byte
				if tf, ok := headFiles[rel]; ok {
					oldData, err = r.Store.Get(tf.ID)
					if err != nil {
						return err
					}
				}
				newData, err := os.ReadFile(filepath.Join(r.Root, filepath.FromSlash(rel)))
				if err != nil && !os.IsNotExist(err) {
					return err
				}

				res := diff.Compare(oldData, newData, opts)
				if !res.HasChanges() {
					continue
				}
				fmt.Fprint(out, diff.Unified("a/"+rel, "b/"+rel, res))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.ContextLines, "context", "U", opts.ContextLines, "lines of context around changes")
	cmd.Flags().BoolVarP(&opts.IgnoreWhitespace, "ignore-whitespace", "w", false, "ignore whitespace differences")
	cmd.Flags().BoolVar(&opts.IgnoreCase, "ignore-case", false, "ignore case differences")

	return cmd
}
