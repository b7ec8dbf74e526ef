package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func newShoveCmd() *cobra.Command {
	var message string
	var useEditor bool

	cmd := &cobra.Command{
		Use:   "shove",
		Short: "Record the pile as a new shove",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}

			if message == "" && useEditor {
				message, err = editMessage(r.Root)
				if err != nil {
					return err
				}
			}
			if strings.TrimSpace(message) == "" {
				return fmt.Errorf("shove message is required (-m, or --editor)")
			}

			s, err := r.CreateShove(message)
			if err != nil {
				return err
			}
			tl, err := r.CurrentTimeline()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] %s\n", tl.Name, s.ID.Short(), firstLine(message))
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "shove message")
	cmd.Flags().BoolVarP(&useEditor, "editor", "e", false, "compose the message in $EDITOR")

	return cmd
}

// editMessage opens $EDITOR on a scratch file and returns its contents
// with '#' comment lines stripped.
func editMessage(root string) (string, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	path := filepath.Join(root, ".pocket", "SHOVE_MSG")
	seed := "\n# Describe this shove. Lines starting with '#' are ignored.\n"
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		return "", err
	}
	defer os.Remove(path)

	ed := exec.Command(editor, path)
	ed.Stdin = os.Stdin
	ed.Stdout = os.Stdout
	ed.Stderr = os.Stderr
	if err := ed.Run(); err != nil {
		return "", fmt.Errorf("editor %q: %w", editor, err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var lines []string
	for _, line := range strings.Split(string(raw), "\n") {
		if strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
