package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pocketvcs/pocket/pkg/repo"
)

const version = "0.1.0-dev"

func main() {
	root := &cobra.Command{
		Use:   "pocket",
		Short: "A small content-addressed version control system",
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newNewRepoCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newPileCmd())
	root.AddCommand(newUnpileCmd())
	root.AddCommand(newShoveCmd())
	root.AddCommand(newLogCmd())
	root.AddCommand(newDiffCmd())
	root.AddCommand(newTimelineCmd())
	root.AddCommand(newMergeCmd())
	root.AddCommand(newRemoteCmd())
	root.AddCommand(newFishCmd())
	root.AddCommand(newPushCmd())
	root.AddCommand(newPullCmd())
	root.AddCommand(newIgnoreCmd())
	root.AddCommand(newGraphCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pocket %s\n", version)
		},
	}
}

// newLogger builds the process logger. Commands stay quiet unless
// POCKET_DEBUG is set.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if os.Getenv("POCKET_DEBUG") != "" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func openRepo() (*repo.Repository, error) {
	return repo.Open(".", newLogger())
}
