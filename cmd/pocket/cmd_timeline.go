package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTimelineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Manage timelines",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "new <name>",
		Short: "Create a timeline forked from the current head",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			tl, err := r.CreateTimeline(args[0])
			if err != nil {
				return err
			}
			if tl.HasHead() {
				fmt.Fprintf(cmd.OutOrStdout(), "created timeline %s at %s\n", tl.Name, tl.Head.Short())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "created timeline %s\n", tl.Name)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "switch <name>",
		Short: "Switch to another timeline and restore its snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			if err := r.SwitchTimeline(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "switched to %s\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List timelines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			current, err := r.HeadTimelineName()
			if err != nil {
				return err
			}
			timelines, err := r.ListTimelines()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, tl := range timelines {
				marker := " "
				if tl.Name == current {
					marker = "*"
				}
				if tl.HasHead() {
					fmt.Fprintf(out, "%s %s %s\n", marker, tl.Name, tl.Head.Short())
				} else {
					fmt.Fprintf(out, "%s %s (no shoves)\n", marker, tl.Name)
				}
			}
			return nil
		},
	})

	return cmd
}
