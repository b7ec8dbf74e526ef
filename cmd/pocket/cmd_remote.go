package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pocketvcs/pocket/pkg/repo"
)

func newRemoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Manage remote endpoints",
	}

	var username, password, token, keyPath string
	var makeDefault bool
	add := &cobra.Command{
		Use:   "add <name> <url>",
		Short: "Add a remote",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			name, url := args[0], args[1]
			if _, exists := r.Config.Remotes[name]; exists {
				return fmt.Errorf("remote %q already exists", name)
			}

			auth := repo.RemoteAuth{Kind: repo.AuthNone}
			switch {
			case token != "":
				auth = repo.RemoteAuth{Kind: repo.AuthToken, Token: token}
			case username != "":
				auth = repo.RemoteAuth{Kind: repo.AuthBasic, Username: username, Password: password}
			case keyPath != "":
				auth = repo.RemoteAuth{Kind: repo.AuthSSHKey, KeyPath: keyPath}
			}

			r.Config.Remotes[name] = repo.RemoteConfig{URL: url, Auth: auth}
			if makeDefault || r.Config.Remote.DefaultRemote == "" {
				r.Config.Remote.DefaultRemote = name
			}
			if err := r.SaveConfig(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added remote %s -> %s\n", name, url)
			return nil
		},
	}
	add.Flags().StringVar(&username, "username", "", "basic auth username")
	add.Flags().StringVar(&password, "password", "", "basic auth password")
	add.Flags().StringVar(&token, "token", "", "bearer token")
	add.Flags().StringVar(&keyPath, "ssh-key", "", "path to an SSH private key")
	add.Flags().BoolVar(&makeDefault, "default", false, "make this the default remote")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a remote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			name := args[0]
			if _, exists := r.Config.Remotes[name]; !exists {
				return fmt.Errorf("remote %q does not exist", name)
			}
			delete(r.Config.Remotes, name)
			if r.Config.Remote.DefaultRemote == name {
				r.Config.Remote.DefaultRemote = ""
			}
			if err := r.SaveConfig(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed remote %s\n", name)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List remotes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			names := make([]string, 0, len(r.Config.Remotes))
			for name := range r.Config.Remotes {
				names = append(names, name)
			}
			sort.Strings(names)

			out := cmd.OutOrStdout()
			for _, name := range names {
				rc := r.Config.Remotes[name]
				marker := " "
				if name == r.Config.Remote.DefaultRemote {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s %s (%s)\n", marker, name, rc.URL, rc.Auth.Kind)
			}
			return nil
		},
	})

	return cmd
}
