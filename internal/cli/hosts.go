// Copyright (c) 2026 sshkeep team
// sshkeep - SSH directory manager
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sshkeep/sshkeep/internal/i18n"
	"github.com/sshkeep/sshkeep/internal/model"
	"github.com/sshkeep/sshkeep/internal/sshconfig"
)

func newHostsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hosts",
		Short: "Manage host entries in the SSH configuration file",
	}
	cmd.AddCommand(newHostsListCmd(), newHostsAddCmd(), newHostsUpdateCmd(), newHostsRemoveCmd())
	return cmd
}

func newHostsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured host entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := services.codec.Parse()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				cmd.Println(i18n.T("hosts.none"))
				return nil
			}
			printHostTable(cmd, entries)
			return nil
		},
	}
}

func hostEntryFromFlags(cmd *cobra.Command, alias string) (model.HostEntry, error) {
	hostname, _ := cmd.Flags().GetString("hostname")
	port, _ := cmd.Flags().GetString("port")
	user, _ := cmd.Flags().GetString("user")
	identity, _ := cmd.Flags().GetString("identity-file")
	auth, _ := cmd.Flags().GetString("preferred-auth")

	entry := model.HostEntry{
		Alias:                    alias,
		Hostname:                 hostname,
		Port:                     port,
		User:                     user,
		IdentityFile:             identity,
		PreferredAuthentications: auth,
	}
	if !entry.Complete() {
		return entry, errors.New(i18n.T("hosts.incomplete"))
	}
	return entry, nil
}

func addHostFlags(cmd *cobra.Command) {
	cmd.Flags().String("hostname", "", "Hostname the alias connects to (required)")
	cmd.Flags().String("port", "", "Port")
	cmd.Flags().String("user", "", "Login user")
	cmd.Flags().String("identity-file", "", "Identity file path")
	cmd.Flags().String("preferred-auth", "", "PreferredAuthentications value")
}

func newHostsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <alias>",
		Short: "Add a host entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := hostEntryFromFlags(cmd, args[0])
			if err != nil {
				return err
			}
			if err := services.codec.Add(entry); err != nil {
				if errors.Is(err, sshconfig.ErrDuplicateHost) {
					return fmt.Errorf("%s: %s", i18n.T("hosts.duplicate"), entry.Alias)
				}
				return err
			}
			record("ADD_HOST", entry.String())
			cmd.Println(i18n.T("hosts.added") + ": " + entry.String())
			return nil
		},
	}
	addHostFlags(cmd)
	return cmd
}

func newHostsUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <alias>",
		Short: "Update an existing host entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := hostEntryFromFlags(cmd, args[0])
			if err != nil {
				return err
			}
			if err := services.codec.Update(entry); err != nil {
				if errors.Is(err, sshconfig.ErrHostNotFound) {
					return fmt.Errorf("%s: %s", i18n.T("hosts.not_found"), entry.Alias)
				}
				return err
			}
			record("UPDATE_HOST", entry.String())
			cmd.Println(i18n.T("hosts.updated") + ": " + entry.String())
			return nil
		},
	}
	addHostFlags(cmd)
	return cmd
}

func newHostsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <alias>",
		Short: "Remove a host entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := services.codec.Delete(args[0]); err != nil {
				if errors.Is(err, sshconfig.ErrHostNotFound) {
					return fmt.Errorf("%s: %s", i18n.T("hosts.not_found"), args[0])
				}
				return err
			}
			record("DELETE_HOST", args[0])
			cmd.Println(i18n.T("hosts.removed") + ": " + args[0])
			return nil
		},
	}
}
