// Copyright (c) 2026 sshkeep team
// sshkeep - SSH directory manager
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sshkeep/sshkeep/internal/i18n"
	"github.com/sshkeep/sshkeep/internal/inventory"
	"github.com/sshkeep/sshkeep/internal/model"
)

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Inventory and manage the key pairs in the SSH directory",
	}
	cmd.AddCommand(newKeysListCmd(), newKeysShowCmd(), newKeysGenCmd(),
		newKeysRemoveCmd(), newKeysImportCmd(), newKeysExportCmd())
	return cmd
}

func newKeysListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List discovered keys and their host associations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := services.inventory.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(records) == 0 {
				cmd.Println(i18n.T("keys.none"))
				return nil
			}
			printKeyTable(cmd, records)
			return nil
		},
	}
}

func newKeysShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show one key in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := services.inventory.Get(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, inventory.ErrKeyNotFound) {
					return fmt.Errorf("%s: %s", i18n.T("keys.not_found"), args[0])
				}
				return err
			}
			cmd.Printf("%s\n", headerStyle.Render(rec.Name))
			cmd.Printf("  type:        %s (%d bits)\n", rec.Type, rec.Bits)
			cmd.Printf("  fingerprint: %s\n", rec.Fingerprint)
			if rec.Comment != "" {
				cmd.Printf("  comment:     %s\n", rec.Comment)
			}
			cmd.Printf("  passphrase:  %t\n", rec.HasPassphrase)
			cmd.Printf("  size:        %d bytes\n", rec.Size)
			cmd.Printf("  modified:    %s\n", rec.ModifiedAt.Format("2006-01-02 15:04:05"))
			if rec.IsMapped {
				cmd.Printf("  hosts:       %v\n", rec.AssociatedHosts)
			} else {
				cmd.Printf("  hosts:       %s\n", dimStyle.Render("(none)"))
			}
			return nil
		},
	}
}

func newKeysGenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen <name>",
		Short: "Generate a new key pair via ssh-keygen",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keyType, _ := cmd.Flags().GetString("type")
			bits, _ := cmd.Flags().GetInt("bits")
			comment, _ := cmd.Flags().GetString("comment")
			askPassphrase, _ := cmd.Flags().GetBool("passphrase")

			passphrase := ""
			if askPassphrase {
				cmd.Print(i18n.T("keys.passphrase_prompt") + ": ")
				raw, err := term.ReadPassword(int(os.Stdin.Fd()))
				cmd.Println()
				if err != nil {
					return fmt.Errorf("could not read passphrase: %w", err)
				}
				passphrase = string(raw)
			}

			opts := inventory.GenerateOptions{
				Name:       args[0],
				Type:       model.KeyType(keyType),
				Bits:       bits,
				Comment:    comment,
				Passphrase: passphrase,
			}
			if err := services.inventory.Generate(cmd.Context(), opts); err != nil {
				return err
			}
			record("GENERATE_KEY", fmt.Sprintf("%s (%s)", opts.Name, opts.Type))
			cmd.Println(i18n.T("keys.generated") + ": " + args[0])
			return nil
		},
	}
	cmd.Flags().String("type", "ed25519", "Key type (ed25519, rsa, ecdsa, dsa)")
	cmd.Flags().Int("bits", 0, "Key size in bits (0 uses the tool default)")
	cmd.Flags().String("comment", "", "Key comment")
	cmd.Flags().Bool("passphrase", false, "Prompt for a passphrase")
	return cmd
}

func newKeysRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>",
		Short: "Delete a key pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := services.inventory.Delete(args[0]); err != nil {
				if errors.Is(err, inventory.ErrKeyNotFound) {
					return fmt.Errorf("%s: %s", i18n.T("keys.not_found"), args[0])
				}
				return err
			}
			record("DELETE_KEY", args[0])
			cmd.Println(i18n.T("keys.removed") + ": " + args[0])
			return nil
		},
	}
}

func newKeysImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <path>",
		Short: "Copy a key pair into the SSH directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := services.inventory.Import(args[0]); err != nil {
				return err
			}
			record("IMPORT_KEY", args[0])
			cmd.Println(i18n.T("keys.imported") + ": " + args[0])
			return nil
		},
	}
}

func newKeysExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <name> <directory>",
		Short: "Copy a key pair out of the SSH directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := services.inventory.Export(args[0], args[1]); err != nil {
				return err
			}
			record("EXPORT_KEY", fmt.Sprintf("%s -> %s", args[0], args[1]))
			cmd.Println(i18n.T("keys.exported") + ": " + args[0])
			return nil
		},
	}
}
