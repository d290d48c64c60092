// Copyright (c) 2026 sshkeep team
// sshkeep - SSH directory manager
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sshkeep/sshkeep/internal/backup"
	"github.com/sshkeep/sshkeep/internal/i18n"
)

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create, inspect and restore SSH directory snapshots",
	}
	cmd.AddCommand(newBackupCreateCmd(), newBackupListCmd(), newBackupInfoCmd(), newBackupRestoreCmd())
	return cmd
}

func newBackupCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Snapshot the SSH directory into the backup directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info, err := services.backups.Create(appCfg.BackupDir)
			if err != nil {
				return err
			}
			record("CREATE_BACKUP", fmt.Sprintf("%s (%d files)", info.Path, info.Metadata.FileCount))
			cmd.Printf("%s: %s (%d %s, %d bytes)\n",
				i18n.T("backup.created"), info.Path,
				info.Metadata.FileCount, i18n.T("backup.files"), info.Size)
			return nil
		},
	}
}

func newBackupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List backups, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			infos, err := services.backups.List(appCfg.BackupDir)
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				cmd.Println(i18n.T("backup.none"))
				return nil
			}
			rows := make([][]string, 0, len(infos))
			for _, info := range infos {
				rows = append(rows, []string{
					info.Path,
					info.Metadata.CreatedAt.Format("2006-01-02 15:04:05"),
					fmt.Sprintf("%d", info.Metadata.FileCount),
					fmt.Sprintf("%d", info.Size),
				})
			}
			renderTable(cmd, []string{"PATH", "CREATED", "FILES", "SIZE"}, rows)
			return nil
		},
	}
}

func newBackupInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <path>",
		Short: "Show the metadata embedded in a backup archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := services.backups.Metadata(args[0])
			if err != nil {
				return err
			}
			if meta == nil {
				cmd.Println(i18n.T("backup.no_metadata"))
				return nil
			}
			cmd.Printf("%s\n", headerStyle.Render(args[0]))
			cmd.Printf("  created:  %s\n", meta.CreatedAt.Format("2006-01-02 15:04:05"))
			cmd.Printf("  user:     %s@%s\n", meta.Username, meta.ComputerName)
			cmd.Printf("  version:  %s\n", meta.AppVersion)
			cmd.Printf("  files:    %d (%s)\n", meta.FileCount, strings.Join(meta.Files, ", "))
			return nil
		},
	}
}

func newBackupRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <path>",
		Short: "Restore a backup into the SSH directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			overwrite, _ := cmd.Flags().GetBool("overwrite")
			merge, _ := cmd.Flags().GetBool("merge")
			noSafety, _ := cmd.Flags().GetBool("no-safety-backup")

			summary, err := services.backups.Restore(backup.RestoreOptions{
				BackupPath:        args[0],
				OverwriteExisting: overwrite,
				MergeDuplicates:   merge,
				CreateBackup:      !noSafety,
			})
			if err != nil {
				return err
			}
			record("RESTORE_BACKUP", fmt.Sprintf("%s (restored: %d, skipped: %d, failed: %d)",
				args[0], summary.Restored, summary.Skipped, summary.Failed))
			cmd.Printf("%s: %d, %s: %d, %s: %d\n",
				i18n.T("backup.restored"), summary.Restored,
				i18n.T("backup.skipped"), summary.Skipped,
				i18n.T("backup.failed"), summary.Failed)
			for _, e := range summary.Errors {
				cmd.Println(badStyle.Render("  " + e))
			}
			return nil
		},
	}
	cmd.Flags().Bool("overwrite", false, "Overwrite files that already exist")
	cmd.Flags().Bool("merge", false, "Keep both versions when a file exists")
	cmd.Flags().Bool("no-safety-backup", false, "Skip the pre-restore safety snapshot")
	return cmd
}
