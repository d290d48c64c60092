// Copyright (c) 2026 sshkeep team
// sshkeep - SSH directory manager
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sshkeep/sshkeep/internal/i18n"
)

func newPermsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "perms",
		Short: "Check and fix SSH directory permissions",
	}
	cmd.AddCommand(newPermsCheckCmd(), newPermsFixCmd())
	return cmd
}

func newPermsCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report each file's permission state against the policy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := services.engine.CheckAll(cmd.Context())
			if err != nil {
				return err
			}
			printPermissionTable(cmd, records)
			wrong := 0
			for _, r := range records {
				if !r.IsCorrect {
					wrong++
				}
			}
			if wrong > 0 {
				cmd.Printf("%s: %d\n", i18n.T("perms.nonconforming"), wrong)
			}
			return nil
		},
	}
}

func newPermsFixCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fix",
		Short: "Fix every non-conforming permission",
		RunE: func(cmd *cobra.Command, _ []string) error {
			summary, err := services.engine.FixAll(cmd.Context())
			if err != nil {
				return err
			}
			record("FIX_PERMISSIONS", fmt.Sprintf("fixed: %d, failed: %d", summary.Fixed, summary.Failed))
			cmd.Printf("%s: %d, %s: %d\n",
				i18n.T("perms.fixed"), summary.Fixed,
				i18n.T("perms.failed"), summary.Failed)
			for _, e := range summary.Errors {
				cmd.Println(badStyle.Render("  " + e))
			}
			return nil
		},
	}
}
