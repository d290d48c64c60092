// Copyright (c) 2026 sshkeep team
// sshkeep - SSH directory manager
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/sshkeep/sshkeep/internal/i18n"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show what sshkeep did to the SSH directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if services.history == nil {
				return errors.New(i18n.T("history.unavailable"))
			}
			limit, _ := cmd.Flags().GetInt("limit")
			entries, err := services.history.Entries(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				cmd.Println(i18n.T("history.none"))
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					e.Timestamp.Format("2006-01-02 15:04:05"),
					e.Action,
					e.Details,
				})
			}
			renderTable(cmd, []string{"WHEN", "ACTION", "DETAILS"}, rows)
			return nil
		},
	}
	cmd.Flags().Int("limit", 50, "Maximum number of entries to show")
	return cmd
}
