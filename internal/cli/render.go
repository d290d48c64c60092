// Copyright (c) 2026 sshkeep team
// sshkeep - SSH directory manager
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/sshkeep/sshkeep/internal/model"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	badStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

// renderTable prints rows with padded columns under a bold header line.
func renderTable(cmd *cobra.Command, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	for i, h := range headers {
		b.WriteString(fmt.Sprintf("%-*s  ", widths[i], h))
	}
	cmd.Println(headerStyle.Render(strings.TrimRight(b.String(), " ")))

	for _, row := range rows {
		var line strings.Builder
		for i, cell := range row {
			line.WriteString(fmt.Sprintf("%-*s  ", widths[i], cell))
		}
		cmd.Println(strings.TrimRight(line.String(), " "))
	}
}

func printHostTable(cmd *cobra.Command, entries []model.HostEntry) {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Alias, e.Hostname, e.Port, e.User, e.IdentityFile})
	}
	renderTable(cmd, []string{"ALIAS", "HOSTNAME", "PORT", "USER", "IDENTITY"}, rows)
}

func printKeyTable(cmd *cobra.Command, records []model.KeyRecord) {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		mapped := dimStyle.Render("unmapped")
		if r.IsMapped {
			mapped = okStyle.Render(strings.Join(r.AssociatedHosts, ","))
		}
		passphrase := "no"
		if r.HasPassphrase {
			passphrase = "yes"
		}
		rows = append(rows, []string{r.Name, string(r.Type), fmt.Sprintf("%d", r.Bits), passphrase, mapped})
	}
	renderTable(cmd, []string{"NAME", "TYPE", "BITS", "PASSPHRASE", "HOSTS"}, rows)
}

func printPermissionTable(cmd *cobra.Command, records []model.PermissionRecord) {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		status := okStyle.Render("ok")
		if !r.IsCorrect {
			status = badStyle.Render("wrong")
		}
		rows = append(rows, []string{r.Path, string(r.FileType), r.Current, status})
	}
	renderTable(cmd, []string{"PATH", "TYPE", "CURRENT", "STATUS"}, rows)
}
