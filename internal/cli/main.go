// Copyright (c) 2026 sshkeep team
// sshkeep - SSH directory manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package cli sets up the command-line interface for sshkeep using the
// Cobra library. It defines the root command, subcommands and flags, and
// wires the core components together.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sshkeep/sshkeep/internal/backup"
	"github.com/sshkeep/sshkeep/internal/config"
	"github.com/sshkeep/sshkeep/internal/history"
	"github.com/sshkeep/sshkeep/internal/i18n"
	"github.com/sshkeep/sshkeep/internal/inventory"
	"github.com/sshkeep/sshkeep/internal/logging"
	"github.com/sshkeep/sshkeep/internal/perms"
	"github.com/sshkeep/sshkeep/internal/runner"
	"github.com/sshkeep/sshkeep/internal/sshconfig"
)

var version = "dev" // set by the linker

var (
	cfgFile  string
	verbose  bool
	appCfg   config.Config
	services *appServices
)

// appServices holds the wired core components used by the subcommands.
type appServices struct {
	codec     *sshconfig.Codec
	inventory *inventory.Inventory
	engine    *perms.Engine
	backups   *backup.Manager
	history   history.Store
}

func defaultSSHDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ssh"
	}
	return filepath.Join(home, ".ssh")
}

func defaultHistoryDsn() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "sshkeep-history.db"
	}
	return filepath.Join(dir, "sshkeep", "history.db")
}

// setupServices loads the configuration and wires the core components.
func setupServices(cmd *cobra.Command, _ []string) error {
	logging.SetDebug(verbose)

	var explicitPath *string
	if cmd.Flags().Changed("config") {
		path, err := cmd.Flags().GetString("config")
		if err != nil {
			return fmt.Errorf("could not read --config flag: %w", err)
		}
		if path != "" {
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("config file specified via --config flag not found: %w", err)
			}
			explicitPath = &path
		}
	}

	defaults := map[string]any{
		"ssh_dir":      defaultSSHDir(),
		"backup_dir":   "",
		"language":     "en",
		"history.dsn":  defaultHistoryDsn(),
		"tool_timeout": 30,
	}

	var err error
	appCfg, err = config.LoadConfig[config.Config](cmd, defaults, explicitPath)
	if errors.As(err, &viper.ConfigFileNotFoundError{}) {
		// First run; persist a default config but keep going on defaults.
		if writeErr := config.WriteConfigFile(&appCfg, false); writeErr != nil {
			logging.Warnf("could not write default config file: %v", writeErr)
		}
	} else if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if appCfg.BackupDir == "" {
		appCfg.BackupDir = filepath.Join(appCfg.SSHDir, "backups")
	}

	i18n.SetLang(appCfg.Language)

	run := runner.New(time.Duration(appCfg.ToolTimeout) * time.Second)
	principal, err := perms.CurrentPrincipal()
	if err != nil {
		// Only the permission commands need a principal; they check again.
		logging.Debugf("no current user principal: %v", err)
	}

	services = &appServices{
		codec:     sshconfig.New(filepath.Join(appCfg.SSHDir, sshconfig.DefaultFileName)),
		inventory: inventory.New(appCfg.SSHDir, run),
		engine:    perms.New(appCfg.SSHDir, principal, perms.NewPlatformACL(run)),
		backups:   backup.New(appCfg.SSHDir, version),
	}

	hist, err := history.Open(appCfg.History.Dsn)
	if err != nil {
		// History is best-effort; everything else works without it.
		logging.Warnf("could not open history store: %v", err)
	} else {
		services.history = hist
	}

	return nil
}

// record appends an operation history entry, best-effort.
func record(action, details string) {
	if services == nil || services.history == nil {
		return
	}
	if err := services.history.Record(context.Background(), action, details); err != nil {
		logging.Warnf("could not record history entry: %v", err)
	}
}

// NewRootCmd creates and configures a new root cobra command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sshkeep",
		Short: "sshkeep manages the on-disk state of your SSH directory.",
		Long: `sshkeep keeps an SSH directory healthy: it edits the host
configuration file, inventories key pairs and their host associations,
enforces per-file permission policy, and creates and restores
point-in-time backups of the whole directory.`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: setupServices,
		PersistentPostRun: func(*cobra.Command, []string) {
			if services != nil && services.history != nil {
				_ = services.history.Close()
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file")
	cmd.PersistentFlags().String("language", "en", `CLI language ("en", "de")`)
	cmd.PersistentFlags().String("ssh_dir", "", "SSH directory to manage (default ~/.ssh)")

	cmd.AddCommand(newHostsCmd())
	cmd.AddCommand(newKeysCmd())
	cmd.AddCommand(newPermsCmd())
	cmd.AddCommand(newBackupCmd())
	cmd.AddCommand(newHistoryCmd())

	return cmd
}

// Execute runs the CLI entrypoint. The cmd/sshkeep main package calls this
// function and handles process exit.
func Execute() error {
	return NewRootCmd().Execute()
}
