// Copyright (c) 2026 sshkeep team
// sshkeep - SSH directory manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads the sshkeep configuration from the standard config
// locations, the environment and command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	// SSHDir is the managed SSH directory. Defaults to ~/.ssh.
	SSHDir string `mapstructure:"ssh_dir" yaml:"ssh_dir"`
	// BackupDir is where snapshots are written. Defaults to
	// <ssh_dir>/backups.
	BackupDir string `mapstructure:"backup_dir" yaml:"backup_dir"`
	// Language selects the CLI language ("en", "de").
	Language string `mapstructure:"language" yaml:"language"`
	// History configures the operation history store.
	History HistoryConfig `mapstructure:"history" yaml:"history"`
	// ToolTimeout bounds external tool invocations, in seconds. Zero
	// means no timeout.
	ToolTimeout int `mapstructure:"tool_timeout" yaml:"tool_timeout"`
}

// HistoryConfig configures the history database.
type HistoryConfig struct {
	Dsn string `mapstructure:"dsn" yaml:"dsn"`
}

// getConfigPath returns the full path for the configuration file.
func getConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "sshkeep")
		default: // Linux, macOS, etc.
			configDir = "/etc/sshkeep"
		}
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "sshkeep")
	}

	return filepath.Join(configDir, "sshkeep.yaml"), nil
}

// LoadConfig assembles the configuration from defaults, the config file
// search path, environment variables (SSHKEEP_ prefix) and the command's
// flags, in ascending precedence.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, explicitPath *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("sshkeep")
	v.SetConfigType("yaml")

	// An explicit --config path has the highest file precedence.
	if explicitPath != nil {
		v.SetConfigFile(*explicitPath)
	}

	if userConfigPath, err := getConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := getConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".")

	// A missing config file still yields a usable configuration from
	// defaults, environment and flags; the not-found error is returned
	// alongside it so callers can persist a default file on first run.
	var notFound error
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, err
		}
		notFound = err
	}

	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
	v.SetEnvPrefix("sshkeep")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return c, err
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}

	return c, notFound
}

// WriteConfigFile persists the configuration to the user (or system)
// config path.
func WriteConfigFile[T any](c *T, system bool) error {
	path, err := getConfigPath(system)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return err
	}

	return nil
}
