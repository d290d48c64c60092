// Copyright (c) 2026 sshkeep team
// sshkeep - SSH directory manager
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// setupTestEnv isolates a command run from the real user environment: a
// fresh SSH directory, a throwaway config home and a per-test history
// database. It returns the SSH directory.
func setupTestEnv(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test isolation uses XDG_CONFIG_HOME")
	}

	sshDir := filepath.Join(t.TempDir(), ".ssh")
	if err := os.MkdirAll(sshDir, 0700); err != nil {
		t.Fatalf("could not create test ssh dir: %v", err)
	}

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("SSHKEEP_SSH_DIR", sshDir)
	t.Setenv("SSHKEEP_HISTORY_DSN", filepath.Join(t.TempDir(), "history.db"))

	services = nil
	return sshDir
}

// executeCommand runs the CLI with the given arguments and captures its
// output. A new root command is created per call for isolation.
func executeCommand(t *testing.T, args ...string) string {
	t.Helper()
	out, err := executeCommandErr(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

func executeCommandErr(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestHostsLifecycle(t *testing.T) {
	setupTestEnv(t)

	output := executeCommand(t, "hosts", "add", "dev", "--hostname", "dev.example.com", "--user", "deploy")
	if !strings.Contains(output, "Added host: dev (dev.example.com)") {
		t.Errorf("expected add confirmation, got:\n%s", output)
	}

	output = executeCommand(t, "hosts", "list")
	if !strings.Contains(output, "dev.example.com") || !strings.Contains(output, "deploy") {
		t.Errorf("expected host in listing, got:\n%s", output)
	}

	_, err := executeCommandErr(t, "hosts", "add", "dev", "--hostname", "other.example.com")
	if err == nil || !strings.Contains(err.Error(), "host already exists") {
		t.Errorf("expected duplicate error, got: %v", err)
	}

	output = executeCommand(t, "hosts", "update", "dev", "--hostname", "dev2.example.com")
	if !strings.Contains(output, "Updated host: dev (dev2.example.com)") {
		t.Errorf("expected update confirmation, got:\n%s", output)
	}

	output = executeCommand(t, "hosts", "rm", "dev")
	if !strings.Contains(output, "Removed host: dev") {
		t.Errorf("expected removal confirmation, got:\n%s", output)
	}

	output = executeCommand(t, "hosts", "list")
	if !strings.Contains(output, "No host entries configured.") {
		t.Errorf("expected empty listing, got:\n%s", output)
	}
}

func TestHostsAddRequiresHostname(t *testing.T) {
	setupTestEnv(t)

	_, err := executeCommandErr(t, "hosts", "add", "dev")
	if err == nil || !strings.Contains(err.Error(), "alias and a hostname") {
		t.Errorf("expected incomplete-entry error, got: %v", err)
	}
}

func TestKeysListEmpty(t *testing.T) {
	setupTestEnv(t)

	output := executeCommand(t, "keys", "list")
	if !strings.Contains(output, "No keys found in the SSH directory.") {
		t.Errorf("expected empty key listing, got:\n%s", output)
	}
}

func TestBackupLifecycle(t *testing.T) {
	sshDir := setupTestEnv(t)
	if err := os.WriteFile(filepath.Join(sshDir, "id_test"), []byte("key material"), 0600); err != nil {
		t.Fatalf("could not seed ssh dir: %v", err)
	}

	output := executeCommand(t, "backup", "create")
	if !strings.Contains(output, "Backup created") || !strings.Contains(output, "1 files") {
		t.Errorf("expected creation summary, got:\n%s", output)
	}

	output = executeCommand(t, "backup", "list")
	if !strings.Contains(output, "sshkeep-backup-") {
		t.Errorf("expected archive in listing, got:\n%s", output)
	}

	// Find the archive on disk to inspect and restore it.
	backupDir := filepath.Join(sshDir, "backups")
	entries, err := os.ReadDir(backupDir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one archive in %s, got %v (%v)", backupDir, entries, err)
	}
	archive := filepath.Join(backupDir, entries[0].Name())

	output = executeCommand(t, "backup", "info", archive)
	if !strings.Contains(output, "id_test") {
		t.Errorf("expected manifest contents, got:\n%s", output)
	}

	// The file still exists, so a default restore skips it.
	output = executeCommand(t, "backup", "restore", "--no-safety-backup", archive)
	if !strings.Contains(output, "restored: 0, skipped: 1, failed: 0") {
		t.Errorf("expected skip summary, got:\n%s", output)
	}

	// After deleting the file, restore brings it back.
	if err := os.Remove(filepath.Join(sshDir, "id_test")); err != nil {
		t.Fatalf("could not remove file: %v", err)
	}
	output = executeCommand(t, "backup", "restore", "--no-safety-backup", archive)
	if !strings.Contains(output, "restored: 1, skipped: 0, failed: 0") {
		t.Errorf("expected restore summary, got:\n%s", output)
	}
	data, err := os.ReadFile(filepath.Join(sshDir, "id_test"))
	if err != nil || string(data) != "key material" {
		t.Errorf("restored content = %q (%v)", data, err)
	}
}

func TestPermsCheckAndFix(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix file modes")
	}
	sshDir := setupTestEnv(t)
	keyPath := filepath.Join(sshDir, "id_test")
	if err := os.WriteFile(keyPath, []byte("key material"), 0644); err != nil {
		t.Fatalf("could not seed ssh dir: %v", err)
	}

	output := executeCommand(t, "perms", "check")
	if !strings.Contains(output, "wrong") || !strings.Contains(output, "Non-conforming files: 1") {
		t.Errorf("expected non-conforming report, got:\n%s", output)
	}

	output = executeCommand(t, "perms", "fix")
	if !strings.Contains(output, "fixed: 1, failed: 0") {
		t.Errorf("expected fix summary, got:\n%s", output)
	}

	fi, err := os.Stat(keyPath)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if fi.Mode().Perm() != 0600 {
		t.Errorf("mode = %04o, want 0600", fi.Mode().Perm())
	}

	output = executeCommand(t, "perms", "check")
	if strings.Contains(output, "Non-conforming") {
		t.Errorf("expected clean report after fix, got:\n%s", output)
	}
}

func TestHistoryRecordsOperations(t *testing.T) {
	setupTestEnv(t)

	executeCommand(t, "hosts", "add", "dev", "--hostname", "dev.example.com")
	executeCommand(t, "hosts", "rm", "dev")

	output := executeCommand(t, "history")
	if !strings.Contains(output, "ADD_HOST") || !strings.Contains(output, "DELETE_HOST") {
		t.Errorf("expected recorded operations, got:\n%s", output)
	}

	output = executeCommand(t, "history", "--limit", "1")
	if strings.Contains(output, "ADD_HOST") {
		t.Errorf("limit should trim older entries, got:\n%s", output)
	}
}

func TestVersionFlag(t *testing.T) {
	out, err := executeCommandErr(t, "--version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "sshkeep version") {
		t.Errorf("unexpected version output: %q", out)
	}
}
