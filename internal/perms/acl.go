// Copyright (c) 2026 sshkeep team
// sshkeep - SSH directory manager
// This source code is licensed under the MIT license found in the LICENSE file.

package perms

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/sshkeep/sshkeep/internal/logging"
	"github.com/sshkeep/sshkeep/internal/model"
	"github.com/sshkeep/sshkeep/internal/runner"
)

// NewPlatformACL returns the ACL backend for the current platform: icacls
// delegation on Windows, file-mode enforcement elsewhere.
func NewPlatformACL(r runner.Runner) ACL {
	if runtime.GOOS == "windows" {
		return &IcaclsACL{Runner: r}
	}
	return &PosixACL{}
}

// IcaclsACL implements the ACL contract through the icacls tool:
// inspection returns the per-principal grant lines, and a fix strips
// inherited permissions before granting exactly the policy's principals.
type IcaclsACL struct {
	Runner runner.Runner
}

// Inspect returns the grant lines icacls prints for the path.
func (a *IcaclsACL) Inspect(ctx context.Context, path string) (string, error) {
	stdout, _, err := a.Runner.Run(ctx, "icacls", path)
	if err != nil {
		return "", err
	}
	return summarizeIcacls(stdout, path), nil
}

// summarizeIcacls reduces icacls output to the grant lines, dropping the
// leading path prefix and the trailing statistics line.
func summarizeIcacls(output, path string) string {
	var grants []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), path))
		if line == "" || strings.HasPrefix(line, "Successfully processed") {
			continue
		}
		grants = append(grants, line)
	}
	return strings.Join(grants, "; ")
}

// Apply issues the fixed-form icacls command for the file class.
func (a *IcaclsACL) Apply(ctx context.Context, path string, ft model.FileType, principal string) error {
	args := []string{path, "/inheritance:r"}
	switch ft {
	case model.FileTypeDirectory:
		args = append(args, "/grant:r", principal+":(OI)(CI)F")
	case model.FileTypePublicKey:
		args = append(args, "/grant:r", principal+":R", "/grant:r", "Everyone:R")
	default:
		args = append(args, "/grant:r", principal+":R")
	}

	stdout, stderr, err := a.Runner.Run(ctx, "icacls", args...)
	if err != nil {
		// icacls reports informational warnings with a zero failure count.
		if strings.Contains(stdout, "Failed processing 0 files") {
			logging.Debugf("icacls warning for %s: %s", path, strings.TrimSpace(stderr))
			return nil
		}
		return err
	}
	return nil
}

// PosixACL enforces the policy with plain file modes. The inspection
// summary marks any group/other access so the engine's conservative
// correctness test can flag it.
type PosixACL struct{}

// Inspect summarizes the path's file mode.
func (PosixACL) Inspect(_ context.Context, path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("could not stat %s: %w", path, err)
	}
	mode := fi.Mode().Perm()
	if mode&0077 == 0 {
		return fmt.Sprintf("%04o (owner only)", mode), nil
	}
	return fmt.Sprintf("%04o (group/other access)", mode), nil
}

// Apply chmods the path to the policy mode for its file class.
func (PosixACL) Apply(_ context.Context, path string, ft model.FileType, _ string) error {
	var mode os.FileMode
	switch ft {
	case model.FileTypeDirectory:
		mode = 0700
	case model.FileTypePublicKey:
		mode = 0644
	default:
		mode = 0600
	}
	if err := os.Chmod(path, mode); err != nil {
		return fmt.Errorf("could not chmod %s: %w", path, err)
	}
	return nil
}
