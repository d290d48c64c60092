// Copyright (c) 2026 sshkeep team
// sshkeep - SSH directory manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package runner executes the external tools sshkeep delegates to
// (ssh-keygen, the platform ACL tool). A single interface keeps the
// components testable without spawning processes.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Runner runs an external command and returns its output streams.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)
}

// ExecRunner runs commands through os/exec. A non-zero Timeout bounds every
// invocation; the zero value applies no timeout and relies on the caller's
// context.
type ExecRunner struct {
	Timeout time.Duration
}

// New returns an ExecRunner with the given timeout.
func New(timeout time.Duration) *ExecRunner {
	return &ExecRunner{Timeout: timeout}
}

// Run executes the command and captures both output streams. On a non-zero
// exit the returned error carries the raw tool output so callers can log it.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	// Without a wait delay, Run blocks until every process holding the
	// output pipes exits, even after the context kills the direct child.
	cmd.WaitDelay = time.Second
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	stdout := outBuf.String()
	stderr := errBuf.String()
	if err != nil {
		return stdout, stderr, fmt.Errorf("%s %s failed: %w (output: %s)",
			name, strings.Join(args, " "), err, strings.TrimSpace(stderr+stdout))
	}
	return stdout, stderr, nil
}
