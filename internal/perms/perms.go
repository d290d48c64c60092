// Copyright (c) 2026 sshkeep team
// sshkeep - SSH directory manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package perms enforces the per-file-class permission policy of the SSH
// directory. Expected state is derived purely from the file class; actual
// state comes from a delegated platform ACL collaborator, and corrections
// are fixed-form commands per class.
package perms

import (
	"context"
	"errors"
	"fmt"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/sshkeep/sshkeep/internal/fsops"
	"github.com/sshkeep/sshkeep/internal/inventory"
	"github.com/sshkeep/sshkeep/internal/logging"
	"github.com/sshkeep/sshkeep/internal/model"
	"github.com/sshkeep/sshkeep/internal/sshconfig"
)

var (
	// ErrPermissionFix is returned when the delegated ACL tool fails to
	// apply a correction.
	ErrPermissionFix = errors.New("permission fix failed")
	// ErrNoPrincipal is returned when no current-user principal could be
	// resolved. This is a hard precondition, never retried.
	ErrNoPrincipal = errors.New("could not resolve current user principal")
)

// ACL is the delegated access-control collaborator. Inspect returns a
// human-readable summary of the path's grants; Apply enforces the fixed
// policy for the file class.
type ACL interface {
	Inspect(ctx context.Context, path string) (string, error)
	Apply(ctx context.Context, path string, fileType model.FileType, principal string) error
}

// Engine checks and fixes SSH directory permissions. The principal is an
// explicit parameter rather than ambient process state so the engine stays
// testable without environment mocking.
type Engine struct {
	Dir       string
	Principal string
	ACL       ACL
}

// New builds an Engine over dir with the given principal and ACL backend.
func New(dir, principal string, acl ACL) *Engine {
	return &Engine{Dir: dir, Principal: principal, ACL: acl}
}

// CurrentPrincipal resolves the current user identity used in ACL grants.
func CurrentPrincipal() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoPrincipal, err)
	}
	if u.Username == "" {
		return "", ErrNoPrincipal
	}
	return u.Username, nil
}

// ClassifyPath maps a path under the SSH directory onto its file class.
func ClassifyPath(path string) model.FileType {
	if fsops.IsDir(path) {
		return model.FileTypeDirectory
	}
	name := filepath.Base(path)
	switch {
	case name == sshconfig.DefaultFileName:
		return model.FileTypeConfig
	case strings.HasSuffix(name, inventory.PublicKeySuffix):
		return model.FileTypePublicKey
	default:
		return model.FileTypePrivateKey
	}
}

// ExpectedPolicy describes the target state for a file class.
func ExpectedPolicy(ft model.FileType, principal string) string {
	switch ft {
	case model.FileTypeDirectory:
		return fmt.Sprintf("full control: %s", principal)
	case model.FileTypePublicKey:
		return fmt.Sprintf("read-only: %s, Everyone", principal)
	default:
		return fmt.Sprintf("read-only: %s", principal)
	}
}

// broadGrantMarkers are substrings in an inspection summary that indicate
// a grant wider than the current user.
var broadGrantMarkers = []string{
	"everyone",
	"authenticated users",
	"builtin\\users",
	"group/other",
	"world",
}

// Check inspects one path and compares it against the policy for its file
// class. The correctness test is conservative: current-user-only policies
// fail on any broader-principal grant in the summary; the public-key
// policy currently accepts any state.
func (e *Engine) Check(ctx context.Context, path string, ft model.FileType) (model.PermissionRecord, error) {
	summary, err := e.ACL.Inspect(ctx, path)
	if err != nil {
		return model.PermissionRecord{}, err
	}
	return model.PermissionRecord{
		Path:      path,
		FileType:  ft,
		Current:   summary,
		Expected:  ExpectedPolicy(ft, e.Principal),
		IsCorrect: e.isCorrect(ft, summary),
	}, nil
}

func (e *Engine) isCorrect(ft model.FileType, summary string) bool {
	if ft == model.FileTypePublicKey {
		// Public keys are world-readable by policy; any state passes.
		return true
	}
	lower := strings.ToLower(summary)
	for _, marker := range broadGrantMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}

// CheckAll checks the SSH directory itself and every file inside it.
// Per-item inspection failures are logged and skipped.
func (e *Engine) CheckAll(ctx context.Context) ([]model.PermissionRecord, error) {
	names, err := fsops.ListDir(e.Dir)
	if err != nil {
		return nil, err
	}

	records := make([]model.PermissionRecord, 0, len(names)+1)
	dirRec, err := e.Check(ctx, e.Dir, model.FileTypeDirectory)
	if err != nil {
		logging.Warnf("could not check %s: %v", e.Dir, err)
	} else {
		records = append(records, dirRec)
	}

	for _, name := range names {
		path := filepath.Join(e.Dir, name)
		rec, err := e.Check(ctx, path, ClassifyPath(path))
		if err != nil {
			logging.Warnf("could not check %s: %v", path, err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Fix applies the fixed-form correction for the path's file class.
func (e *Engine) Fix(ctx context.Context, path string, ft model.FileType) error {
	if e.Principal == "" {
		return ErrNoPrincipal
	}
	if err := e.ACL.Apply(ctx, path, ft, e.Principal); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPermissionFix, path, err)
	}
	return nil
}

// FixSummary aggregates the outcome of FixAll.
type FixSummary struct {
	Fixed  int
	Failed int
	Errors []string
}

// FixAll attempts to fix every non-conforming record independently.
// Failures are accumulated, never propagated, so one bad file does not
// abort the batch.
func (e *Engine) FixAll(ctx context.Context) (FixSummary, error) {
	records, err := e.CheckAll(ctx)
	if err != nil {
		return FixSummary{}, err
	}

	var summary FixSummary
	for _, rec := range records {
		if rec.IsCorrect {
			continue
		}
		if err := e.Fix(ctx, rec.Path, rec.FileType); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, err.Error())
			logging.Warnf("permission fix failed for %s: %v", rec.Path, err)
			continue
		}
		summary.Fixed++
	}
	return summary, nil
}
