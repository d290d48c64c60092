// Copyright (c) 2026 sshkeep team
// sshkeep - SSH directory manager
// This source code is licensed under the MIT license found in the LICENSE file.

package perms

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sshkeep/sshkeep/internal/model"
)

// fakeACL reports a canned summary per path and records Apply calls.
// Paths listed in failApply reject the correction.
type fakeACL struct {
	summaries map[string]string
	failApply map[string]bool
	applied   []string
}

func (f *fakeACL) Inspect(_ context.Context, path string) (string, error) {
	if s, ok := f.summaries[filepath.Base(path)]; ok {
		return s, nil
	}
	return "owner only", nil
}

func (f *fakeACL) Apply(_ context.Context, path string, _ model.FileType, _ string) error {
	if f.failApply[filepath.Base(path)] {
		return errors.New("access denied")
	}
	f.applied = append(f.applied, filepath.Base(path))
	return nil
}

func writeFile(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestClassifyPath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config")
	writeFile(t, dir, "id_ed25519")
	writeFile(t, dir, "id_ed25519.pub")
	writeFile(t, dir, "known_hosts")

	tests := []struct {
		path string
		want model.FileType
	}{
		{dir, model.FileTypeDirectory},
		{filepath.Join(dir, "config"), model.FileTypeConfig},
		{filepath.Join(dir, "id_ed25519.pub"), model.FileTypePublicKey},
		{filepath.Join(dir, "id_ed25519"), model.FileTypePrivateKey},
		{filepath.Join(dir, "known_hosts"), model.FileTypePrivateKey},
	}
	for _, tt := range tests {
		if got := ClassifyPath(tt.path); got != tt.want {
			t.Fatalf("ClassifyPath(%s) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestCheck_ConservativeCorrectness(t *testing.T) {
	tests := []struct {
		name    string
		ft      model.FileType
		summary string
		want    bool
	}{
		{"owner only private key", model.FileTypePrivateKey, "alice:F", true},
		{"everyone grant fails", model.FileTypePrivateKey, "alice:F; Everyone:R", false},
		{"authenticated users fails", model.FileTypeConfig, "NT AUTHORITY\\Authenticated Users:R", false},
		{"group/other fails", model.FileTypeDirectory, "0770 (group/other access)", false},
		{"public key always passes", model.FileTypePublicKey, "Everyone:F; world writable", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acl := &fakeACL{summaries: map[string]string{"target": tt.summary}}
			e := New(t.TempDir(), "alice", acl)
			rec, err := e.Check(context.Background(), filepath.Join(e.Dir, "target"), tt.ft)
			if err != nil {
				t.Fatalf("Check failed: %v", err)
			}
			if rec.IsCorrect != tt.want {
				t.Fatalf("IsCorrect = %v, want %v (summary %q)", rec.IsCorrect, tt.want, tt.summary)
			}
			if rec.Current != tt.summary {
				t.Fatalf("Current = %q, want %q", rec.Current, tt.summary)
			}
		})
	}
}

func TestCheckAll_CoversDirectoryAndEntries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config")
	writeFile(t, dir, "id_rsa")
	writeFile(t, dir, "id_rsa.pub")

	e := New(dir, "alice", &fakeACL{})
	records, err := e.CheckAll(context.Background())
	if err != nil {
		t.Fatalf("CheckAll failed: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected 4 records (dir + 3 files), got %d", len(records))
	}
	if records[0].Path != dir || records[0].FileType != model.FileTypeDirectory {
		t.Fatalf("first record should be the directory itself, got %+v", records[0])
	}
}

func TestFix_RequiresPrincipal(t *testing.T) {
	e := New(t.TempDir(), "", &fakeACL{})
	err := e.Fix(context.Background(), filepath.Join(e.Dir, "id_rsa"), model.FileTypePrivateKey)
	if !errors.Is(err, ErrNoPrincipal) {
		t.Fatalf("expected ErrNoPrincipal, got %v", err)
	}
}

func TestFix_WrapsApplyFailure(t *testing.T) {
	acl := &fakeACL{failApply: map[string]bool{"id_rsa": true}}
	e := New(t.TempDir(), "alice", acl)
	err := e.Fix(context.Background(), filepath.Join(e.Dir, "id_rsa"), model.FileTypePrivateKey)
	if !errors.Is(err, ErrPermissionFix) {
		t.Fatalf("expected ErrPermissionFix, got %v", err)
	}
	if !strings.Contains(err.Error(), "id_rsa") {
		t.Fatalf("error should name the path, got %q", err)
	}
}

func TestFixAll_IsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"config", "id_rsa", "id_ecdsa", "known_hosts"} {
		writeFile(t, dir, name)
	}

	// Everything non-conforming, one path refusing the fix. The batch
	// must still fix the other four (directory included).
	acl := &fakeACL{
		summaries: map[string]string{
			filepath.Base(dir): "Everyone:F",
			"config":           "Everyone:R",
			"id_rsa":           "Everyone:R",
			"id_ecdsa":         "Everyone:R",
			"known_hosts":      "Everyone:R",
		},
		failApply: map[string]bool{"id_rsa": true},
	}
	e := New(dir, "alice", acl)

	summary, err := e.FixAll(context.Background())
	if err != nil {
		t.Fatalf("FixAll failed: %v", err)
	}
	if summary.Fixed != 4 {
		t.Fatalf("Fixed = %d, want 4", summary.Fixed)
	}
	if summary.Failed != 1 {
		t.Fatalf("Failed = %d, want 1", summary.Failed)
	}
	if len(summary.Errors) != 1 || !strings.Contains(summary.Errors[0], "id_rsa") {
		t.Fatalf("error should identify the failing path, got %v", summary.Errors)
	}
}

func TestFixAll_SkipsConformingRecords(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "id_rsa")
	writeFile(t, dir, "id_rsa.pub")

	acl := &fakeACL{summaries: map[string]string{"id_rsa.pub": "Everyone:R"}}
	e := New(dir, "alice", acl)

	summary, err := e.FixAll(context.Background())
	if err != nil {
		t.Fatalf("FixAll failed: %v", err)
	}
	if summary.Fixed != 0 || summary.Failed != 0 {
		t.Fatalf("nothing should need fixing, got %+v", summary)
	}
	if len(acl.applied) != 0 {
		t.Fatalf("Apply should not be called, got %v", acl.applied)
	}
}
