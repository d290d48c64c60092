// Copyright (c) 2026 sshkeep team
// sshkeep - SSH directory manager
// This source code is licensed under the MIT license found in the LICENSE file.

package perms

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/sshkeep/sshkeep/internal/model"
)

func TestSummarizeIcacls(t *testing.T) {
	output := "C:\\Users\\alice\\.ssh\\id_rsa DESKTOP\\alice:(F)\n" +
		"                               Everyone:(R)\n" +
		"\n" +
		"Successfully processed 1 files; Failed processing 0 files\n"

	got := summarizeIcacls(output, "C:\\Users\\alice\\.ssh\\id_rsa")
	want := "DESKTOP\\alice:(F); Everyone:(R)"
	if got != want {
		t.Fatalf("summarizeIcacls = %q, want %q", got, want)
	}
}

func TestPosixACL_Inspect(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix file modes")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "id_rsa")
	if err := os.WriteFile(path, []byte("x"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	acl := PosixACL{}
	summary, err := acl.Inspect(context.Background(), path)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if summary != "0600 (owner only)" {
		t.Fatalf("summary = %q, want owner only", summary)
	}

	if err := os.Chmod(path, 0644); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	summary, err = acl.Inspect(context.Background(), path)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if !strings.Contains(summary, "group/other access") {
		t.Fatalf("summary = %q, want group/other marker", summary)
	}
}

func TestPosixACL_Apply(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix file modes")
	}
	dir := t.TempDir()

	tests := []struct {
		name string
		ft   model.FileType
		want os.FileMode
	}{
		{"subdir", model.FileTypeDirectory, 0700},
		{"id_rsa.pub", model.FileTypePublicKey, 0644},
		{"id_rsa", model.FileTypePrivateKey, 0600},
		{"config", model.FileTypeConfig, 0600},
	}

	acl := PosixACL{}
	for _, tt := range tests {
		path := filepath.Join(dir, tt.name)
		if tt.ft == model.FileTypeDirectory {
			if err := os.Mkdir(path, 0755); err != nil {
				t.Fatalf("mkdir: %v", err)
			}
		} else if err := os.WriteFile(path, []byte("x"), 0666); err != nil {
			t.Fatalf("write: %v", err)
		}

		if err := acl.Apply(context.Background(), path, tt.ft, "alice"); err != nil {
			t.Fatalf("Apply(%s) failed: %v", tt.name, err)
		}
		fi, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		if fi.Mode().Perm() != tt.want {
			t.Fatalf("%s mode = %04o, want %04o", tt.name, fi.Mode().Perm(), tt.want)
		}
	}
}
