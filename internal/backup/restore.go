// Copyright (c) 2026 sshkeep team
// sshkeep - SSH directory manager
// This source code is licensed under the MIT license found in the LICENSE file.

package backup

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/sshkeep/sshkeep/internal/fsops"
	"github.com/sshkeep/sshkeep/internal/logging"
)

// RestoreOptions control a restore run.
type RestoreOptions struct {
	// BackupPath is the archive to restore from.
	BackupPath string
	// OverwriteExisting replaces files that already exist.
	OverwriteExisting bool
	// MergeDuplicates keeps both versions by restoring under a
	// timestamp-suffixed name when the destination exists.
	MergeDuplicates bool
	// CreateBackup takes a safety snapshot before touching anything.
	CreateBackup bool
}

// RestoreSummary reports per-file outcomes. Item failures are counted
// here, never returned as errors.
type RestoreSummary struct {
	Restored int
	Skipped  int
	Failed   int
	Errors   []string
}

// Restore unpacks the archive into the SSH directory, applying the
// conflict policy per file. Only directory-level failures (unreadable
// archive, uncreatable destination) abort the run; the extraction
// directory is removed unconditionally.
func (m *Manager) Restore(opts RestoreOptions) (RestoreSummary, error) {
	var summary RestoreSummary

	if opts.CreateBackup {
		// A failed safety net must not block an explicit restore.
		if _, err := m.Create(filepath.Dir(opts.BackupPath)); err != nil {
			logging.Warnf("restore: pre-restore backup failed: %v", err)
		}
	}

	extracted, err := os.MkdirTemp("", "sshkeep-restore-*")
	if err != nil {
		return summary, fmt.Errorf("could not create extraction directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(extracted) }()

	if err := decompressArchive(opts.BackupPath, extracted); err != nil {
		return summary, err
	}
	if err := os.MkdirAll(m.Dir, 0700); err != nil {
		return summary, fmt.Errorf("could not create destination %s: %w", m.Dir, err)
	}

	// The manifest is informational here; restoration walks the files
	// actually present in the extracted directory, so archives without
	// metadata restore fine.
	if meta, err := m.Metadata(opts.BackupPath); err != nil || meta == nil {
		logging.Debugf("restore: no metadata manifest in %s", opts.BackupPath)
	}

	names, err := fsops.ListDir(extracted)
	if err != nil {
		return summary, err
	}

	stamp := Timestamp(m.now())
	for _, name := range names {
		if name == MetadataFileName {
			continue
		}
		src := filepath.Join(extracted, name)
		dst := filepath.Join(m.Dir, name)

		switch {
		case !fsops.Exists(dst):
			// restore as-is
		case opts.OverwriteExisting:
			// replace
		case opts.MergeDuplicates:
			dst = filepath.Join(m.Dir, name+".restored-"+stamp)
		default:
			summary.Skipped++
			continue
		}

		if err := fsops.CopyFile(src, dst); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", name, err))
			logging.Warnf("restore: could not restore %s: %v", name, err)
			continue
		}
		summary.Restored++
	}
	return summary, nil
}

// decompressArchive unpacks the flat archive into destDir, rejecting
// entries whose names would escape it.
func decompressArchive(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("could not open backup %s: %w", archivePath, err)
	}
	defer func() { _ = f.Close() }()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("could not read backup %s: %w", archivePath, err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("could not unpack backup %s: %w", archivePath, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		name := filepath.Base(filepath.Clean(hdr.Name))
		if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
			logging.Warnf("restore: skipping suspicious archive entry %q", hdr.Name)
			continue
		}

		out, err := os.OpenFile(filepath.Join(destDir, name), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("could not extract %s: %w", name, err)
		}
		if _, err := io.Copy(out, tr); err != nil {
			_ = out.Close()
			return fmt.Errorf("could not extract %s: %w", name, err)
		}
		if err := out.Close(); err != nil {
			return fmt.Errorf("could not extract %s: %w", name, err)
		}
	}
}
