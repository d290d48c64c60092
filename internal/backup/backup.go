// Copyright (c) 2026 sshkeep team
// sshkeep - SSH directory manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package backup creates, lists and restores point-in-time snapshots of
// the SSH directory. Archives are gzip-compressed tarballs holding a flat
// copy of the directory's files plus a JSON metadata manifest; the
// manifest is authoritative for what the backup tracked.
package backup

import (
	"archive/tar"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/sshkeep/sshkeep/internal/fsops"
	"github.com/sshkeep/sshkeep/internal/logging"
	"github.com/sshkeep/sshkeep/internal/model"
)

const (
	// ArchivePrefix and ArchiveSuffix form the backup filename pattern.
	ArchivePrefix = "sshkeep-backup-"
	ArchiveSuffix = ".tar.gz"
	// MetadataFileName is the manifest entry at the archive root.
	MetadataFileName = "backup-metadata.json"
)

// timestampReplacer makes an RFC3339 timestamp filename-safe.
var timestampReplacer = strings.NewReplacer(":", "-", ".", "-")

// Manager creates and restores snapshots of one SSH directory.
type Manager struct {
	// Dir is the SSH directory being snapshotted.
	Dir string
	// AppVersion is recorded in each backup's metadata.
	AppVersion string
	// now is swappable for tests.
	now func() time.Time
}

// New builds a Manager for the given SSH directory.
func New(dir, appVersion string) *Manager {
	return &Manager{Dir: dir, AppVersion: appVersion, now: time.Now}
}

// Timestamp renders t in the archive filename form.
func Timestamp(t time.Time) string {
	return timestampReplacer.Replace(t.UTC().Format(time.RFC3339))
}

// Create snapshots the SSH directory into a new archive under destDir.
// Files that cannot be copied are skipped with a warning and omitted from
// the manifest; the staging directory is removed on every path.
func (m *Manager) Create(destDir string) (model.BackupInfo, error) {
	if !fsops.IsDir(m.Dir) {
		return model.BackupInfo{}, fmt.Errorf("ssh directory %s does not exist", m.Dir)
	}
	if err := os.MkdirAll(destDir, 0700); err != nil {
		return model.BackupInfo{}, fmt.Errorf("could not create backup directory %s: %w", destDir, err)
	}

	staging, err := os.MkdirTemp("", "sshkeep-staging-*")
	if err != nil {
		return model.BackupInfo{}, fmt.Errorf("could not create staging directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(staging) }()

	names, err := fsops.ListDir(m.Dir)
	if err != nil {
		return model.BackupInfo{}, err
	}

	var captured []string
	for _, name := range names {
		src := filepath.Join(m.Dir, name)
		if fsops.IsDir(src) || isArchiveName(name) {
			continue
		}
		if err := fsops.CopyFile(src, filepath.Join(staging, name)); err != nil {
			logging.Warnf("backup: skipping %s: %v", name, err)
			continue
		}
		captured = append(captured, name)
	}

	meta := model.BackupMetadata{
		CreatedAt:    m.now().UTC(),
		Username:     currentUsername(),
		ComputerName: hostname(),
		AppVersion:   m.AppVersion,
		Files:        captured,
		FileCount:    len(captured),
	}
	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return model.BackupInfo{}, fmt.Errorf("could not encode backup metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(staging, MetadataFileName), metaBytes, 0600); err != nil {
		return model.BackupInfo{}, fmt.Errorf("could not write backup metadata: %w", err)
	}

	archivePath := filepath.Join(destDir, ArchivePrefix+Timestamp(meta.CreatedAt)+ArchiveSuffix)
	if err := compressDir(staging, archivePath); err != nil {
		return model.BackupInfo{}, err
	}

	fi, err := fsops.Stat(archivePath)
	if err != nil {
		return model.BackupInfo{}, err
	}
	return model.BackupInfo{Path: archivePath, Metadata: meta, Size: fi.Size()}, nil
}

// List returns the backups found in dir, newest first by metadata creation
// time. Archives without a manifest get best-effort metadata derived from
// file stats.
func (m *Manager) List(dir string) ([]model.BackupInfo, error) {
	if !fsops.IsDir(dir) {
		return []model.BackupInfo{}, nil
	}
	names, err := fsops.ListDir(dir)
	if err != nil {
		return nil, err
	}

	var infos []model.BackupInfo
	for _, name := range names {
		if !isArchiveName(name) {
			continue
		}
		path := filepath.Join(dir, name)
		fi, err := fsops.Stat(path)
		if err != nil {
			logging.Warnf("backup: could not stat %s: %v", path, err)
			continue
		}

		info := model.BackupInfo{Path: path, Size: fi.Size()}
		meta, err := m.Metadata(path)
		switch {
		case err != nil:
			logging.Warnf("backup: could not read metadata from %s: %v", path, err)
			info.Metadata = model.BackupMetadata{CreatedAt: fi.ModTime()}
		case meta == nil:
			info.Metadata = model.BackupMetadata{CreatedAt: fi.ModTime()}
		default:
			info.Metadata = *meta
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Metadata.CreatedAt.After(infos[j].Metadata.CreatedAt)
	})
	return infos, nil
}

// Metadata extracts only the manifest from the archive, without unpacking
// file contents. A missing manifest yields (nil, nil) so callers can fall
// back to stat-derived metadata.
func (m *Manager) Metadata(path string) (*model.BackupMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open backup %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("could not read backup %s: %w", path, err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("could not scan backup %s: %w", path, err)
		}
		if filepath.Base(hdr.Name) != MetadataFileName {
			continue
		}
		var meta model.BackupMetadata
		if err := json.NewDecoder(tr).Decode(&meta); err != nil {
			return nil, fmt.Errorf("could not decode metadata in %s: %w", path, err)
		}
		return &meta, nil
	}
}

func isArchiveName(name string) bool {
	return strings.HasPrefix(name, ArchivePrefix) && strings.HasSuffix(name, ArchiveSuffix)
}

func currentUsername() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return ""
}

func hostname() string {
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return ""
}

// compressDir writes every regular file at the root of dir into a
// gzip-compressed tar archive at archivePath.
func compressDir(dir, archivePath string) error {
	out, err := os.OpenFile(archivePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("could not create archive %s: %w", archivePath, err)
	}
	defer func() { _ = out.Close() }()

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	names, err := fsops.ListDir(dir)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := addFile(tw, dir, name); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("could not finish archive %s: %w", archivePath, err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("could not finish compression for %s: %w", archivePath, err)
	}
	return out.Close()
}

func addFile(tw *tar.Writer, dir, name string) error {
	path := filepath.Join(dir, name)
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("could not stat %s: %w", path, err)
	}
	hdr, err := tar.FileInfoHeader(fi, "")
	if err != nil {
		return fmt.Errorf("could not build tar header for %s: %w", path, err)
	}
	hdr.Name = name
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("could not write tar header for %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("could not open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("could not write %s into archive: %w", path, err)
	}
	return nil
}
