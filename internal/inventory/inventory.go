// Copyright (c) 2026 sshkeep team
// sshkeep - SSH directory manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package inventory discovers the key pairs in an SSH directory and
// resolves their association with host configuration entries. Records are
// built fresh on every call; nothing is cached between calls.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sshkeep/sshkeep/internal/fsops"
	"github.com/sshkeep/sshkeep/internal/logging"
	"github.com/sshkeep/sshkeep/internal/model"
	"github.com/sshkeep/sshkeep/internal/runner"
	"github.com/sshkeep/sshkeep/internal/sshconfig"
)

const (
	// PublicKeySuffix marks the public counterpart of a private key file.
	PublicKeySuffix = ".pub"
	// KnownHostsFile is the well-known hosts filename, never a key.
	KnownHostsFile = "known_hosts"
)

// ErrKeyNotFound is returned when the requested private key file is absent.
var ErrKeyNotFound = errors.New("key not found")

// Inventory lists and manages the keys of one SSH directory. The config
// codec is constructor-injected so association resolution stays testable
// in isolation.
type Inventory struct {
	Dir           string
	Fingerprinter Fingerprinter
	Codec         *sshconfig.Codec
	Classify      Classifier
	Runner        runner.Runner
}

// New builds an Inventory for dir with the default tool-first fingerprint
// chain and header classifier.
func New(dir string, r runner.Runner) *Inventory {
	return &Inventory{
		Dir:           dir,
		Fingerprinter: Chain{&ToolFingerprinter{Runner: r}, NativeFingerprinter{}},
		Codec:         sshconfig.New(filepath.Join(dir, sshconfig.DefaultFileName)),
		Classify:      LooksLikePrivateKey,
		Runner:        r,
	}
}

// List discovers every private key in the directory and returns its
// records. A key whose fingerprinting or association fails is skipped with
// a logged warning; partial results are preferable to total failure.
func (inv *Inventory) List(ctx context.Context) ([]model.KeyRecord, error) {
	names, err := inv.discover()
	if err != nil {
		return nil, err
	}

	entries, err := inv.Codec.Parse()
	if err != nil {
		logging.Warnf("could not parse ssh config for key associations: %v", err)
		entries = nil
	}

	records := make([]model.KeyRecord, 0, len(names))
	for _, name := range names {
		rec, err := inv.buildRecord(ctx, name, entries)
		if err != nil {
			logging.Warnf("skipping key %s: %v", name, err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Get returns the record for a single key. It fails with ErrKeyNotFound
// when the private key file is absent.
func (inv *Inventory) Get(ctx context.Context, name string) (model.KeyRecord, error) {
	path := filepath.Join(inv.Dir, name)
	if !fsops.Exists(path) {
		return model.KeyRecord{}, fmt.Errorf("%w: %s", ErrKeyNotFound, name)
	}
	entries, err := inv.Codec.Parse()
	if err != nil {
		logging.Warnf("could not parse ssh config for key associations: %v", err)
		entries = nil
	}
	return inv.buildRecord(ctx, name, entries)
}

// GenerateOptions describe a key to generate via the external
// key-generation tool.
type GenerateOptions struct {
	Name       string
	Type       model.KeyType
	Bits       int
	Comment    string
	Passphrase string
}

// Generate delegates key creation to ssh-keygen. It refuses to overwrite
// an existing key file.
func (inv *Inventory) Generate(ctx context.Context, opts GenerateOptions) error {
	if opts.Name == "" || opts.Type == "" {
		return fmt.Errorf("key name and type are required")
	}
	path := filepath.Join(inv.Dir, opts.Name)
	if fsops.Exists(path) {
		return fmt.Errorf("key %s already exists", opts.Name)
	}

	args := []string{"-t", string(opts.Type), "-f", path, "-N", opts.Passphrase}
	if opts.Bits > 0 {
		args = append(args, "-b", strconv.Itoa(opts.Bits))
	}
	if opts.Comment != "" {
		args = append(args, "-C", opts.Comment)
	}
	if _, _, err := inv.Runner.Run(ctx, "ssh-keygen", args...); err != nil {
		return fmt.Errorf("key generation failed: %w", err)
	}
	return nil
}

// Delete removes a key pair. The missing public counterpart is tolerated.
func (inv *Inventory) Delete(name string) error {
	path := filepath.Join(inv.Dir, name)
	if !fsops.Exists(path) {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, name)
	}
	if err := fsops.Remove(path); err != nil {
		return err
	}
	return fsops.Remove(path + PublicKeySuffix)
}

// Import copies a key pair from sourcePath into the SSH directory.
func (inv *Inventory) Import(sourcePath string) error {
	if !fsops.Exists(sourcePath) {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, sourcePath)
	}
	dst := filepath.Join(inv.Dir, filepath.Base(sourcePath))
	if fsops.Exists(dst) {
		return fmt.Errorf("key %s already exists", filepath.Base(sourcePath))
	}
	if err := fsops.CopyFile(sourcePath, dst); err != nil {
		return err
	}
	if fsops.Exists(sourcePath + PublicKeySuffix) {
		return fsops.CopyFile(sourcePath+PublicKeySuffix, dst+PublicKeySuffix)
	}
	return nil
}

// Export copies a key pair to the destination directory.
func (inv *Inventory) Export(name, destinationDir string) error {
	src := filepath.Join(inv.Dir, name)
	if !fsops.Exists(src) {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, name)
	}
	if err := os.MkdirAll(destinationDir, 0700); err != nil {
		return fmt.Errorf("could not create %s: %w", destinationDir, err)
	}
	if err := fsops.CopyFile(src, filepath.Join(destinationDir, name)); err != nil {
		return err
	}
	if fsops.Exists(src + PublicKeySuffix) {
		return fsops.CopyFile(src+PublicKeySuffix, filepath.Join(destinationDir, name+PublicKeySuffix))
	}
	return nil
}

// discover enumerates candidate private key filenames, deduplicated and in
// directory order.
func (inv *Inventory) discover() ([]string, error) {
	entries, err := os.ReadDir(inv.Dir)
	if err != nil {
		return nil, fmt.Errorf("could not read ssh directory %s: %w", inv.Dir, err)
	}

	seen := make(map[string]struct{})
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, PublicKeySuffix) ||
			name == KnownHostsFile || name == KnownHostsFile+".old" ||
			name == sshconfig.DefaultFileName {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}

		if !HasConventionalKeyName(name) {
			content, err := fsops.ReadFile(filepath.Join(inv.Dir, name))
			if err != nil || !inv.Classify(content) {
				continue
			}
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names, nil
}

// buildRecord assembles the full record for one key file.
func (inv *Inventory) buildRecord(ctx context.Context, name string, entries []model.HostEntry) (model.KeyRecord, error) {
	path := filepath.Join(inv.Dir, name)

	fi, err := fsops.Stat(path)
	if err != nil {
		return model.KeyRecord{}, err
	}
	content, err := fsops.ReadFile(path)
	if err != nil {
		return model.KeyRecord{}, err
	}

	fp, err := inv.Fingerprinter.Fingerprint(ctx, path)
	if err != nil {
		return model.KeyRecord{}, fmt.Errorf("fingerprint failed: %w", err)
	}

	hosts := inv.associatedHosts(name, entries)
	return model.KeyRecord{
		Name:            name,
		Type:            fp.Type,
		Fingerprint:     fp.Hash,
		Bits:            fp.Bits,
		Comment:         fp.Comment,
		HasPassphrase:   HasPassphraseMarker(content),
		Size:            fi.Size(),
		CreatedAt:       fi.ModTime(),
		ModifiedAt:      fi.ModTime(),
		AssociatedHosts: hosts,
		IsMapped:        len(hosts) > 0,
	}, nil
}

// associatedHosts resolves which config entries point at this key. The
// identity file path is expanded and compared case-insensitively by both
// full path and basename, matching case-insensitive filesystems.
func (inv *Inventory) associatedHosts(name string, entries []model.HostEntry) []string {
	keyPath := strings.ToLower(filepath.Clean(filepath.Join(inv.Dir, name)))
	keyName := strings.ToLower(name)

	var hosts []string
	for _, e := range entries {
		if e.IdentityFile == "" {
			continue
		}
		expanded := strings.ToLower(filepath.Clean(sshconfig.ExpandHome(e.IdentityFile)))
		if expanded == keyPath || strings.ToLower(filepath.Base(expanded)) == keyName {
			hosts = append(hosts, e.Alias)
		}
	}
	return hosts
}
