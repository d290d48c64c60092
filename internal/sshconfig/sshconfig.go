// Copyright (c) 2026 sshkeep team
// sshkeep - SSH directory manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package sshconfig parses and serializes the SSH host configuration file.
// Parsing tolerates everything the file format allows; serialization always
// regenerates the whole file from the in-memory entry sequence, so unknown
// directives round-trip but comments and blank-line placement do not
// survive a write.
package sshconfig

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sshkeep/sshkeep/internal/fsops"
	"github.com/sshkeep/sshkeep/internal/model"
)

// DefaultFileName is the configuration filename inside the SSH directory.
const DefaultFileName = "config"

var (
	// ErrDuplicateHost is returned by Add when the alias already exists.
	ErrDuplicateHost = errors.New("host alias already exists")
	// ErrHostNotFound is returned by Update/Delete for an unknown alias.
	ErrHostNotFound = errors.New("host alias not found")
)

// header is written at the top of every generated config file.
const header = "# SSH configuration managed by sshkeep\n# Manual comments in this file do not survive a rewrite.\n"

// Codec reads and writes one SSH configuration file. It keeps no state
// between calls; every mutation re-reads, modifies and rewrites the full
// entry sequence.
type Codec struct {
	// Path is the location of the configuration file.
	Path string
}

// New returns a Codec bound to the given config file path.
func New(path string) *Codec {
	return &Codec{Path: path}
}

// Parse reads and parses the configuration file. A missing file yields an
// empty slice; any other read failure is an error. Duplicate aliases are
// returned in file order without deduplication.
func (c *Codec) Parse() ([]model.HostEntry, error) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.HostEntry{}, nil
		}
		return nil, fmt.Errorf("could not read ssh config %s: %w", c.Path, err)
	}
	return ParseText(string(data)), nil
}

// ParseText parses configuration text into the committed entry sequence.
// Blank lines and comment lines are skipped. A `Host` directive closes the
// entry in progress, committing it only when it has both alias and
// hostname, and opens a new one. Any other directive inside an open entry
// populates a typed field when recognized and the Extra list otherwise.
func ParseText(text string) []model.HostEntry {
	var entries []model.HostEntry
	var current *model.HostEntry

	commit := func() {
		if current != nil && current.Complete() {
			entries = append(entries, *current)
		}
		current = nil
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		keyword, value := splitDirective(line)
		if strings.EqualFold(keyword, "host") {
			commit()
			current = &model.HostEntry{Alias: value}
			continue
		}
		if current == nil {
			// Directive outside any Host block; nothing to attach it to.
			continue
		}

		switch strings.ToLower(keyword) {
		case "hostname":
			current.Hostname = value
		case "port":
			current.Port = value
		case "user":
			current.User = value
		case "identityfile":
			current.IdentityFile = value
		case "preferredauthentications":
			current.PreferredAuthentications = value
		default:
			current.Extra = append(current.Extra, model.Directive{Key: keyword, Value: value})
		}
	}
	commit()

	return entries
}

// splitDirective splits a config line into its keyword and the remainder
// as the value.
func splitDirective(line string) (keyword, value string) {
	idx := strings.IndexFunc(line, func(r rune) bool { return r == ' ' || r == '\t' })
	if idx < 0 {
		return line, ""
	}
	return line[:idx], strings.TrimSpace(line[idx:])
}

// Serialize renders entries to configuration text. The output is
// deterministic: serializing equal entry sequences yields byte-identical
// text.
func Serialize(entries []model.HostEntry) string {
	var b strings.Builder
	b.WriteString(header)
	for _, e := range entries {
		b.WriteString("\n")
		b.WriteString("Host " + e.Alias + "\n")
		writeDirective(&b, "HostName", e.Hostname)
		writeDirective(&b, "Port", e.Port)
		writeDirective(&b, "User", e.User)
		writeDirective(&b, "IdentityFile", e.IdentityFile)
		writeDirective(&b, "PreferredAuthentications", e.PreferredAuthentications)
		for _, d := range e.Extra {
			writeDirective(&b, d.Key, d.Value)
		}
	}
	return b.String()
}

func writeDirective(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	b.WriteString("    " + key + " " + value + "\n")
}

// Write serializes entries and writes them atomically to the config path.
func (c *Codec) Write(entries []model.HostEntry) error {
	return fsops.WriteFileAtomic(c.Path, []byte(Serialize(entries)), 0600)
}

// Add appends a new host entry. It fails with ErrDuplicateHost when the
// alias is already present, leaving the file untouched.
func (c *Codec) Add(entry model.HostEntry) error {
	if !entry.Complete() {
		return fmt.Errorf("host entry needs both alias and hostname")
	}
	entries, err := c.Parse()
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Alias == entry.Alias {
			return fmt.Errorf("%w: %s", ErrDuplicateHost, entry.Alias)
		}
	}
	return c.Write(append(entries, entry))
}

// Update replaces the first entry carrying the alias. It fails with
// ErrHostNotFound when the alias is absent.
func (c *Codec) Update(entry model.HostEntry) error {
	if !entry.Complete() {
		return fmt.Errorf("host entry needs both alias and hostname")
	}
	entries, err := c.Parse()
	if err != nil {
		return err
	}
	for i, e := range entries {
		if e.Alias == entry.Alias {
			entries[i] = entry
			return c.Write(entries)
		}
	}
	return fmt.Errorf("%w: %s", ErrHostNotFound, entry.Alias)
}

// Delete removes every entry carrying the alias. It fails with
// ErrHostNotFound when the alias is absent.
func (c *Codec) Delete(alias string) error {
	entries, err := c.Parse()
	if err != nil {
		return err
	}
	kept := entries[:0]
	removed := 0
	for _, e := range entries {
		if e.Alias == alias {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	if removed == 0 {
		return fmt.Errorf("%w: %s", ErrHostNotFound, alias)
	}
	return c.Write(kept)
}

// ExpandHome resolves the `~` home directory shorthand in a path. Paths
// without the shorthand are returned unchanged.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
