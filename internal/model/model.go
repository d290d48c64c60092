// Copyright (c) 2026 sshkeep team
// sshkeep - SSH directory manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package model defines the plain data structures shared by the sshkeep
// components: host configuration entries, discovered keys, permission
// records and backup metadata. Types here carry no behavior beyond small
// derived accessors; all lifecycle rules live in the packages that
// produce them.
package model

import (
	"fmt"
	"time"
)

// Directive is a single extra configuration directive that sshkeep does not
// model explicitly. Directives keep their first-seen order so a rewrite of
// the config file round-trips them.
type Directive struct {
	Key   string
	Value string
}

// HostEntry represents one `Host` block of the SSH configuration file.
type HostEntry struct {
	Alias                    string
	Hostname                 string
	Port                     string
	User                     string
	IdentityFile             string
	PreferredAuthentications string
	// Extra holds directives not modeled above, in file order.
	Extra []Directive
}

// Complete reports whether the entry carries both alias and hostname.
// Incomplete entries are never surfaced to callers.
func (h HostEntry) Complete() bool {
	return h.Alias != "" && h.Hostname != ""
}

// String returns the `alias (hostname)` representation.
func (h HostEntry) String() string {
	return fmt.Sprintf("%s (%s)", h.Alias, h.Hostname)
}

// KeyType is the closed set of key algorithms sshkeep recognizes.
type KeyType string

const (
	KeyTypeEd25519 KeyType = "ed25519"
	KeyTypeRSA     KeyType = "rsa"
	KeyTypeECDSA   KeyType = "ecdsa"
	KeyTypeDSA     KeyType = "dsa"
)

// KeyRecord describes one discovered private key and its derived state.
// Records are recomputed in full on every inventory call and never
// persisted.
type KeyRecord struct {
	Name        string
	Type        KeyType
	Fingerprint string
	Bits        int
	Comment     string
	// HasPassphrase is a header heuristic, not proof of decryptability.
	HasPassphrase bool
	Size          int64
	CreatedAt     time.Time
	ModifiedAt    time.Time
	// AssociatedHosts lists the aliases whose IdentityFile resolves to
	// this key, recomputed from the current config file on every call.
	AssociatedHosts []string
	IsMapped        bool
}

// String returns the `name (type)` representation.
func (k KeyRecord) String() string {
	return fmt.Sprintf("%s (%s)", k.Name, k.Type)
}

// FileType classifies a path under the SSH directory for permission policy.
type FileType string

const (
	FileTypeDirectory  FileType = "directory"
	FileTypePrivateKey FileType = "private-key"
	FileTypePublicKey  FileType = "public-key"
	FileTypeConfig     FileType = "config"
	FileTypeOther      FileType = "other"
)

// PermissionRecord is the result of checking one path against the policy
// table. Current and Expected are human-readable summaries, not structured
// ACLs.
type PermissionRecord struct {
	Path      string
	FileType  FileType
	Current   string
	Expected  string
	IsCorrect bool
}

// BackupMetadata is the manifest embedded in every backup archive. It is
// written once at create time and immutable thereafter; its Files list is
// authoritative for what the backup tracked.
type BackupMetadata struct {
	CreatedAt    time.Time `json:"created_at"`
	Username     string    `json:"username"`
	ComputerName string    `json:"computer_name"`
	AppVersion   string    `json:"app_version"`
	Files        []string  `json:"files"`
	FileCount    int       `json:"file_count"`
}

// BackupInfo pairs an archive on disk with its metadata and size.
type BackupInfo struct {
	Path     string
	Metadata BackupMetadata
	Size     int64
}
