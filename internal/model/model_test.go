// Copyright (c) 2026 sshkeep team
// sshkeep - SSH directory manager
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import "testing"

func TestHostEntryComplete(t *testing.T) {
	tests := []struct {
		name  string
		entry HostEntry
		want  bool
	}{
		{"full", HostEntry{Alias: "dev", Hostname: "dev.example.com"}, true},
		{"missing hostname", HostEntry{Alias: "dev"}, false},
		{"missing alias", HostEntry{Hostname: "dev.example.com"}, false},
		{"empty", HostEntry{}, false},
	}
	for _, tt := range tests {
		if got := tt.entry.Complete(); got != tt.want {
			t.Fatalf("%s: Complete() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestHostEntryString(t *testing.T) {
	e := HostEntry{Alias: "dev", Hostname: "dev.example.com"}
	if got := e.String(); got != "dev (dev.example.com)" {
		t.Fatalf("String() = %q", got)
	}
}

func TestKeyRecordString(t *testing.T) {
	k := KeyRecord{Name: "id_ed25519", Type: KeyTypeEd25519}
	if got := k.String(); got != "id_ed25519 (ed25519)" {
		t.Fatalf("String() = %q", got)
	}
}
