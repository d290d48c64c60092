// Copyright (c) 2026 sshkeep team
// sshkeep - SSH directory manager
// This source code is licensed under the MIT license found in the LICENSE file.

package history

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *BunStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndEntries(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	actions := []string{"ADD_HOST", "GENERATE_KEY", "FIX_PERMISSIONS"}
	for _, action := range actions {
		if err := store.Record(ctx, action, "details for "+action); err != nil {
			t.Fatalf("Record(%s) failed: %v", action, err)
		}
	}

	entries, err := store.Entries(ctx, 0)
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	// Newest first; equal timestamps fall back to descending id.
	if entries[0].Action != "FIX_PERMISSIONS" || entries[2].Action != "ADD_HOST" {
		t.Fatalf("entries not newest-first: %v", entries)
	}
	for _, e := range entries {
		if e.Timestamp.IsZero() {
			t.Fatalf("entry %d has zero timestamp", e.ID)
		}
	}
}

func TestEntries_Limit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := store.Record(ctx, "CREATE_BACKUP", ""); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	entries, err := store.Entries(ctx, 2)
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("limit not applied, got %d entries", len(entries))
	}
}

func TestOpen_CreatesDatabase(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "fresh.db")
	store, err := Open(dsn)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	entries, err := store.Entries(context.Background(), 10)
	if err != nil {
		t.Fatalf("Entries on fresh store failed: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("fresh store should be empty, got %v", entries)
	}
}
