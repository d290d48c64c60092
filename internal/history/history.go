// Copyright (c) 2026 sshkeep team
// sshkeep - SSH directory manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package history records what sshkeep did to the SSH directory: host
// mutations, key generation and deletion, permission fixes, backup
// creation and restores. The store is a local SQLite database accessed
// through Bun; recording failures are logged by callers, never fatal.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Entry is one recorded operation.
type Entry struct {
	bun.BaseModel `bun:"table:history"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Timestamp time.Time `bun:"timestamp,notnull"`
	Action    string    `bun:"action,notnull"`
	Details   string    `bun:"details"`
}

// Store is the operation history interface.
type Store interface {
	Record(ctx context.Context, action, details string) error
	Entries(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}

// BunStore is the SQLite-backed Store.
type BunStore struct {
	db  *sql.DB
	bun *bun.DB
}

// Open opens (and creates, if needed) the history database at dsn.
func Open(dsn string) (*BunStore, error) {
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open history database: %w", err)
	}
	bdb := bun.NewDB(sqldb, sqlitedialect.New())

	if _, err := bdb.NewCreateTable().Model((*Entry)(nil)).IfNotExists().Exec(context.Background()); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("could not create history table: %w", err)
	}
	return &BunStore{db: sqldb, bun: bdb}, nil
}

// Record appends one history entry.
func (s *BunStore) Record(ctx context.Context, action, details string) error {
	entry := &Entry{Timestamp: time.Now().UTC(), Action: action, Details: details}
	if _, err := s.bun.NewInsert().Model(entry).Exec(ctx); err != nil {
		return fmt.Errorf("could not record history entry: %w", err)
	}
	return nil
}

// Entries returns the most recent entries, newest first. A non-positive
// limit returns everything.
func (s *BunStore) Entries(ctx context.Context, limit int) ([]Entry, error) {
	var entries []Entry
	q := s.bun.NewSelect().Model(&entries).Order("timestamp DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("could not read history: %w", err)
	}
	return entries, nil
}

// Close releases the database handle.
func (s *BunStore) Close() error {
	return s.db.Close()
}
