// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store provides local persistence for skilldeck state that the
// manager daemon does not track, currently pinned projects.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

var ErrClosed = errors.New("pin store closed")

// =============================================================================
// PIN STORE
// =============================================================================

// PinStore records which project paths the user has pinned. Pins are
// local to this machine; the daemon has no notion of them.
type PinStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// Open opens (creating if needed) the pin database at path.
func Open(path string) (*PinStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pin database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &PinStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *PinStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pins (
		path       TEXT PRIMARY KEY,
		pinned_at  INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database. Safe to call more than once.
func (s *PinStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Pin marks a project path as pinned. Pinning an already pinned path
// keeps the original pin time.
func (s *PinStore) Pin(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pins (path, pinned_at) VALUES (?, ?)
		 ON CONFLICT(path) DO NOTHING`,
		path, time.Now().Unix())
	return err
}

// Unpin removes a pin. Unpinning an unpinned path is a no-op.
func (s *PinStore) Unpin(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM pins WHERE path = ?`, path)
	return err
}

// Toggle flips the pin state of a path and reports the new state.
func (s *PinStore) Toggle(ctx context.Context, path string) (bool, error) {
	pinned, err := s.IsPinned(ctx, path)
	if err != nil {
		return false, err
	}
	if pinned {
		return false, s.Unpin(ctx, path)
	}
	return true, s.Pin(ctx, path)
}

// IsPinned reports whether a path is pinned.
func (s *PinStore) IsPinned(ctx context.Context, path string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, ErrClosed
	}
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pins WHERE path = ?`, path).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Pinned returns the set of pinned paths.
func (s *PinStore) Pinned(ctx context.Context) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx, `SELECT path FROM pins`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pinned := make(map[string]bool)
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		pinned[path] = true
	}
	return pinned, rows.Err()
}

// Prune removes pins whose paths no longer appear in the given project
// set. Called after a scan so stale pins do not accumulate.
func (s *PinStore) Prune(ctx context.Context, live map[string]bool) (int, error) {
	current, err := s.Pinned(ctx)
	if err != nil {
		return 0, err
	}
	removed := 0
	for path := range current {
		if !live[path] {
			if err := s.Unpin(ctx, path); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}
