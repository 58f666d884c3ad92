// Package sqlite provides a SQLite-backed implementation of storage.Store
// for single-node deployments.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/splitledger/splitledger/internal/storage"
)

// Ensure Store implements the storage contracts.
var (
	_ storage.Store      = (*Store)(nil)
	_ storage.Membership = (*Store)(nil)
)

// Store implements storage.Store and storage.Membership using SQLite.
// Change notifications are in-process: this backend is for deployments
// where all writers share one binary.
type Store struct {
	db       *sql.DB
	notifier *storage.Notifier
}

// New creates a new Store with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db, notifier: storage.NewNotifier()}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Watch subscribes to in-process change signals for a group.
func (s *Store) Watch(groupID string) (<-chan struct{}, func()) {
	return s.notifier.Watch(groupID)
}

// AddGroupMembers inserts members into the group's membership read model.
// Membership administration itself is external; this is the ingestion point
// for synced membership data (and test fixtures).
func (s *Store) AddGroupMembers(ctx context.Context, groupID string, members []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, member := range members {
		_, err = tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO group_members (group_id, member_id) VALUES (?, ?)",
			groupID, member,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// IsMember reports whether the member belongs to the group.
func (s *Store) IsMember(ctx context.Context, groupID, memberID string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM group_members WHERE group_id = ? AND member_id = ?",
		groupID, memberID,
	).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return true, nil
}

// ListMembers returns the group's member IDs in lexicographic order.
func (s *Store) ListMembers(ctx context.Context, groupID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT member_id FROM group_members WHERE group_id = ? ORDER BY member_id",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

// SetPinHash stores a member's step-up verification PIN hash, replacing any
// previous one.
func (s *Store) SetPinHash(ctx context.Context, memberID string, hash []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO member_pins (member_id, pin_hash) VALUES (?, ?)
		 ON CONFLICT(member_id) DO UPDATE SET pin_hash = excluded.pin_hash`,
		memberID, hash,
	)
	if err != nil {
		return fmt.Errorf("failed to set pin hash: %w", err)
	}
	return nil
}

// GetPinHash returns a member's step-up PIN hash, or storage.ErrNotFound.
func (s *Store) GetPinHash(ctx context.Context, memberID string) ([]byte, error) {
	var hash []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT pin_hash FROM member_pins WHERE member_id = ?",
		memberID,
	).Scan(&hash)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pin hash: %w", err)
	}
	return hash, nil
}
