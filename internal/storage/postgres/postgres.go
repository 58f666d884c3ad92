// Package postgres provides a PostgreSQL-backed implementation of
// storage.Store for hosted deployments.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/splitledger/splitledger/internal/storage"
)

// Pool is the subset of pgxpool.Pool the store needs. pgxmock satisfies it
// too, which keeps the repo tests hermetic.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// Ensure Store implements the storage contracts.
var (
	_ storage.Store      = (*Store)(nil)
	_ storage.Membership = (*Store)(nil)
)

// NewPool creates a PostgreSQL connection pool and verifies connectivity.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return pool, nil
}

// Store implements storage.Store and storage.Membership on PostgreSQL.
// Change notifications are in-process, fed by the writer side: multi-writer
// deployments front this with their own fan-out.
type Store struct {
	pool     Pool
	notifier *storage.Notifier
}

// New creates a Store over an established pool.
func New(pool Pool) *Store {
	return &Store{pool: pool, notifier: storage.NewNotifier()}
}

// Close releases the underlying pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Watch subscribes to in-process change signals for a group.
func (s *Store) Watch(groupID string) (<-chan struct{}, func()) {
	return s.notifier.Watch(groupID)
}

// AddGroupMembers inserts members into the membership read model.
func (s *Store) AddGroupMembers(ctx context.Context, groupID string, members []string) error {
	for _, member := range members {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO group_members (group_id, member_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			groupID, member,
		)
		if err != nil {
			return fmt.Errorf("insert group member: %w", err)
		}
	}
	return nil
}

// IsMember reports whether the member belongs to the group.
func (s *Store) IsMember(ctx context.Context, groupID, memberID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = $1 AND member_id = $2)`,
		groupID, memberID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return exists, nil
}

// ListMembers returns the group's member IDs in lexicographic order.
func (s *Store) ListMembers(ctx context.Context, groupID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT member_id FROM group_members WHERE group_id = $1 ORDER BY member_id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	return members, nil
}

// SetPinHash stores a member's step-up verification PIN hash.
func (s *Store) SetPinHash(ctx context.Context, memberID string, hash []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO member_pins (member_id, pin_hash) VALUES ($1, $2)
		 ON CONFLICT (member_id) DO UPDATE SET pin_hash = EXCLUDED.pin_hash`,
		memberID, hash,
	)
	if err != nil {
		return fmt.Errorf("set pin hash: %w", err)
	}
	return nil
}

// GetPinHash returns a member's step-up PIN hash, or storage.ErrNotFound.
func (s *Store) GetPinHash(ctx context.Context, memberID string) ([]byte, error) {
	var hash []byte
	err := s.pool.QueryRow(ctx,
		`SELECT pin_hash FROM member_pins WHERE member_id = $1`,
		memberID,
	).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get pin hash: %w", err)
	}
	return hash, nil
}

// newID returns a fresh UUID string; split out so tests can pin IDs.
func newID() string {
	return uuid.New().String()
}
