// Package storage defines the persistence contracts for the ledger engine.
package storage

import (
	"context"
	"errors"

	"github.com/splitledger/splitledger/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("storage: record not found")

	// ErrStatusConflict is returned when a status transition's expected
	// prior status no longer matches the stored record: another writer
	// already resolved it. Callers should re-read and re-evaluate rather
	// than retrying the same write.
	ErrStatusConflict = errors.New("storage: settlement status already transitioned")
)

// TransitionMeta carries the resolution stamps written alongside a
// settlement status transition.
type TransitionMeta struct {
	// ResolvedAt is the Unix timestamp of the transition.
	ResolvedAt int64

	// ResolvedBy is the member applying the transition.
	ResolvedBy string

	// Verified records that step-up verification was presented (confirm only).
	Verified bool

	// Reason is an optional rejection explanation (reject only).
	Reason string
}

// Store defines the interface for ledger persistence.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
type Store interface {
	// CreateExpense persists a new expense record. ID and CreatedAt are
	// populated by the store when unset.
	CreateExpense(ctx context.Context, expense *models.ExpenseRecord) error

	// VoidExpense marks an active expense voided, excluding it from
	// future balance computations. Voiding a voided expense is a no-op.
	VoidExpense(ctx context.Context, groupID, expenseID string) error

	// ListActiveExpenses returns all active expenses for a group.
	ListActiveExpenses(ctx context.Context, groupID string) ([]models.ExpenseRecord, error)

	// CreateSettlement persists a new settlement record in its current
	// status. ID and CreatedAt are populated by the store when unset.
	CreateSettlement(ctx context.Context, settlement *models.SettlementRecord) error

	// GetSettlement retrieves a settlement by ID, or ErrNotFound.
	GetSettlement(ctx context.Context, settlementID string) (*models.SettlementRecord, error)

	// ListConfirmedSettlements returns all confirmed settlements for a group.
	ListConfirmedSettlements(ctx context.Context, groupID string) ([]models.SettlementRecord, error)

	// ListSettlements returns every settlement for a group, newest first.
	ListSettlements(ctx context.Context, groupID string) ([]models.SettlementRecord, error)

	// UpdateSettlementStatus applies a compare-and-set transition: the
	// write succeeds only if the stored status still equals from. Returns
	// the updated record, ErrNotFound if the settlement does not exist, or
	// ErrStatusConflict if the status already moved.
	UpdateSettlementStatus(ctx context.Context, settlementID string, from, to models.SettlementStatus, meta TransitionMeta) (*models.SettlementRecord, error)

	// Watch returns a channel that receives a signal after every write
	// affecting the group's ledger, plus a cancel func releasing the
	// subscription. Signals coalesce; receivers re-read the full snapshot.
	Watch(groupID string) (<-chan struct{}, func())

	// Close releases any resources held by the store.
	Close() error
}

// Membership is the read-only view of the external group-administration
// collaborator. The engine only ever checks membership; it never mutates it.
type Membership interface {
	// IsMember reports whether the member belongs to the group.
	IsMember(ctx context.Context, groupID, memberID string) (bool, error)

	// ListMembers returns the group's current member IDs.
	ListMembers(ctx context.Context, groupID string) ([]string, error)
}
