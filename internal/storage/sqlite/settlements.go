package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/storage"
)

const settlementColumns = `id, group_id, from_member_id, to_member_id, amount, currency, status,
	requires_step_up, verified, payment_method, notes, created_at, created_by,
	confirmed_at, confirmed_by, rejected_reason`

// CreateSettlement persists a new settlement record.
func (s *Store) CreateSettlement(ctx context.Context, settlement *models.SettlementRecord) error {
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}
	if settlement.Status == "" {
		settlement.Status = models.SettlementPending
	}

	var notes interface{}
	if settlement.Notes != "" {
		notes = settlement.Notes
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settlements (`+settlementColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, settlement.GroupID, settlement.FromMemberID, settlement.ToMemberID,
		settlement.Amount, settlement.Currency, settlement.Status,
		settlement.RequiresStepUpVerification, settlement.Verified,
		settlement.PaymentMethod, notes, settlement.CreatedAt, settlement.CreatedBy,
		settlement.ConfirmedAt, settlement.ConfirmedBy, settlement.RejectedReason,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}

	s.notifier.Broadcast(settlement.GroupID)
	return nil
}

// GetSettlement retrieves a settlement by ID.
func (s *Store) GetSettlement(ctx context.Context, settlementID string) (*models.SettlementRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE id = ?`,
		settlementID,
	)
	settlement, err := scanSettlement(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return settlement, nil
}

// ListConfirmedSettlements returns all confirmed settlements for a group.
func (s *Store) ListConfirmedSettlements(ctx context.Context, groupID string) ([]models.SettlementRecord, error) {
	return s.listSettlements(ctx, groupID, string(models.SettlementConfirmed))
}

// ListSettlements returns every settlement for a group, newest first.
func (s *Store) ListSettlements(ctx context.Context, groupID string) ([]models.SettlementRecord, error) {
	return s.listSettlements(ctx, groupID, "")
}

func (s *Store) listSettlements(ctx context.Context, groupID, status string) ([]models.SettlementRecord, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlements WHERE group_id = ?`
	args := []interface{}{groupID}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []models.SettlementRecord
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, *settlement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}
	return settlements, nil
}

// UpdateSettlementStatus applies a compare-and-set transition: the UPDATE is
// guarded on the expected prior status, so two devices racing to resolve the
// same pending settlement cannot both win. The loser sees zero rows
// affected and gets ErrStatusConflict after a re-read rules out ErrNotFound.
func (s *Store) UpdateSettlementStatus(ctx context.Context, settlementID string, from, to models.SettlementStatus, meta storage.TransitionMeta) (*models.SettlementRecord, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE settlements
		 SET status = ?, verified = ?, confirmed_at = ?, confirmed_by = ?, rejected_reason = ?
		 WHERE id = ? AND status = ?`,
		to, meta.Verified, meta.ResolvedAt, meta.ResolvedBy, meta.Reason,
		settlementID, from,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update settlement status: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		current, err := s.GetSettlement(ctx, settlementID)
		if err != nil {
			return nil, err // ErrNotFound or a real failure
		}
		return nil, fmt.Errorf("settlement %s is %s, expected %s: %w",
			settlementID, current.Status, from, storage.ErrStatusConflict)
	}

	settlement, err := s.GetSettlement(ctx, settlementID)
	if err != nil {
		return nil, err
	}

	s.notifier.Broadcast(settlement.GroupID)
	return settlement, nil
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSettlement(row scanner) (*models.SettlementRecord, error) {
	settlement := &models.SettlementRecord{}
	var notes sql.NullString

	err := row.Scan(&settlement.ID, &settlement.GroupID, &settlement.FromMemberID, &settlement.ToMemberID,
		&settlement.Amount, &settlement.Currency, &settlement.Status,
		&settlement.RequiresStepUpVerification, &settlement.Verified,
		&settlement.PaymentMethod, &notes, &settlement.CreatedAt, &settlement.CreatedBy,
		&settlement.ConfirmedAt, &settlement.ConfirmedBy, &settlement.RejectedReason)
	if err != nil {
		return nil, err
	}

	if notes.Valid {
		settlement.Notes = notes.String
	}
	return settlement, nil
}
