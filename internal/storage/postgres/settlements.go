package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/storage"
)

const settlementColumns = `id, group_id, from_member_id, to_member_id, amount, currency, status,
	requires_step_up, verified, payment_method, notes, created_at, created_by,
	confirmed_at, confirmed_by, rejected_reason`

// CreateSettlement persists a new settlement record.
func (s *Store) CreateSettlement(ctx context.Context, settlement *models.SettlementRecord) error {
	if settlement.ID == "" {
		settlement.ID = newID()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}
	if settlement.Status == "" {
		settlement.Status = models.SettlementPending
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO settlements (`+settlementColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		settlement.ID, settlement.GroupID, settlement.FromMemberID, settlement.ToMemberID,
		settlement.Amount, settlement.Currency, settlement.Status,
		settlement.RequiresStepUpVerification, settlement.Verified,
		settlement.PaymentMethod, settlement.Notes, settlement.CreatedAt, settlement.CreatedBy,
		settlement.ConfirmedAt, settlement.ConfirmedBy, settlement.RejectedReason,
	)
	if err != nil {
		return fmt.Errorf("insert settlement: %w", err)
	}

	s.notifier.Broadcast(settlement.GroupID)
	return nil
}

// GetSettlement retrieves a settlement by ID.
func (s *Store) GetSettlement(ctx context.Context, settlementID string) (*models.SettlementRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE id = $1`,
		settlementID,
	)
	settlement, err := scanSettlement(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get settlement: %w", err)
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
	query := `SELECT ` + settlementColumns + ` FROM settlements WHERE group_id = $1`
	args := []any{groupID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []models.SettlementRecord
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan settlement: %w", err)
		}
		settlements = append(settlements, *settlement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settlements: %w", err)
	}
	return settlements, nil
}

// UpdateSettlementStatus applies the status transition as a conditional
// write guarded on the expected prior status.
func (s *Store) UpdateSettlementStatus(ctx context.Context, settlementID string, from, to models.SettlementStatus, meta storage.TransitionMeta) (*models.SettlementRecord, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE settlements
		 SET status = $1, verified = $2, confirmed_at = $3, confirmed_by = $4, rejected_reason = $5
		 WHERE id = $6 AND status = $7`,
		to, meta.Verified, meta.ResolvedAt, meta.ResolvedBy, meta.Reason,
		settlementID, from,
	)
	if err != nil {
		return nil, fmt.Errorf("update settlement status: %w", err)
	}
	if tag.RowsAffected() == 0 {
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

func scanSettlement(row pgx.Row) (*models.SettlementRecord, error) {
	settlement := &models.SettlementRecord{}
	err := row.Scan(&settlement.ID, &settlement.GroupID, &settlement.FromMemberID, &settlement.ToMemberID,
		&settlement.Amount, &settlement.Currency, &settlement.Status,
		&settlement.RequiresStepUpVerification, &settlement.Verified,
		&settlement.PaymentMethod, &settlement.Notes, &settlement.CreatedAt, &settlement.CreatedBy,
		&settlement.ConfirmedAt, &settlement.ConfirmedBy, &settlement.RejectedReason)
	if err != nil {
		return nil, err
	}
	return settlement, nil
}
