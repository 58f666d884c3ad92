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

// CreateExpense persists a new expense and its splits in one transaction.
func (s *Store) CreateExpense(ctx context.Context, expense *models.ExpenseRecord) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.Status == "" {
		expense.Status = models.ExpenseActive
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, group_id, payer_id, total, currency, description, status, created_at, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.GroupID, expense.PayerID, expense.Total, expense.Currency,
		expense.Description, expense.Status, expense.CreatedAt, expense.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for member, owed := range expense.Splits {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_splits (expense_id, member_id, owed) VALUES (?, ?, ?)",
			expense.ID, member, owed,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.notifier.Broadcast(expense.GroupID)
	return nil
}

// VoidExpense marks an active expense voided. Voiding an already-voided
// expense is a no-op; a missing expense is storage.ErrNotFound.
func (s *Store) VoidExpense(ctx context.Context, groupID, expenseID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE expenses SET status = ? WHERE id = ? AND group_id = ? AND status = ?",
		models.ExpenseVoided, expenseID, groupID, models.ExpenseActive,
	)
	if err != nil {
		return fmt.Errorf("failed to void expense: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		// Either missing or already voided; re-read to tell the two apart.
		var status string
		err := s.db.QueryRowContext(ctx,
			"SELECT status FROM expenses WHERE id = ? AND group_id = ?",
			expenseID, groupID,
		).Scan(&status)
		if err == sql.ErrNoRows {
			return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to check expense status: %w", err)
		}
		return nil // already voided
	}

	s.notifier.Broadcast(groupID)
	return nil
}

// ListActiveExpenses returns all active expenses for a group with their
// splits, oldest first.
func (s *Store) ListActiveExpenses(ctx context.Context, groupID string) ([]models.ExpenseRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, payer_id, total, currency, description, status, created_at, created_by
		 FROM expenses WHERE group_id = ? AND status = ? ORDER BY created_at, id`,
		groupID, models.ExpenseActive,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.ExpenseRecord
	for rows.Next() {
		var exp models.ExpenseRecord
		if err := rows.Scan(&exp.ID, &exp.GroupID, &exp.PayerID, &exp.Total, &exp.Currency,
			&exp.Description, &exp.Status, &exp.CreatedAt, &exp.CreatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for i := range expenses {
		splits, err := s.loadSplits(ctx, expenses[i].ID)
		if err != nil {
			return nil, err
		}
		expenses[i].Splits = splits
	}

	return expenses, nil
}

// loadSplits fetches the split map for one expense.
func (s *Store) loadSplits(ctx context.Context, expenseID string) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT member_id, owed FROM expense_splits WHERE expense_id = ?",
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense splits: %w", err)
	}
	defer rows.Close()

	splits := make(map[string]int64)
	for rows.Next() {
		var member string
		var owed int64
		if err := rows.Scan(&member, &owed); err != nil {
			return nil, fmt.Errorf("failed to scan expense split: %w", err)
		}
		splits[member] = owed
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense splits: %w", err)
	}
	return splits, nil
}
