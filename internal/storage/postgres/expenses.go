package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/storage"
)

// CreateExpense persists a new expense and its splits.
func (s *Store) CreateExpense(ctx context.Context, expense *models.ExpenseRecord) error {
	if expense.ID == "" {
		expense.ID = newID()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.Status == "" {
		expense.Status = models.ExpenseActive
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO expenses (id, group_id, payer_id, total, currency, description, status, created_at, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		expense.ID, expense.GroupID, expense.PayerID, expense.Total, expense.Currency,
		expense.Description, expense.Status, expense.CreatedAt, expense.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}

	for member, owed := range expense.Splits {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO expense_splits (expense_id, member_id, owed) VALUES ($1, $2, $3)`,
			expense.ID, member, owed,
		)
		if err != nil {
			return fmt.Errorf("insert expense split: %w", err)
		}
	}

	s.notifier.Broadcast(expense.GroupID)
	return nil
}

// VoidExpense marks an active expense voided; already-voided is a no-op.
func (s *Store) VoidExpense(ctx context.Context, groupID, expenseID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE expenses SET status = $1 WHERE id = $2 AND group_id = $3 AND status = $4`,
		models.ExpenseVoided, expenseID, groupID, models.ExpenseActive,
	)
	if err != nil {
		return fmt.Errorf("void expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		err := s.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM expenses WHERE id = $1 AND group_id = $2)`,
			expenseID, groupID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check expense: %w", err)
		}
		if !exists {
			return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
		}
		return nil // already voided
	}

	s.notifier.Broadcast(groupID)
	return nil
}

// ListActiveExpenses returns all active expenses for a group with splits.
func (s *Store) ListActiveExpenses(ctx context.Context, groupID string) ([]models.ExpenseRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, group_id, payer_id, total, currency, description, status, created_at, created_by
		 FROM expenses WHERE group_id = $1 AND status = $2 ORDER BY created_at, id`,
		groupID, models.ExpenseActive,
	)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.ExpenseRecord
	for rows.Next() {
		var exp models.ExpenseRecord
		if err := rows.Scan(&exp.ID, &exp.GroupID, &exp.PayerID, &exp.Total, &exp.Currency,
			&exp.Description, &exp.Status, &exp.CreatedAt, &exp.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}

	for i := range expenses {
		splitRows, err := s.pool.Query(ctx,
			`SELECT member_id, owed FROM expense_splits WHERE expense_id = $1`,
			expenses[i].ID,
		)
		if err != nil {
			return nil, fmt.Errorf("list expense splits: %w", err)
		}

		splits := make(map[string]int64)
		for splitRows.Next() {
			var member string
			var owed int64
			if err := splitRows.Scan(&member, &owed); err != nil {
				splitRows.Close()
				return nil, fmt.Errorf("scan expense split: %w", err)
			}
			splits[member] = owed
		}
		splitRows.Close()
		if err := splitRows.Err(); err != nil {
			return nil, fmt.Errorf("iterate expense splits: %w", err)
		}
		expenses[i].Splits = splits
	}

	return expenses, nil
}
