package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/splitledger/splitledger/internal/events"
	"github.com/splitledger/splitledger/internal/ledger"
	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/storage"
	"github.com/splitledger/splitledger/pkg/apperror"
	"github.com/splitledger/splitledger/pkg/metrics"
)

// AddExpenseParams carries the expense-creation inputs.
type AddExpenseParams struct {
	GroupID     string
	ActorID     string
	PayerID     string
	Total       int64
	Currency    string
	Splits      map[string]int64
	Description string
}

// AddExpense validates and persists a new active expense. The split-sum and
// single-currency invariants are enforced here, at the boundary, so broken
// records never enter the store.
func (s *SettlementService) AddExpense(ctx context.Context, params AddExpenseParams) (*models.ExpenseRecord, error) {
	expense := &models.ExpenseRecord{
		GroupID:     params.GroupID,
		PayerID:     params.PayerID,
		Total:       params.Total,
		Currency:    params.Currency,
		Splits:      params.Splits,
		Status:      models.ExpenseActive,
		Description: params.Description,
		CreatedBy:   params.ActorID,
	}
	if err := expense.Validate(); err != nil {
		if sum := expense.SplitSum(); expense.Total > 0 && len(expense.Splits) > 0 && sum != expense.Total {
			return nil, apperror.ErrSplitMismatch(expense.ID, sum, expense.Total)
		}
		return nil, apperror.Validation(err.Error())
	}

	ok, err := s.members.IsMember(ctx, params.GroupID, params.PayerID)
	if err != nil {
		return nil, apperror.ErrStore(err)
	}
	if !ok {
		return nil, apperror.ErrNotGroupMember(params.PayerID, params.GroupID)
	}
	for memberID := range params.Splits {
		ok, err := s.members.IsMember(ctx, params.GroupID, memberID)
		if err != nil {
			return nil, apperror.ErrStore(err)
		}
		if !ok {
			return nil, apperror.ErrNotGroupMember(memberID, params.GroupID)
		}
	}

	if err := s.checkGroupCurrency(ctx, params.GroupID, params.Currency); err != nil {
		return nil, err
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, apperror.ErrStore(err)
	}

	slog.Info("expense added",
		"expense_id", expense.ID,
		"group_id", expense.GroupID,
		"payer", expense.PayerID,
		"total", expense.Money(),
	)
	s.publisher.Publish(ctx, events.Event{
		Type:       events.ExpenseAdded,
		GroupID:    expense.GroupID,
		ActorID:    params.ActorID,
		ExpenseID:  expense.ID,
		Amount:     expense.Total,
		Currency:   expense.Currency,
		OccurredAt: time.Now(),
	})
	return expense, nil
}

// VoidExpense excludes an expense from future balance computation while
// keeping it in history.
func (s *SettlementService) VoidExpense(ctx context.Context, groupID, actorID, expenseID string) error {
	if err := s.store.VoidExpense(ctx, groupID, expenseID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperror.ErrNotFound("expense", expenseID)
		}
		return apperror.ErrStore(err)
	}

	slog.Info("expense voided", "expense_id", expenseID, "group_id", groupID, "voided_by", actorID)
	s.publisher.Publish(ctx, events.Event{
		Type:       events.ExpenseVoided,
		GroupID:    groupID,
		ActorID:    actorID,
		ExpenseID:  expenseID,
		OccurredAt: time.Now(),
	})
	return nil
}

// ListExpenses returns a group's active expenses.
func (s *SettlementService) ListExpenses(ctx context.Context, groupID string) ([]models.ExpenseRecord, error) {
	expenses, err := s.store.ListActiveExpenses(ctx, groupID)
	if err != nil {
		return nil, apperror.ErrStore(err)
	}
	return expenses, nil
}

// CurrentBalances pulls the group's record streams and folds them into a
// net-balance map. Integrity-broken records are skipped and logged, never
// allowed to corrupt the map.
func (s *SettlementService) CurrentBalances(ctx context.Context, groupID string) (models.BalanceMap, error) {
	expenses, err := s.store.ListActiveExpenses(ctx, groupID)
	if err != nil {
		return nil, apperror.ErrStore(err)
	}
	settlements, err := s.store.ListConfirmedSettlements(ctx, groupID)
	if err != nil {
		return nil, apperror.ErrStore(err)
	}

	balances, skipped, err := ledger.ComputeBalances(expenses, settlements)
	if err != nil {
		if errors.Is(err, ledger.ErrCurrencyMismatch) {
			return nil, apperror.ErrCurrencyMismatch(err)
		}
		return nil, apperror.ErrUnbalanced(err)
	}

	metrics.BalanceRecomputes.Inc()
	for _, record := range skipped {
		metrics.SkippedRecords.Inc()
		slog.Error("record excluded from balance computation",
			"group_id", groupID,
			"record_id", record.RecordID,
			"reason", record.Reason,
		)
	}
	return balances, nil
}

// SimplifiedDebts computes the suggested transfers that would clear the
// group's current balances.
func (s *SettlementService) SimplifiedDebts(ctx context.Context, groupID string) ([]models.SimplifiedDebt, error) {
	balances, err := s.CurrentBalances(ctx, groupID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	debts, err := ledger.SimplifyDebts(balances)
	if err != nil {
		return nil, apperror.ErrUnbalanced(err)
	}
	metrics.SimplifyDuration.Observe(time.Since(start).Seconds())
	return debts, nil
}
