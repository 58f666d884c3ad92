// Package ledger holds the pure computation core: the balance fold and the
// debt simplifier. Nothing in this package performs I/O, touches shared
// state, or knows about storage. Both entry points are safe to call
// concurrently over different snapshots and are idempotent per snapshot.
package ledger

import (
	"errors"
	"fmt"

	"github.com/splitledger/splitledger/internal/models"
)

// ErrCurrencyMismatch is returned when a snapshot mixes currencies.
// The engine nets within a single currency only; conversion is out of scope.
var ErrCurrencyMismatch = errors.New("ledger: snapshot mixes currencies")

// SkippedRecord identifies an input record excluded from a fold because it
// violated a data-integrity invariant. The computation continues over the
// healthy records; callers decide whether to alert or abort.
type SkippedRecord struct {
	// RecordID is the offending expense or settlement ID.
	RecordID string

	// Reason describes the violated invariant.
	Reason string
}

// ComputeBalances folds active expenses and confirmed settlements into a
// per-member net-balance map.
//
// For each active expense the payer is credited the total and every split
// member is debited their share; a payer who is also a split participant
// nets automatically. For each confirmed settlement the debtor is credited
// (their debt shrinks) and the creditor debited (their receivable shrinks).
// Voided expenses and pending/rejected settlements are ignored.
//
// Addition over integers commutes, so iteration order never affects the
// result. The returned map always sums to zero: every credit has an equal
// debit within the same record.
//
// An expense whose splits do not sum to its total is skipped and reported
// rather than corrupting the map. Mixing currencies across the snapshot is
// an input-validation error and fails the whole fold.
func ComputeBalances(expenses []models.ExpenseRecord, settlements []models.SettlementRecord) (models.BalanceMap, []SkippedRecord, error) {
	if err := checkSingleCurrency(expenses, settlements); err != nil {
		return nil, nil, err
	}

	balances := make(models.BalanceMap)
	var skipped []SkippedRecord

	for i := range expenses {
		exp := &expenses[i]
		if exp.Status != models.ExpenseActive {
			continue
		}
		if sum := exp.SplitSum(); sum != exp.Total {
			skipped = append(skipped, SkippedRecord{
				RecordID: exp.ID,
				Reason:   fmt.Sprintf("splits sum to %d, total is %d", sum, exp.Total),
			})
			continue
		}

		balances[exp.PayerID] += exp.Total
		for member, owed := range exp.Splits {
			balances[member] -= owed
		}
	}

	for i := range settlements {
		st := &settlements[i]
		if st.Status != models.SettlementConfirmed {
			continue
		}
		if st.Amount <= 0 {
			skipped = append(skipped, SkippedRecord{
				RecordID: st.ID,
				Reason:   fmt.Sprintf("non-positive settlement amount %d", st.Amount),
			})
			continue
		}

		// The debtor paid: their debt shrinks. The creditor was paid:
		// their receivable shrinks by the same amount.
		balances[st.FromMemberID] += st.Amount
		balances[st.ToMemberID] -= st.Amount
	}

	return balances, skipped, nil
}

// checkSingleCurrency verifies every record in the snapshot shares one
// currency code. The first non-empty code seen sets the expectation.
func checkSingleCurrency(expenses []models.ExpenseRecord, settlements []models.SettlementRecord) error {
	currency := ""
	check := func(recordID, code string) error {
		if code == "" {
			return nil
		}
		if currency == "" {
			currency = code
			return nil
		}
		if code != currency {
			return fmt.Errorf("%w: record %s has %s, expected %s", ErrCurrencyMismatch, recordID, code, currency)
		}
		return nil
	}

	for i := range expenses {
		if err := check(expenses[i].ID, expenses[i].Currency); err != nil {
			return err
		}
	}
	for i := range settlements {
		if err := check(settlements[i].ID, settlements[i].Currency); err != nil {
			return err
		}
	}
	return nil
}
