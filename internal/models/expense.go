package models

import "fmt"

// ExpenseStatus is the lifecycle state of an expense record.
type ExpenseStatus string

const (
	// ExpenseActive expenses participate in balance computation.
	ExpenseActive ExpenseStatus = "active"

	// ExpenseVoided expenses are kept for history but excluded from balances.
	ExpenseVoided ExpenseStatus = "voided"
)

// ExpenseRecord is a shared cost paid by one member on behalf of several.
// It is a read-only input to the ledger: edits happen by voiding and
// re-creating, never by mutating amounts in place.
type ExpenseRecord struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// PayerID is the member who paid the total up front.
	PayerID string

	// Total is the full amount paid, in minor units.
	Total int64

	// Currency is the ISO-4217-style code shared by Total and every split.
	Currency string

	// Splits maps each participating member to the share they owe, in minor
	// units. The payer usually appears here too; their share nets against
	// their credit during accumulation.
	Splits map[string]int64

	// Status is active or voided.
	Status ExpenseStatus

	// Description is an optional human-readable label ("Dinner", "Cab").
	Description string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64

	// CreatedBy is the member who recorded the expense.
	CreatedBy string
}

// Money returns the expense total as a currency-tagged amount.
func (e *ExpenseRecord) Money() Money {
	return Money{Amount: e.Total, Currency: e.Currency}
}

// SplitSum returns the sum of all split shares in minor units.
func (e *ExpenseRecord) SplitSum() int64 {
	var sum int64
	for _, owed := range e.Splits {
		sum += owed
	}
	return sum
}

// Validate checks the structural invariants of an expense record.
// The critical one: the splits must sum exactly to the total. A record that
// fails this is a data-integrity error and must never reach the accumulator.
func (e *ExpenseRecord) Validate() error {
	if e.PayerID == "" {
		return fmt.Errorf("expense %s: payer required", e.ID)
	}
	if e.Total <= 0 {
		return fmt.Errorf("expense %s: total must be positive, got %d", e.ID, e.Total)
	}
	if e.Currency == "" {
		return fmt.Errorf("expense %s: currency required", e.ID)
	}
	if len(e.Splits) == 0 {
		return fmt.Errorf("expense %s: at least one split required", e.ID)
	}
	for member, owed := range e.Splits {
		if member == "" {
			return fmt.Errorf("expense %s: split with empty member ID", e.ID)
		}
		if owed < 0 {
			return fmt.Errorf("expense %s: negative split %d for member %s", e.ID, owed, member)
		}
	}
	if sum := e.SplitSum(); sum != e.Total {
		return fmt.Errorf("expense %s: splits sum to %d, total is %d", e.ID, sum, e.Total)
	}
	return nil
}
