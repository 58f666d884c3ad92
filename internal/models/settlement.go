package models

import "fmt"

// SettlementStatus is the lifecycle state of a settlement record.
type SettlementStatus string

const (
	// SettlementPending settlements have been proposed but not resolved.
	// They do not change balances.
	SettlementPending SettlementStatus = "pending"

	// SettlementConfirmed settlements have been acknowledged by the
	// receiving side and participate in balance computation. Terminal.
	SettlementConfirmed SettlementStatus = "confirmed"

	// SettlementRejected settlements were declined. Terminal, excluded
	// from balances.
	SettlementRejected SettlementStatus = "rejected"
)

// Terminal reports whether the status permits no further transitions.
func (s SettlementStatus) Terminal() bool {
	return s == SettlementConfirmed || s == SettlementRejected
}

// Valid reports whether the status is one of the known lifecycle states.
func (s SettlementStatus) Valid() bool {
	switch s {
	case SettlementPending, SettlementConfirmed, SettlementRejected:
		return true
	}
	return false
}

// SettlementRecord is a directed repayment from a debtor to a creditor.
//
// Lifecycle: created pending, then exactly one transition to confirmed or
// rejected. Terminal records are immutable; only confirmed records change
// balances.
type SettlementRecord struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to.
	GroupID string

	// FromMemberID is the debtor making the payment.
	FromMemberID string

	// ToMemberID is the creditor receiving the payment.
	ToMemberID string

	// Amount is the payment amount in minor units. Always positive.
	Amount int64

	// Currency is the ISO-4217-style code.
	Currency string

	// Status is pending, confirmed or rejected.
	Status SettlementStatus

	// RequiresStepUpVerification is computed once at proposal time:
	// true when Amount meets or exceeds the configured threshold.
	RequiresStepUpVerification bool

	// Verified records that step-up verification was presented at
	// confirmation time.
	Verified bool

	// PaymentMethod is an optional free-text channel hint ("upi", "cash").
	PaymentMethod string

	// Notes is an optional free-text description.
	Notes string

	// CreatedAt is the Unix timestamp when the settlement was proposed.
	CreatedAt int64

	// CreatedBy is the member who proposed the settlement.
	CreatedBy string

	// ConfirmedAt is the Unix timestamp of resolution; zero while pending.
	ConfirmedAt int64

	// ConfirmedBy is the member who resolved the settlement.
	ConfirmedBy string

	// RejectedReason is an optional explanation set on rejection.
	RejectedReason string
}

// Money returns the settlement amount as a currency-tagged amount.
func (s *SettlementRecord) Money() Money {
	return Money{Amount: s.Amount, Currency: s.Currency}
}

// Validate checks the structural invariants of a settlement record.
func (s *SettlementRecord) Validate() error {
	if s.FromMemberID == "" || s.ToMemberID == "" {
		return fmt.Errorf("settlement %s: both members required", s.ID)
	}
	if s.FromMemberID == s.ToMemberID {
		return fmt.Errorf("settlement %s: member %s cannot settle with themselves", s.ID, s.FromMemberID)
	}
	if s.Amount <= 0 {
		return fmt.Errorf("settlement %s: amount must be positive, got %d", s.ID, s.Amount)
	}
	if s.Currency == "" {
		return fmt.Errorf("settlement %s: currency required", s.ID)
	}
	if !s.Status.Valid() {
		return fmt.Errorf("settlement %s: unknown status %q", s.ID, s.Status)
	}
	return nil
}

// CanTransition reports whether the record may move to the given status.
// Only pending records transition; everything else is frozen.
func (s *SettlementRecord) CanTransition(to SettlementStatus) error {
	if !to.Terminal() {
		return fmt.Errorf("settlement %s: cannot transition to non-terminal status %q", s.ID, to)
	}
	if s.Status.Terminal() {
		return fmt.Errorf("settlement %s: already %s", s.ID, s.Status)
	}
	return nil
}
