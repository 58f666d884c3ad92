// Package events defines the structured activity events handed to the
// notification/activity-feed collaborator. Delivery itself is external; the
// engine only emits.
package events

import (
	"context"
	"log/slog"
	"time"
)

// Type identifies what happened.
type Type string

const (
	ExpenseAdded        Type = "expense_added"
	ExpenseVoided       Type = "expense_voided"
	SettlementProposed  Type = "settlement_proposed"
	SettlementConfirmed Type = "settlement_confirmed"
	SettlementRejected  Type = "settlement_rejected"
)

// Event is one ledger activity. Plain data, no behavior.
type Event struct {
	Type         Type
	GroupID      string
	ActorID      string
	ExpenseID    string
	SettlementID string
	Amount       int64
	Currency     string
	OccurredAt   time.Time
}

// Publisher is the collaborator contract for event delivery. Implementations
// must not block the calling operation; publishing failures are theirs to
// handle.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// LogPublisher writes events to the structured log. The default for
// single-binary runs without a notification pipeline.
type LogPublisher struct{}

// Publish logs the event.
func (LogPublisher) Publish(ctx context.Context, event Event) {
	slog.Info("ledger event",
		"type", event.Type,
		"group_id", event.GroupID,
		"actor_id", event.ActorID,
		"expense_id", event.ExpenseID,
		"settlement_id", event.SettlementID,
		"amount", event.Amount,
		"currency", event.Currency,
	)
}
