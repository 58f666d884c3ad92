package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/splitledger/splitledger/internal/ledger"
	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/pkg/apperror"
)

// Snapshot is one consistent view of a group's ledger, produced after every
// change signal from the store.
type Snapshot struct {
	GroupID    string
	Balances   models.BalanceMap
	Debts      []models.SimplifiedDebt
	ComputedAt time.Time
}

// WatchBalances subscribes to the group's change stream and emits a fresh
// Snapshot after every store write, starting with the current state.
//
// Delivery is latest-wins: the output channel is buffered with capacity one
// and a stale undelivered snapshot is replaced rather than queued, so a slow
// consumer only ever sees the newest state. Recomputation is idempotent
// (the same store snapshot always folds to the same BalanceMap), so
// coalesced signals lose nothing. The subscription ends when ctx is done;
// the channel is closed on exit.
func (s *SettlementService) WatchBalances(ctx context.Context, groupID string) (<-chan Snapshot, error) {
	// Compute eagerly so subscribers always have a state before the first
	// change, and so a bad group surfaces as an error here, not in a log.
	first, err := s.snapshot(ctx, groupID)
	if err != nil {
		return nil, err
	}

	signals, cancel := s.store.Watch(groupID)
	out := make(chan Snapshot, 1)
	out <- first

	go func() {
		defer cancel()
		defer close(out)

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-signals:
				if !ok {
					return
				}
				snap, err := s.snapshot(ctx, groupID)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					slog.Error("balance recomputation failed",
						"group_id", groupID,
						"error", err,
					)
					continue
				}

				// Replace any undelivered snapshot: latest wins.
				select {
				case out <- snap:
				default:
					select {
					case <-out:
					default:
					}
					out <- snap
				}
			}
		}
	}()

	return out, nil
}

func (s *SettlementService) snapshot(ctx context.Context, groupID string) (Snapshot, error) {
	balances, err := s.CurrentBalances(ctx, groupID)
	if err != nil {
		return Snapshot{}, err
	}
	debts, err := ledger.SimplifyDebts(balances)
	if err != nil {
		return Snapshot{}, apperror.ErrUnbalanced(err)
	}
	return Snapshot{
		GroupID:    groupID,
		Balances:   balances,
		Debts:      debts,
		ComputedAt: time.Now(),
	}, nil
}
