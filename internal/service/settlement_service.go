// Package service implements the settlement lifecycle manager and the
// orchestration entry points that pull record streams from the store and
// delegate to the pure ledger computations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/splitledger/splitledger/internal/events"
	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/storage"
	"github.com/splitledger/splitledger/pkg/apperror"
	"github.com/splitledger/splitledger/pkg/metrics"
)

// SettlementService manages the settlement lifecycle
// (pending → confirmed/rejected) and exposes balance/debt orchestration.
type SettlementService struct {
	store           storage.Store
	members         storage.Membership
	publisher       events.Publisher
	stepUpThreshold int64
}

// NewSettlementService creates the service. stepUpThreshold is the injected
// minor-unit amount at or above which confirmation demands step-up
// verification.
func NewSettlementService(store storage.Store, members storage.Membership, publisher events.Publisher, stepUpThreshold int64) *SettlementService {
	return &SettlementService{
		store:           store,
		members:         members,
		publisher:       publisher,
		stepUpThreshold: stepUpThreshold,
	}
}

// ProposeSettlementParams carries the propose inputs.
type ProposeSettlementParams struct {
	GroupID       string
	ActorID       string
	FromMemberID  string
	ToMemberID    string
	Amount        int64
	Currency      string
	PaymentMethod string
	Notes         string
}

// Propose validates and persists a new pending settlement. The
// RequiresStepUpVerification flag is computed here, once, from the
// configured threshold. It never changes afterward. A settlement in a
// currency other than the group's ledger currency is refused here; the
// fold rejects whole mixed-currency snapshots, so an off-currency record
// must never reach the store.
func (s *SettlementService) Propose(ctx context.Context, params ProposeSettlementParams) (*models.SettlementRecord, error) {
	if params.Amount <= 0 {
		return nil, apperror.Validation("settlement amount must be positive")
	}
	if params.FromMemberID == params.ToMemberID {
		return nil, apperror.Validation("a member cannot settle with themselves")
	}
	if params.Currency == "" {
		return nil, apperror.Validation("currency required")
	}

	for _, memberID := range []string{params.FromMemberID, params.ToMemberID} {
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

	settlement := &models.SettlementRecord{
		GroupID:                    params.GroupID,
		FromMemberID:               params.FromMemberID,
		ToMemberID:                 params.ToMemberID,
		Amount:                     params.Amount,
		Currency:                   params.Currency,
		Status:                     models.SettlementPending,
		RequiresStepUpVerification: params.Amount >= s.stepUpThreshold,
		PaymentMethod:              params.PaymentMethod,
		Notes:                      params.Notes,
		CreatedBy:                  params.ActorID,
	}

	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		return nil, apperror.ErrStore(err)
	}

	slog.Info("settlement proposed",
		"settlement_id", settlement.ID,
		"group_id", settlement.GroupID,
		"from", settlement.FromMemberID,
		"to", settlement.ToMemberID,
		"amount", settlement.Money(),
		"requires_step_up", settlement.RequiresStepUpVerification,
	)
	s.publisher.Publish(ctx, events.Event{
		Type:         events.SettlementProposed,
		GroupID:      settlement.GroupID,
		ActorID:      params.ActorID,
		SettlementID: settlement.ID,
		Amount:       settlement.Amount,
		Currency:     settlement.Currency,
		OccurredAt:   time.Now(),
	})
	return settlement, nil
}

// Confirm transitions a pending settlement to confirmed.
//
// The step-up gate runs first: a record flagged at proposal time refuses
// confirmation without verification, stays pending, and the caller gets a
// policy error to prompt with. Re-confirming an already-confirmed record is
// a no-op success; confirming a rejected record is a conflict. A
// compare-and-set loss means another device resolved the record; the
// re-read decides which of those two cases applies.
func (s *SettlementService) Confirm(ctx context.Context, settlementID, actorID string, verified bool) (*models.SettlementRecord, error) {
	settlement, err := s.getSettlement(ctx, settlementID)
	if err != nil {
		return nil, err
	}

	switch settlement.Status {
	case models.SettlementConfirmed:
		return settlement, nil // idempotent re-confirm
	case models.SettlementRejected:
		return nil, apperror.ErrTerminalState(settlementID, string(settlement.Status))
	}

	if settlement.RequiresStepUpVerification && !verified {
		metrics.StepUpRefusals.Inc()
		slog.Warn("confirmation refused pending step-up verification",
			"settlement_id", settlementID,
			"amount", settlement.Amount,
		)
		return nil, apperror.ErrStepUpRequired(settlementID)
	}

	meta := storage.TransitionMeta{
		ResolvedAt: time.Now().Unix(),
		ResolvedBy: actorID,
		Verified:   verified,
	}
	updated, err := s.store.UpdateSettlementStatus(ctx, settlementID, models.SettlementPending, models.SettlementConfirmed, meta)
	if err != nil {
		return s.resolveConflict(ctx, settlementID, models.SettlementConfirmed, err)
	}

	metrics.SettlementTransitions.WithLabelValues(string(models.SettlementConfirmed)).Inc()
	slog.Info("settlement confirmed",
		"settlement_id", updated.ID,
		"group_id", updated.GroupID,
		"confirmed_by", actorID,
		"verified", verified,
	)
	s.publisher.Publish(ctx, events.Event{
		Type:         events.SettlementConfirmed,
		GroupID:      updated.GroupID,
		ActorID:      actorID,
		SettlementID: updated.ID,
		Amount:       updated.Amount,
		Currency:     updated.Currency,
		OccurredAt:   time.Now(),
	})
	return updated, nil
}

// Reject transitions a pending settlement to rejected. Re-rejecting is a
// no-op success; rejecting a confirmed record is a conflict.
func (s *SettlementService) Reject(ctx context.Context, settlementID, actorID, reason string) (*models.SettlementRecord, error) {
	settlement, err := s.getSettlement(ctx, settlementID)
	if err != nil {
		return nil, err
	}

	switch settlement.Status {
	case models.SettlementRejected:
		return settlement, nil // idempotent re-reject
	case models.SettlementConfirmed:
		return nil, apperror.ErrTerminalState(settlementID, string(settlement.Status))
	}

	meta := storage.TransitionMeta{
		ResolvedAt: time.Now().Unix(),
		ResolvedBy: actorID,
		Reason:     reason,
	}
	updated, err := s.store.UpdateSettlementStatus(ctx, settlementID, models.SettlementPending, models.SettlementRejected, meta)
	if err != nil {
		return s.resolveConflict(ctx, settlementID, models.SettlementRejected, err)
	}

	metrics.SettlementTransitions.WithLabelValues(string(models.SettlementRejected)).Inc()
	slog.Info("settlement rejected",
		"settlement_id", updated.ID,
		"group_id", updated.GroupID,
		"rejected_by", actorID,
		"reason", reason,
	)
	s.publisher.Publish(ctx, events.Event{
		Type:         events.SettlementRejected,
		GroupID:      updated.GroupID,
		ActorID:      actorID,
		SettlementID: updated.ID,
		Amount:       updated.Amount,
		Currency:     updated.Currency,
		OccurredAt:   time.Now(),
	})
	return updated, nil
}

// resolveConflict handles a lost compare-and-set: re-read the record and
// re-evaluate. Landing in the state this caller wanted is a no-op success;
// landing in the opposite terminal state is a conflict the caller must see.
func (s *SettlementService) resolveConflict(ctx context.Context, settlementID string, wanted models.SettlementStatus, err error) (*models.SettlementRecord, error) {
	if !errors.Is(err, storage.ErrStatusConflict) {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperror.ErrNotFound("settlement", settlementID)
		}
		return nil, apperror.ErrStore(err)
	}

	metrics.StatusConflicts.Inc()
	current, getErr := s.getSettlement(ctx, settlementID)
	if getErr != nil {
		return nil, getErr
	}
	if current.Status == wanted {
		slog.Info("settlement already resolved by another device",
			"settlement_id", settlementID,
			"status", current.Status,
		)
		return current, nil
	}
	return nil, apperror.ErrConflict(err)
}

// GetSettlement returns one settlement record.
func (s *SettlementService) GetSettlement(ctx context.Context, settlementID string) (*models.SettlementRecord, error) {
	return s.getSettlement(ctx, settlementID)
}

// ListSettlements returns a group's settlement history, newest first.
func (s *SettlementService) ListSettlements(ctx context.Context, groupID string) ([]models.SettlementRecord, error) {
	settlements, err := s.store.ListSettlements(ctx, groupID)
	if err != nil {
		return nil, apperror.ErrStore(err)
	}
	return settlements, nil
}

// checkGroupCurrency refuses a write whose currency differs from the one the
// group's existing records use. A group with no records yet accepts any
// currency; the first write fixes it.
func (s *SettlementService) checkGroupCurrency(ctx context.Context, groupID, currency string) error {
	ledgerCurrency, err := s.groupCurrency(ctx, groupID)
	if err != nil {
		return err
	}
	if ledgerCurrency != "" && currency != ledgerCurrency {
		return apperror.Validation(fmt.Sprintf(
			"currency %s does not match the group's ledger currency %s", currency, ledgerCurrency))
	}
	return nil
}

// groupCurrency returns the currency the group's records use, or empty for a
// group with none. Pending settlements count: they may confirm later.
func (s *SettlementService) groupCurrency(ctx context.Context, groupID string) (string, error) {
	expenses, err := s.store.ListActiveExpenses(ctx, groupID)
	if err != nil {
		return "", apperror.ErrStore(err)
	}
	for i := range expenses {
		if expenses[i].Currency != "" {
			return expenses[i].Currency, nil
		}
	}

	settlements, err := s.store.ListSettlements(ctx, groupID)
	if err != nil {
		return "", apperror.ErrStore(err)
	}
	for i := range settlements {
		if settlements[i].Currency != "" {
			return settlements[i].Currency, nil
		}
	}
	return "", nil
}

func (s *SettlementService) getSettlement(ctx context.Context, settlementID string) (*models.SettlementRecord, error) {
	settlement, err := s.store.GetSettlement(ctx, settlementID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperror.ErrNotFound("settlement", settlementID)
		}
		return nil, apperror.ErrStore(err)
	}
	return settlement, nil
}
