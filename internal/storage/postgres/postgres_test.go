package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/storage"
)

var settlementCols = []string{
	"id", "group_id", "from_member_id", "to_member_id", "amount", "currency", "status",
	"requires_step_up", "verified", "payment_method", "notes", "created_at", "created_by",
	"confirmed_at", "confirmed_by", "rejected_reason",
}

func settlementRow(mock pgxmock.PgxPoolIface, id string, status models.SettlementStatus) *pgxmock.Rows {
	return mock.NewRows(settlementCols).AddRow(
		id, "grp-1", "bob", "alice", int64(100), "INR", string(status),
		false, false, "", "", int64(1700000000), "bob",
		int64(0), "", "",
	)
}

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool() error = %v", err)
	}
	t.Cleanup(mock.Close)
	return New(mock), mock
}

func TestCreateSettlementBackfills(t *testing.T) {
	ctx := context.Background()
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO settlements").
		WithArgs(pgxmock.AnyArg(), "grp-1", "bob", "alice", int64(100), "INR", models.SettlementPending,
			false, false, "", "", pgxmock.AnyArg(), "",
			int64(0), "", "").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	st := &models.SettlementRecord{
		GroupID:      "grp-1",
		FromMemberID: "bob",
		ToMemberID:   "alice",
		Amount:       100,
		Currency:     "INR",
	}
	if err := store.CreateSettlement(ctx, st); err != nil {
		t.Fatalf("CreateSettlement() error = %v", err)
	}
	if st.ID == "" || st.CreatedAt == 0 {
		t.Error("CreateSettlement() did not backfill ID/CreatedAt")
	}
	if st.Status != models.SettlementPending {
		t.Errorf("Status = %s, want pending", st.Status)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateSettlementStatusConfirms(t *testing.T) {
	ctx := context.Background()
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE settlements").
		WithArgs(models.SettlementConfirmed, true, int64(1700000100), "alice", "",
			"set-1", models.SettlementPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery("SELECT (.+) FROM settlements WHERE id").
		WithArgs("set-1").
		WillReturnRows(settlementRow(mock, "set-1", models.SettlementConfirmed))

	meta := storage.TransitionMeta{ResolvedAt: 1700000100, ResolvedBy: "alice", Verified: true}
	updated, err := store.UpdateSettlementStatus(ctx, "set-1", models.SettlementPending, models.SettlementConfirmed, meta)
	if err != nil {
		t.Fatalf("UpdateSettlementStatus() error = %v", err)
	}
	if updated.Status != models.SettlementConfirmed {
		t.Errorf("Status = %s, want confirmed", updated.Status)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateSettlementStatusConflict(t *testing.T) {
	ctx := context.Background()
	store, mock := newMockStore(t)

	// Zero rows affected: the re-read finds the record already rejected.
	mock.ExpectExec("UPDATE settlements").
		WithArgs(models.SettlementConfirmed, false, int64(1700000100), "alice", "",
			"set-1", models.SettlementPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT (.+) FROM settlements WHERE id").
		WithArgs("set-1").
		WillReturnRows(settlementRow(mock, "set-1", models.SettlementRejected))

	meta := storage.TransitionMeta{ResolvedAt: 1700000100, ResolvedBy: "alice"}
	_, err := store.UpdateSettlementStatus(ctx, "set-1", models.SettlementPending, models.SettlementConfirmed, meta)
	if !errors.Is(err, storage.ErrStatusConflict) {
		t.Errorf("UpdateSettlementStatus() error = %v, want ErrStatusConflict", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateSettlementStatusNotFound(t *testing.T) {
	ctx := context.Background()
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE settlements").
		WithArgs(models.SettlementConfirmed, false, int64(1700000100), "alice", "",
			"missing", models.SettlementPending).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT (.+) FROM settlements WHERE id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	meta := storage.TransitionMeta{ResolvedAt: 1700000100, ResolvedBy: "alice"}
	_, err := store.UpdateSettlementStatus(ctx, "missing", models.SettlementPending, models.SettlementConfirmed, meta)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UpdateSettlementStatus() error = %v, want ErrNotFound", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetSettlementNotFound(t *testing.T) {
	ctx := context.Background()
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT (.+) FROM settlements WHERE id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := store.GetSettlement(ctx, "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetSettlement() error = %v, want ErrNotFound", err)
	}
}

func TestIsMember(t *testing.T) {
	ctx := context.Background()
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("grp-1", "alice").
		WillReturnRows(mock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := store.IsMember(ctx, "grp-1", "alice")
	if err != nil {
		t.Fatalf("IsMember() error = %v", err)
	}
	if !ok {
		t.Error("IsMember() = false, want true")
	}
}

func TestGetPinHashNotFound(t *testing.T) {
	ctx := context.Background()
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT pin_hash FROM member_pins").
		WithArgs("alice").
		WillReturnError(pgx.ErrNoRows)

	_, err := store.GetPinHash(ctx, "alice")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetPinHash() error = %v, want ErrNotFound", err)
	}
}
