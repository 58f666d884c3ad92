package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/splitledger/splitledger/internal/events"
	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/storage"
	"github.com/splitledger/splitledger/pkg/apperror"
)

// fakeStore is an in-memory Store and Membership used by the service tests.
// A non-empty raceTo makes the next UpdateSettlementStatus behave as if
// another writer resolved the record to that status first: the stored record
// flips and the caller gets ErrStatusConflict.
type fakeStore struct {
	mu          sync.Mutex
	expenses    map[string]*models.ExpenseRecord
	settlements map[string]*models.SettlementRecord
	members     map[string]map[string]bool
	notifier    *storage.Notifier
	nextID      int
	raceTo      models.SettlementStatus
}

var _ storage.Store = (*fakeStore)(nil)
var _ storage.Membership = (*fakeStore)(nil)

func newFakeStore(groupID string, memberIDs ...string) *fakeStore {
	members := map[string]map[string]bool{groupID: {}}
	for _, id := range memberIDs {
		members[groupID][id] = true
	}
	return &fakeStore{
		expenses:    make(map[string]*models.ExpenseRecord),
		settlements: make(map[string]*models.SettlementRecord),
		members:     members,
		notifier:    storage.NewNotifier(),
	}
}

func (f *fakeStore) newID(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeStore) CreateExpense(ctx context.Context, expense *models.ExpenseRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if expense.ID == "" {
		expense.ID = f.newID("exp")
	}
	cp := *expense
	f.expenses[expense.ID] = &cp
	f.notifier.Broadcast(expense.GroupID)
	return nil
}

func (f *fakeStore) VoidExpense(ctx context.Context, groupID, expenseID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	exp, ok := f.expenses[expenseID]
	if !ok || exp.GroupID != groupID {
		return storage.ErrNotFound
	}
	exp.Status = models.ExpenseVoided
	f.notifier.Broadcast(groupID)
	return nil
}

func (f *fakeStore) ListActiveExpenses(ctx context.Context, groupID string) ([]models.ExpenseRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ExpenseRecord
	for _, exp := range f.expenses {
		if exp.GroupID == groupID && exp.Status == models.ExpenseActive {
			out = append(out, *exp)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateSettlement(ctx context.Context, settlement *models.SettlementRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if settlement.ID == "" {
		settlement.ID = f.newID("set")
	}
	cp := *settlement
	f.settlements[settlement.ID] = &cp
	f.notifier.Broadcast(settlement.GroupID)
	return nil
}

func (f *fakeStore) GetSettlement(ctx context.Context, settlementID string) (*models.SettlementRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.settlements[settlementID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *st
	return &cp, nil
}

func (f *fakeStore) ListConfirmedSettlements(ctx context.Context, groupID string) ([]models.SettlementRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.SettlementRecord
	for _, st := range f.settlements {
		if st.GroupID == groupID && st.Status == models.SettlementConfirmed {
			out = append(out, *st)
		}
	}
	return out, nil
}

func (f *fakeStore) ListSettlements(ctx context.Context, groupID string) ([]models.SettlementRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.SettlementRecord
	for _, st := range f.settlements {
		if st.GroupID == groupID {
			out = append(out, *st)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateSettlementStatus(ctx context.Context, settlementID string, from, to models.SettlementStatus, meta storage.TransitionMeta) (*models.SettlementRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.settlements[settlementID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if f.raceTo != "" {
		st.Status = f.raceTo
		f.raceTo = ""
		return nil, storage.ErrStatusConflict
	}
	if st.Status != from {
		return nil, storage.ErrStatusConflict
	}
	st.Status = to
	st.ConfirmedAt = meta.ResolvedAt
	st.ConfirmedBy = meta.ResolvedBy
	st.Verified = meta.Verified
	st.RejectedReason = meta.Reason
	f.notifier.Broadcast(st.GroupID)
	cp := *st
	return &cp, nil
}

func (f *fakeStore) Watch(groupID string) (<-chan struct{}, func()) {
	return f.notifier.Watch(groupID)
}

func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) IsMember(ctx context.Context, groupID, memberID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.members[groupID][memberID], nil
}

func (f *fakeStore) ListMembers(ctx context.Context, groupID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for id := range f.members[groupID] {
		out = append(out, id)
	}
	return out, nil
}

const testThreshold = 500000

func newTestService(store *fakeStore) *SettlementService {
	return NewSettlementService(store, store, events.LogPublisher{}, testThreshold)
}

func appErrCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("error %v is not an AppError", err)
	}
	return appErr.Code
}

func TestProposeSetsStepUpFlag(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore("grp-1", "alice", "bob")
	svc := newTestService(store)

	tests := []struct {
		name       string
		amount     int64
		wantStepUp bool
	}{
		{name: "below threshold", amount: testThreshold - 1, wantStepUp: false},
		{name: "at threshold", amount: testThreshold, wantStepUp: true},
		{name: "above threshold", amount: testThreshold + 1, wantStepUp: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := svc.Propose(ctx, ProposeSettlementParams{
				GroupID:      "grp-1",
				ActorID:      "bob",
				FromMemberID: "bob",
				ToMemberID:   "alice",
				Amount:       tt.amount,
				Currency:     "INR",
			})
			if err != nil {
				t.Fatalf("Propose() error = %v", err)
			}
			if st.RequiresStepUpVerification != tt.wantStepUp {
				t.Errorf("RequiresStepUpVerification = %v, want %v", st.RequiresStepUpVerification, tt.wantStepUp)
			}
			if st.Status != models.SettlementPending {
				t.Errorf("Status = %s, want pending", st.Status)
			}
		})
	}
}

func TestProposeValidation(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore("grp-1", "alice", "bob")
	svc := newTestService(store)

	tests := []struct {
		name     string
		params   ProposeSettlementParams
		wantCode string
	}{
		{
			name: "zero amount",
			params: ProposeSettlementParams{
				GroupID: "grp-1", FromMemberID: "bob", ToMemberID: "alice", Currency: "INR",
			},
			wantCode: "VAL_001",
		},
		{
			name: "self settlement",
			params: ProposeSettlementParams{
				GroupID: "grp-1", FromMemberID: "bob", ToMemberID: "bob", Amount: 100, Currency: "INR",
			},
			wantCode: "VAL_001",
		},
		{
			name: "missing currency",
			params: ProposeSettlementParams{
				GroupID: "grp-1", FromMemberID: "bob", ToMemberID: "alice", Amount: 100,
			},
			wantCode: "VAL_001",
		},
		{
			name: "debtor outside group",
			params: ProposeSettlementParams{
				GroupID: "grp-1", FromMemberID: "mallory", ToMemberID: "alice", Amount: 100, Currency: "INR",
			},
			wantCode: "VAL_002",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Propose(ctx, tt.params)
			if err == nil {
				t.Fatal("Propose() succeeded, want error")
			}
			if code := appErrCode(t, err); code != tt.wantCode {
				t.Errorf("error code = %s, want %s", code, tt.wantCode)
			}
		})
	}
}

func TestConfirmStepUpGate(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore("grp-1", "alice", "bob")
	svc := newTestService(store)

	// A 6000.00 settlement crosses the 5000.00 threshold.
	st, err := svc.Propose(ctx, ProposeSettlementParams{
		GroupID: "grp-1", ActorID: "bob", FromMemberID: "bob", ToMemberID: "alice",
		Amount: 600000, Currency: "INR",
	})
	if err != nil {
		t.Fatalf("Propose() error = %v", err)
	}
	if !st.RequiresStepUpVerification {
		t.Fatal("600000 settlement should require step-up verification")
	}

	// Unverified confirmation is refused and the record stays pending.
	_, err = svc.Confirm(ctx, st.ID, "alice", false)
	if err == nil {
		t.Fatal("Confirm() without verification succeeded, want refusal")
	}
	if code := appErrCode(t, err); code != "POL_001" {
		t.Errorf("error code = %s, want POL_001", code)
	}
	current, err := svc.GetSettlement(ctx, st.ID)
	if err != nil {
		t.Fatalf("GetSettlement() error = %v", err)
	}
	if current.Status != models.SettlementPending {
		t.Errorf("status after refusal = %s, want pending", current.Status)
	}

	// With verification the same confirmation goes through.
	confirmed, err := svc.Confirm(ctx, st.ID, "alice", true)
	if err != nil {
		t.Fatalf("Confirm() with verification error = %v", err)
	}
	if confirmed.Status != models.SettlementConfirmed {
		t.Errorf("status = %s, want confirmed", confirmed.Status)
	}
	if !confirmed.Verified {
		t.Error("Verified not recorded on the confirmed settlement")
	}
}

func TestConfirmBelowThresholdNeedsNoVerification(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore("grp-1", "alice", "bob")
	svc := newTestService(store)

	st, err := svc.Propose(ctx, ProposeSettlementParams{
		GroupID: "grp-1", ActorID: "bob", FromMemberID: "bob", ToMemberID: "alice",
		Amount: 100, Currency: "INR",
	})
	if err != nil {
		t.Fatalf("Propose() error = %v", err)
	}

	confirmed, err := svc.Confirm(ctx, st.ID, "alice", false)
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if confirmed.Status != models.SettlementConfirmed {
		t.Errorf("status = %s, want confirmed", confirmed.Status)
	}
}

func TestConfirmIdempotentAndTerminal(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore("grp-1", "alice", "bob")
	svc := newTestService(store)

	st, err := svc.Propose(ctx, ProposeSettlementParams{
		GroupID: "grp-1", ActorID: "bob", FromMemberID: "bob", ToMemberID: "alice",
		Amount: 100, Currency: "INR",
	})
	if err != nil {
		t.Fatalf("Propose() error = %v", err)
	}
	if _, err := svc.Confirm(ctx, st.ID, "alice", false); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}

	// Re-confirming a confirmed settlement is a no-op success.
	again, err := svc.Confirm(ctx, st.ID, "alice", false)
	if err != nil {
		t.Fatalf("re-Confirm() error = %v", err)
	}
	if again.Status != models.SettlementConfirmed {
		t.Errorf("status = %s, want confirmed", again.Status)
	}

	// Rejecting it is a conflict.
	_, err = svc.Reject(ctx, st.ID, "alice", "changed my mind")
	if err == nil {
		t.Fatal("Reject() on confirmed settlement succeeded, want conflict")
	}
	if code := appErrCode(t, err); code != "POL_002" {
		t.Errorf("error code = %s, want POL_002", code)
	}
}

func TestRejectIdempotentAndTerminal(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore("grp-1", "alice", "bob")
	svc := newTestService(store)

	st, err := svc.Propose(ctx, ProposeSettlementParams{
		GroupID: "grp-1", ActorID: "bob", FromMemberID: "bob", ToMemberID: "alice",
		Amount: 100, Currency: "INR",
	})
	if err != nil {
		t.Fatalf("Propose() error = %v", err)
	}

	rejected, err := svc.Reject(ctx, st.ID, "alice", "wrong amount")
	if err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	if rejected.Status != models.SettlementRejected {
		t.Errorf("status = %s, want rejected", rejected.Status)
	}
	if rejected.RejectedReason != "wrong amount" {
		t.Errorf("RejectedReason = %q, want %q", rejected.RejectedReason, "wrong amount")
	}

	if _, err := svc.Reject(ctx, st.ID, "alice", "again"); err != nil {
		t.Fatalf("re-Reject() error = %v", err)
	}

	_, err = svc.Confirm(ctx, st.ID, "alice", true)
	if err == nil {
		t.Fatal("Confirm() on rejected settlement succeeded, want conflict")
	}
	if code := appErrCode(t, err); code != "POL_002" {
		t.Errorf("error code = %s, want POL_002", code)
	}
}

func TestConfirmLostRaceResolvesByReRead(t *testing.T) {
	ctx := context.Background()

	t.Run("other writer confirmed", func(t *testing.T) {
		store := newFakeStore("grp-1", "alice", "bob")
		svc := newTestService(store)
		st, err := svc.Propose(ctx, ProposeSettlementParams{
			GroupID: "grp-1", ActorID: "bob", FromMemberID: "bob", ToMemberID: "alice",
			Amount: 100, Currency: "INR",
		})
		if err != nil {
			t.Fatalf("Propose() error = %v", err)
		}

		// The CAS fails; the re-read finds the record already confirmed.
		store.raceTo = models.SettlementConfirmed

		got, err := svc.Confirm(ctx, st.ID, "alice", false)
		if err != nil {
			t.Fatalf("Confirm() after lost race error = %v, want no-op success", err)
		}
		if got.Status != models.SettlementConfirmed {
			t.Errorf("status = %s, want confirmed", got.Status)
		}
	})

	t.Run("other writer rejected", func(t *testing.T) {
		store := newFakeStore("grp-1", "alice", "bob")
		svc := newTestService(store)
		st, err := svc.Propose(ctx, ProposeSettlementParams{
			GroupID: "grp-1", ActorID: "bob", FromMemberID: "bob", ToMemberID: "alice",
			Amount: 100, Currency: "INR",
		})
		if err != nil {
			t.Fatalf("Propose() error = %v", err)
		}

		store.raceTo = models.SettlementRejected

		_, err = svc.Confirm(ctx, st.ID, "alice", false)
		if err == nil {
			t.Fatal("Confirm() succeeded, want conflict against rejected record")
		}
		if code := appErrCode(t, err); code != "STO_002" {
			t.Errorf("error code = %s, want STO_002", code)
		}
	})
}

func TestConfirmMissingSettlement(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore("grp-1", "alice", "bob")
	svc := newTestService(store)

	_, err := svc.Confirm(ctx, "no-such-id", "alice", false)
	if err == nil {
		t.Fatal("Confirm() on missing settlement succeeded")
	}
	if code := appErrCode(t, err); code != "STO_003" {
		t.Errorf("error code = %s, want STO_003", code)
	}
}

func TestAddExpenseValidatesAtBoundary(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore("grp-1", "alice", "bob", "carol")
	svc := newTestService(store)

	_, err := svc.AddExpense(ctx, AddExpenseParams{
		GroupID: "grp-1", ActorID: "alice", PayerID: "alice",
		Total: 300, Currency: "INR",
		Splits: map[string]int64{"bob": 100, "carol": 100}, // sums to 200
	})
	if err == nil {
		t.Fatal("AddExpense() with broken splits succeeded")
	}
	if code := appErrCode(t, err); code != "LED_001" {
		t.Errorf("error code = %s, want LED_001", code)
	}
	if len(store.expenses) != 0 {
		t.Error("broken expense reached the store")
	}

	// Other structural failures stay generic validation errors.
	_, err = svc.AddExpense(ctx, AddExpenseParams{
		GroupID: "grp-1", ActorID: "alice", PayerID: "",
		Total: 100, Currency: "INR",
		Splits: map[string]int64{"bob": 100},
	})
	if code := appErrCode(t, err); code != "VAL_001" {
		t.Errorf("error code = %s, want VAL_001", code)
	}
}

func TestAddExpenseRejectsOutsider(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore("grp-1", "alice", "bob")
	svc := newTestService(store)

	_, err := svc.AddExpense(ctx, AddExpenseParams{
		GroupID: "grp-1", ActorID: "alice", PayerID: "alice",
		Total: 200, Currency: "INR",
		Splits: map[string]int64{"bob": 100, "mallory": 100},
	})
	if err == nil {
		t.Fatal("AddExpense() naming an outsider succeeded")
	}
	if code := appErrCode(t, err); code != "VAL_002" {
		t.Errorf("error code = %s, want VAL_002", code)
	}
}

func TestProposeRejectsOffCurrency(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore("grp-1", "alice", "bob")
	svc := newTestService(store)

	if _, err := svc.AddExpense(ctx, AddExpenseParams{
		GroupID: "grp-1", ActorID: "alice", PayerID: "alice",
		Total: 200, Currency: "INR",
		Splits: map[string]int64{"bob": 200},
	}); err != nil {
		t.Fatalf("AddExpense() error = %v", err)
	}

	_, err := svc.Propose(ctx, ProposeSettlementParams{
		GroupID: "grp-1", ActorID: "bob", FromMemberID: "bob", ToMemberID: "alice",
		Amount: 100, Currency: "USD",
	})
	if err == nil {
		t.Fatal("Propose() in an off-ledger currency succeeded")
	}
	if code := appErrCode(t, err); code != "VAL_001" {
		t.Errorf("error code = %s, want VAL_001", code)
	}

	// The refusal kept the store clean: balances still compute.
	if _, err := svc.CurrentBalances(ctx, "grp-1"); err != nil {
		t.Errorf("CurrentBalances() error = %v after refused write", err)
	}
}

func TestProposeFirstWriteFixesCurrency(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore("grp-1", "alice", "bob")
	svc := newTestService(store)

	// An empty group accepts any currency; it becomes the ledger currency.
	if _, err := svc.Propose(ctx, ProposeSettlementParams{
		GroupID: "grp-1", ActorID: "bob", FromMemberID: "bob", ToMemberID: "alice",
		Amount: 100, Currency: "USD",
	}); err != nil {
		t.Fatalf("Propose() into empty group error = %v", err)
	}

	// Even a pending settlement pins the currency for later writes.
	_, err := svc.AddExpense(ctx, AddExpenseParams{
		GroupID: "grp-1", ActorID: "alice", PayerID: "alice",
		Total: 200, Currency: "INR",
		Splits: map[string]int64{"bob": 200},
	})
	if err == nil {
		t.Fatal("AddExpense() in an off-ledger currency succeeded")
	}
	if code := appErrCode(t, err); code != "VAL_001" {
		t.Errorf("error code = %s, want VAL_001", code)
	}
}

func TestAddExpenseRejectsOffCurrency(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore("grp-1", "alice", "bob")
	svc := newTestService(store)

	if _, err := svc.AddExpense(ctx, AddExpenseParams{
		GroupID: "grp-1", ActorID: "alice", PayerID: "alice",
		Total: 200, Currency: "INR",
		Splits: map[string]int64{"bob": 200},
	}); err != nil {
		t.Fatalf("AddExpense() error = %v", err)
	}

	_, err := svc.AddExpense(ctx, AddExpenseParams{
		GroupID: "grp-1", ActorID: "alice", PayerID: "alice",
		Total: 100, Currency: "USD",
		Splits: map[string]int64{"bob": 100},
	})
	if err == nil {
		t.Fatal("AddExpense() in an off-ledger currency succeeded")
	}
	if code := appErrCode(t, err); code != "VAL_001" {
		t.Errorf("error code = %s, want VAL_001", code)
	}

	if _, err := svc.CurrentBalances(ctx, "grp-1"); err != nil {
		t.Errorf("CurrentBalances() error = %v after refused write", err)
	}
}

func TestBalancesAfterConfirmedSettlement(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore("grp-1", "alice", "bob", "carol")
	svc := newTestService(store)

	// Alice pays 300 split evenly: {alice: +200, bob: -100, carol: -100}.
	_, err := svc.AddExpense(ctx, AddExpenseParams{
		GroupID: "grp-1", ActorID: "alice", PayerID: "alice",
		Total: 300, Currency: "INR",
		Splits: map[string]int64{"alice": 100, "bob": 100, "carol": 100},
	})
	if err != nil {
		t.Fatalf("AddExpense() error = %v", err)
	}

	balances, err := svc.CurrentBalances(ctx, "grp-1")
	if err != nil {
		t.Fatalf("CurrentBalances() error = %v", err)
	}
	want := models.BalanceMap{"alice": 200, "bob": -100, "carol": -100}
	if !balances.Equal(want) {
		t.Fatalf("balances = %v, want %v", balances, want)
	}

	// Bob settles his 100 with Alice.
	st, err := svc.Propose(ctx, ProposeSettlementParams{
		GroupID: "grp-1", ActorID: "bob", FromMemberID: "bob", ToMemberID: "alice",
		Amount: 100, Currency: "INR",
	})
	if err != nil {
		t.Fatalf("Propose() error = %v", err)
	}

	// Pending settlements do not change balances.
	balances, err = svc.CurrentBalances(ctx, "grp-1")
	if err != nil {
		t.Fatalf("CurrentBalances() error = %v", err)
	}
	if !balances.Equal(want) {
		t.Fatalf("pending settlement changed balances: %v", balances)
	}

	if _, err := svc.Confirm(ctx, st.ID, "alice", false); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}

	balances, err = svc.CurrentBalances(ctx, "grp-1")
	if err != nil {
		t.Fatalf("CurrentBalances() error = %v", err)
	}
	wantAfter := models.BalanceMap{"alice": 100, "bob": 0, "carol": -100}
	if !balances.Equal(wantAfter) {
		t.Fatalf("balances = %v, want %v", balances, wantAfter)
	}

	// One remaining transfer: carol pays alice 100.
	debts, err := svc.SimplifiedDebts(ctx, "grp-1")
	if err != nil {
		t.Fatalf("SimplifiedDebts() error = %v", err)
	}
	if len(debts) != 1 {
		t.Fatalf("debts = %v, want exactly one transfer", debts)
	}
	d := debts[0]
	if d.FromMemberID != "carol" || d.ToMemberID != "alice" || d.Amount != 100 {
		t.Errorf("debt = %+v, want carol -> alice 100", d)
	}
}

func TestVoidExpenseExcludesFromBalances(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore("grp-1", "alice", "bob")
	svc := newTestService(store)

	exp, err := svc.AddExpense(ctx, AddExpenseParams{
		GroupID: "grp-1", ActorID: "alice", PayerID: "alice",
		Total: 200, Currency: "INR",
		Splits: map[string]int64{"bob": 200},
	})
	if err != nil {
		t.Fatalf("AddExpense() error = %v", err)
	}

	if err := svc.VoidExpense(ctx, "grp-1", "alice", exp.ID); err != nil {
		t.Fatalf("VoidExpense() error = %v", err)
	}

	balances, err := svc.CurrentBalances(ctx, "grp-1")
	if err != nil {
		t.Fatalf("CurrentBalances() error = %v", err)
	}
	if len(balances) != 0 {
		t.Errorf("balances = %v, want empty after voiding the only expense", balances)
	}
}
