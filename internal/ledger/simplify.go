package ledger

import (
	"container/heap"
	"fmt"

	"github.com/splitledger/splitledger/internal/models"
)

// SimplifyDebts reduces a zero-sum balance map to a short list of transfers
// that would clear every balance.
//
// The algorithm is greedy largest-magnitude matching: repeatedly pair the
// debtor owing the most with the creditor owed the most and transfer the
// smaller of the two magnitudes. Greedy is the documented contract: it is
// near-minimal (at most debtors+creditors-1 transfers) but not guaranteed
// globally minimal, and the behavior must stay reproducible, so the policy
// is fixed rather than "minimal".
//
// Determinism: ties on equal magnitude break by lexicographic member ID,
// smallest first. Two calls with the same input produce identical output,
// including ordering.
//
// A map whose values do not sum to zero violates the conservation
// precondition and is rejected outright.
func SimplifyDebts(balances models.BalanceMap) ([]models.SimplifiedDebt, error) {
	if sum := balances.Sum(); sum != 0 {
		return nil, fmt.Errorf("ledger: balances sum to %d, not zero; refusing to simplify", sum)
	}

	debtors := &partyHeap{}
	creditors := &partyHeap{}
	for _, id := range balances.Members() {
		switch v := balances[id]; {
		case v < 0:
			debtors.parties = append(debtors.parties, party{id: id, amount: -v})
		case v > 0:
			creditors.parties = append(creditors.parties, party{id: id, amount: v})
		}
		// Members at exactly zero are omitted entirely.
	}
	heap.Init(debtors)
	heap.Init(creditors)

	var transfers []models.SimplifiedDebt
	for debtors.Len() > 0 && creditors.Len() > 0 {
		debtor := heap.Pop(debtors).(party)
		creditor := heap.Pop(creditors).(party)

		amount := debtor.amount
		if creditor.amount < amount {
			amount = creditor.amount
		}

		transfers = append(transfers, models.SimplifiedDebt{
			FromMemberID: debtor.id,
			ToMemberID:   creditor.id,
			Amount:       amount,
		})

		if remaining := debtor.amount - amount; remaining > 0 {
			heap.Push(debtors, party{id: debtor.id, amount: remaining})
		}
		if remaining := creditor.amount - amount; remaining > 0 {
			heap.Push(creditors, party{id: creditor.id, amount: remaining})
		}
	}

	return transfers, nil
}

// ApplyDebts treats each transfer as a confirmed settlement against the
// given balances and returns the resulting map. Simplifier output applied to
// the map that produced it yields all zeros, the round-trip correctness
// property the tests pin down.
func ApplyDebts(balances models.BalanceMap, transfers []models.SimplifiedDebt) models.BalanceMap {
	out := balances.Clone()
	for _, tr := range transfers {
		out[tr.FromMemberID] += tr.Amount
		out[tr.ToMemberID] -= tr.Amount
	}
	return out
}

// party is one side of a pending match: a member and their remaining
// magnitude (always positive, direction implied by which heap holds it).
type party struct {
	id     string
	amount int64
}

// partyHeap is a max-heap over remaining magnitude with lexicographic
// member-ID tie-break, giving the greedy matcher a total deterministic order.
type partyHeap struct {
	parties []party
}

func (h *partyHeap) Len() int { return len(h.parties) }

func (h *partyHeap) Less(i, j int) bool {
	a, b := h.parties[i], h.parties[j]
	if a.amount != b.amount {
		return a.amount > b.amount
	}
	return a.id < b.id
}

func (h *partyHeap) Swap(i, j int) {
	h.parties[i], h.parties[j] = h.parties[j], h.parties[i]
}

func (h *partyHeap) Push(x any) {
	h.parties = append(h.parties, x.(party))
}

func (h *partyHeap) Pop() any {
	old := h.parties
	n := len(old)
	p := old[n-1]
	h.parties = old[:n-1]
	return p
}
