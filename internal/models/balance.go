package models

import "sort"

// BalanceMap maps member ID to signed net position in minor units for one
// group: positive means the member is owed money, negative means they owe.
//
// Invariant: the values of any BalanceMap produced by the ledger sum to
// exactly zero: money is conserved across every fold.
type BalanceMap map[string]int64

// Sum returns the total of all net positions. Zero for any well-formed map.
func (b BalanceMap) Sum() int64 {
	var sum int64
	for _, v := range b {
		sum += v
	}
	return sum
}

// Members returns the member IDs in lexicographic order.
func (b BalanceMap) Members() []string {
	members := make([]string, 0, len(b))
	for id := range b {
		members = append(members, id)
	}
	sort.Strings(members)
	return members
}

// Clone returns an independent copy of the map.
func (b BalanceMap) Clone() BalanceMap {
	out := make(BalanceMap, len(b))
	for id, v := range b {
		out[id] = v
	}
	return out
}

// Equal reports whether two maps hold identical balances. Members with a
// zero balance count the same as absent members.
func (b BalanceMap) Equal(other BalanceMap) bool {
	for id, v := range b {
		if other[id] != v {
			return false
		}
	}
	for id, v := range other {
		if b[id] != v {
			return false
		}
	}
	return true
}

// SimplifiedDebt is one suggested transfer produced by debt simplification.
// Amount is always strictly positive.
type SimplifiedDebt struct {
	// FromMemberID is the debtor who should pay.
	FromMemberID string

	// ToMemberID is the creditor who should receive.
	ToMemberID string

	// Amount is the transfer amount in minor units.
	Amount int64
}
