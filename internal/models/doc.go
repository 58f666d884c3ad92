// Package models defines the core domain records for the splitledger engine.
//
// # Records
//
//   - ExpenseRecord: a shared cost paid by one member and split across several
//   - SettlementRecord: a directed repayment between two members with a
//     pending → confirmed/rejected lifecycle
//   - BalanceMap: per-member net position derived from the two record streams
//   - SimplifiedDebt: one suggested transfer produced by debt simplification
//
// # Money
//
// All amounts are signed int64 counts of the currency's minor unit (paisa,
// cents). There is no floating point anywhere in the ledger: sums, splits and
// differences are exact integer arithmetic. Every record carries an
// ISO-4217-style currency code and a single ledger computation only ever sees
// one currency; mixing currencies is a validation error, not a conversion.
//
// # Identity
//
// Members are opaque string IDs (UUID format). Display names, photos and any
// other presentation data are resolved by the caller at the boundary; they
// are never part of ledger identity and never reach balance or simplification
// logic.
package models
