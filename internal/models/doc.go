// Package models defines the core domain models for the bill splitting and
// settlement ledger.
//
// # Models
//
//   - Transaction: an immutable monetary record owned by one user. Supplied by
//     the transaction ledger; this core never mutates it.
//   - TransactionFriend: a confirmed transaction → friend association with a
//     confidence score. At most one per transaction.
//   - Bill: a grouping of one or more transactions shared among members.
//   - BillMember: one member's owed share and credited paid amount within a bill.
//   - BillTransaction: how much of a transaction's value was applied to a bill.
//   - User: an account, held locally for referential integrity. Accounts and the
//     friend relation are managed by external systems.
//
// # Design Principles
//
//  1. **Decimal money**: all monetary fields are shopspring decimals, never
//     float64, so half-up-to-cent rounding stays exact.
//  2. **Derived state is never stored**: a bill's settled flag and a
//     transaction's remaining amount are recomputed from child rows on read
//     (see the calculator package).
//  3. **Avoid circular references**: relationships use ID strings, not pointers.
package models
