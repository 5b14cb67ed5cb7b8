// Package models defines the core domain models for splitify.
//
// # Ledger entries
//
// Balances are never stored. They are derived on every read from three kinds of
// immutable ledger entries:
//   - Expense: a direct expense paid by one user and shared equally by its participants
//   - GroupExpense: an expense inside a Group carrying explicit per-member Split amounts
//   - Settlement: a payment from one user to another that nets against the above
//
// # Identity
//
// Users are identified by phone number, normalized to digits only (see NormalizePhone).
// Display names copied into Friendship metadata, group members, splits and activity
// entries are snapshots taken when the record was written; later profile renames do
// not rewrite them.
//
// # Money
//
// Amounts are decimal.Decimal. Rounding to cents happens only when values are
// rendered (see calculator.Round), never while folding entries.
package models
