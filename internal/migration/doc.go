// Package migration defines the data model shared by the litemigrate core:
// versioned migrations, ledger entries, reconciliation rows and the single
// error type raised to callers.
//
// A change-set is an ordered list of Migration values. Versions are unique
// positive integers and are expected to form a contiguous chain relative to
// the ledger's current version. The engine only reads migrations; callers own
// them.
//
// # Errors
//
// Every failure surfaced by the core is an *Error carrying a Kind:
//   - KindConfiguration: unknown backend, missing driver, uninitialized ledger
//   - KindConnection: backend unreachable or authentication rejected
//   - KindSequence: version gaps, reverse targets outside the ledger range
//   - KindExecution: a forward, backward or ledger statement failed
//
// Any returned error means the run stopped at that point. The ledger is the
// source of truth for what succeeded.
package migration
