// Package engine implements the litemigrate migration engine.
//
// The engine orchestrates five operations against the ledger of one target
// database: Initialize, Apply, Reverse, DryRunReverse and Show.
//
// RESOURCE MODEL:
//
// Every operation acquires exactly one connection from its Connector and
// releases it on every exit path. Statements run strictly in sequence and
// each migration step (statement plus ledger row) commits in its own
// transaction. A failure therefore stops the run with every earlier step
// still committed. There is no automatic compensation, no retry and no
// internal parallelism.
//
// The engine does not guard against two processes migrating the same
// database at once. Callers needing that must serialize externally, e.g.
// with an advisory lock held for the duration of a run.
//
// INVARIANTS:
//   - Apply only records version V+1 on top of current version V
//   - Reverse and DryRunReverse share one plan, so a preview always names
//     exactly the versions a real reverse to the same target removes
//   - Initialize never destroys an existing ledger
//
// LOGGING:
//
// The engine never uses the process-wide logger. It logs through the
// *slog.Logger given to WithLogger, tagging every record with the operation
// name and a per-operation run id.
package engine
