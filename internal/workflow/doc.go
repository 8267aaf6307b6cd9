// Package workflow drives one reconciliation cycle end to end.
//
// A run loads the inbox, archive, and ledger snapshots concurrently,
// reconciles them, then pushes every canonical invoice through extraction,
// the verified archive copy, and the ledger append. A file lock keeps
// concurrent runs from racing on the archive and ledger. Per-invoice failures
// are collected in the run summary rather than aborting the cycle, so one bad
// file never blocks the rest of the inbox.
package workflow
