// Package report renders run summaries, diagnostics, and ledger listings as
// terminal tables.
package report
