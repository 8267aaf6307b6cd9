// Package ledger persists accepted invoices in SQLite.
//
// The ledger is the authoritative record of what the business has already
// processed. Reconciliation reads it as a snapshot (hash, filename, receipt
// time); the workflow appends one row per accepted invoice, carrying the
// extracted fields alongside the archive location. Monetary amounts are stored
// as decimal text.
//
// The schema lives in schema.sql. A version gate rejects databases written by
// a different schema version instead of guessing at migrations.
package ledger
