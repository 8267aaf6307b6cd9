// Package records defines the typed snapshot records the reconciliation
// engine consumes and the Invoice work item it emits.
//
// Three collections exist: source records observed in the inbox, archive
// records describing the binary file store, and ledger records describing
// previously accepted invoices. Content identity is always the hash field;
// filenames and timestamps are carried but never trusted for identity.
//
// Treat this package as the single source of truth for record shapes; loaders
// produce these types and the engine never reaches back into raw inputs.
package records
