// Package recon implements the reconciliation engine: it decides, for every
// record observed in the inbox, whether the content is genuinely new, a
// re-delivery of something the archive or ledger already knows, or an internal
// duplicate arriving several times before being processed.
//
// Identity is the content hash, never the filename. The engine is a pure
// in-memory batch computation over three immutable snapshots: it groups source
// records by hash, resolves duplicate/earliest/latest flags, classifies
// records against the source of truth (ledger when populated, archive
// otherwise), detects filename drift, and emits one canonical Invoice work
// item per new hash. Per-record problems accumulate into diagnostics;
// collection-wide schema violations abort the run.
//
// Running the engine twice over identical snapshots yields identical flags and
// an identical invoice set.
package recon
