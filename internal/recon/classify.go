package recon

import (
	"time"

	"tally/internal/records"
)

// Source-of-truth labels reported in diagnostics.
const (
	TruthLedger  = "ledger"
	TruthArchive = "archive"
)

// SourceOfTruth names the store used for the new/common decision. The ledger
// is authoritative whenever it has rows: it records what was actually
// accepted, while an archived file may not have been acted upon yet.
func SourceOfTruth(ledger []records.LedgerRecord) string {
	if len(ledger) > 0 {
		return TruthLedger
	}
	return TruthArchive
}

// Classify computes the new/common flags for every resolved record. It returns
// a new slice; inputs are not mutated.
//
// The archive-relative verdict is always computed alongside the authoritative
// one so audit logs can expose disagreement between the two stores. When both
// stores are empty every record is new: that is the bootstrap state, not an
// error.
func Classify(resolved []Annotated, archive []records.ArchiveRecord, ledger []records.LedgerRecord) []Annotated {
	archiveHashes := make(map[string]struct{}, len(archive))
	for _, rec := range archive {
		if rec.Hash != "" {
			archiveHashes[rec.Hash] = struct{}{}
		}
	}

	ledgerHashes := make(map[string]struct{}, len(ledger))
	var cutoff time.Time
	for _, rec := range ledger {
		if rec.Hash != "" {
			ledgerHashes[rec.Hash] = struct{}{}
		}
		if rec.ReceivedAt.After(cutoff) {
			cutoff = rec.ReceivedAt
		}
	}

	ledgerAuthoritative := len(ledger) > 0

	out := make([]Annotated, len(resolved))
	copy(out, resolved)
	for i := range out {
		hash := out[i].Record.Hash
		_, inArchive := archiveHashes[hash]
		_, inLedger := ledgerHashes[hash]

		out[i].Flags.ArchiveCommon = inArchive
		out[i].Flags.LedgerCommon = inLedger
		if ledgerAuthoritative {
			out[i].Flags.New = !inLedger
			out[i].Flags.AfterCutoff = out[i].Record.ReceivedAt.After(cutoff)
		} else {
			out[i].Flags.New = !inArchive
		}
	}
	return out
}
