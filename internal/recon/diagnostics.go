package recon

import "tally/internal/records"

// DriftPair records one hash whose source and archive filenames disagree.
type DriftPair struct {
	Hash            string
	SourceFilename  string
	ArchiveFilename string
}

// Diagnostics aggregates everything a run learned that is worth alerting on.
// It is intended for logging and operator reports, never for control flow.
type Diagnostics struct {
	SourceOfTruth string

	SourceRecords  int
	ArchiveRecords int
	LedgerRecords  int

	DuplicateGroups  int
	DuplicateRecords int

	NewRecords    int
	CommonRecords int
	// AfterCutoffRecords counts records that arrived after the newest ledger
	// row. Only populated when the ledger is authoritative.
	AfterCutoffRecords int

	// WithinSourceDrift lists hashes whose source occurrences span more than
	// one distinct filename.
	WithinSourceDrift []string
	// AcrossSourceDrift lists hash/filename pairs that differ between source
	// and archive.
	AcrossSourceDrift []DriftPair

	// Unhashable holds the per-record errors accumulated during grouping.
	Unhashable []UnhashableRecordError
}

func buildDiagnostics(
	classified []Annotated,
	archive []records.ArchiveRecord,
	ledger []records.LedgerRecord,
	unhashable []UnhashableRecordError,
) Diagnostics {
	diag := Diagnostics{
		SourceOfTruth:  SourceOfTruth(ledger),
		SourceRecords:  len(classified) + len(unhashable),
		ArchiveRecords: len(archive),
		LedgerRecords:  len(ledger),
		Unhashable:     unhashable,
	}

	archiveNames := make(map[string]string, len(archive))
	for _, rec := range archive {
		if rec.Hash == "" {
			continue
		}
		if _, ok := archiveNames[rec.Hash]; !ok {
			archiveNames[rec.Hash] = rec.Filename
		}
	}

	seenDupGroup := make(map[string]struct{})
	seenWithinDrift := make(map[string]struct{})
	seenAcrossDrift := make(map[string]struct{})
	for _, ann := range classified {
		hash := ann.Record.Hash
		if ann.Flags.Duplicated {
			diag.DuplicateRecords++
			if _, ok := seenDupGroup[hash]; !ok {
				seenDupGroup[hash] = struct{}{}
				diag.DuplicateGroups++
			}
		}
		if ann.Flags.New {
			diag.NewRecords++
		} else {
			diag.CommonRecords++
		}
		if ann.Flags.AfterCutoff {
			diag.AfterCutoffRecords++
		}
		if ann.Flags.NameDriftWithinSource {
			if _, ok := seenWithinDrift[hash]; !ok {
				seenWithinDrift[hash] = struct{}{}
				diag.WithinSourceDrift = append(diag.WithinSourceDrift, hash)
			}
		}
		if ann.Flags.NameDriftAcrossSources {
			if _, ok := seenAcrossDrift[hash]; !ok {
				seenAcrossDrift[hash] = struct{}{}
				diag.AcrossSourceDrift = append(diag.AcrossSourceDrift, DriftPair{
					Hash:            hash,
					SourceFilename:  ann.Record.Filename,
					ArchiveFilename: archiveNames[hash],
				})
			}
		}
	}

	return diag
}
