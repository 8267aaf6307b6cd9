package records

import "time"

// Record is one observed occurrence of a candidate invoice in the source
// inbox. Several records may share a hash; none of the other fields are
// required to be unique.
type Record struct {
	Hash       string
	Filename   string
	ReceivedAt time.Time
	// SourceID is an opaque identifier within the source, e.g. a message ID
	// or an inbox-relative path.
	SourceID string
	// Sender and Path are source payload carried through to the work item but
	// never interpreted during reconciliation.
	Sender string
	Path   string
	Size   int64
}

// ArchiveRecord describes one file in the binary archive store.
type ArchiveRecord struct {
	Hash         string
	Filename     string
	RelativePath string
	ModifiedAt   time.Time
}

// LedgerRecord describes one previously accepted invoice in the ledger.
type LedgerRecord struct {
	Hash       string
	Filename   string
	ReceivedAt time.Time
}

// Flags carries every reconciliation verdict attached to a source record.
type Flags struct {
	// DuplicateCount is the size of the record's hash group within the source
	// snapshot, always >= 1.
	DuplicateCount int
	Duplicated     bool
	// Earliest and Latest mark exactly one record each per hash group by
	// received time; ties break on first-seen input order. Both are true when
	// DuplicateCount == 1.
	Earliest bool
	Latest   bool
	// New is computed against the source of truth: the ledger when it has
	// rows, otherwise the archive.
	New bool
	// LedgerCommon and ArchiveCommon are kept separate on purpose: the
	// archive-relative verdict is always computed for audit, even when the
	// ledger is authoritative.
	LedgerCommon  bool
	ArchiveCommon bool
	// AfterCutoff reports arrival after the newest ledger row. Diagnostic
	// only; never feeds the New decision.
	AfterCutoff bool
	// NameDriftWithinSource is set when the hash group spans more than one
	// distinct filename inside the source snapshot.
	NameDriftWithinSource bool
	// NameDriftAcrossSources is set when the source filename differs from the
	// archived filename for the same hash.
	NameDriftAcrossSources bool
}
