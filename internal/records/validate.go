package records

import "fmt"

// SchemaViolationError reports a required field absent from an entire input
// collection. It aborts the run: when a whole snapshot lacks a field, no
// record in it can be trusted and partial classification would mislead.
type SchemaViolationError struct {
	Collection string
	Field      string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("schema violation: collection %q is missing field %q in every record", e.Collection, e.Field)
}

// ValidateSource checks the source snapshot for collection-wide schema
// violations. Individual malformed records are not an error here; they are
// reported per-record during grouping.
func ValidateSource(recs []Record) error {
	if len(recs) == 0 {
		return nil
	}
	anyHash, anyName, anyTime := false, false, false
	for _, rec := range recs {
		anyHash = anyHash || rec.Hash != ""
		anyName = anyName || rec.Filename != ""
		anyTime = anyTime || !rec.ReceivedAt.IsZero()
	}
	switch {
	case !anyHash:
		return &SchemaViolationError{Collection: "source", Field: "hash"}
	case !anyName:
		return &SchemaViolationError{Collection: "source", Field: "filename"}
	case !anyTime:
		return &SchemaViolationError{Collection: "source", Field: "received_at"}
	}
	return nil
}

// ValidateArchive checks the archive snapshot for collection-wide schema
// violations.
func ValidateArchive(recs []ArchiveRecord) error {
	if len(recs) == 0 {
		return nil
	}
	anyHash, anyName := false, false
	for _, rec := range recs {
		anyHash = anyHash || rec.Hash != ""
		anyName = anyName || rec.Filename != ""
	}
	switch {
	case !anyHash:
		return &SchemaViolationError{Collection: "archive", Field: "hash"}
	case !anyName:
		return &SchemaViolationError{Collection: "archive", Field: "filename"}
	}
	return nil
}

// ValidateLedger checks the ledger snapshot for collection-wide schema
// violations.
func ValidateLedger(recs []LedgerRecord) error {
	if len(recs) == 0 {
		return nil
	}
	anyHash := false
	for _, rec := range recs {
		anyHash = anyHash || rec.Hash != ""
	}
	if !anyHash {
		return &SchemaViolationError{Collection: "ledger", Field: "hash"}
	}
	return nil
}
