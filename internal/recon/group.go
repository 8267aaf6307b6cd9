package recon

import "tally/internal/records"

// Annotated pairs a source record with its reconciliation flags.
type Annotated struct {
	Record records.Record
	Flags  records.Flags
}

// Resolve partitions the source snapshot into hash groups and computes the
// duplicate flags: group size, earliest, and latest occurrence per hash. Ties
// on received time break by input order, first seen wins. Records without a
// hash or without a usable received time are excluded and reported; they can
// never be classified.
//
// The pass is O(n): one scan to group, one scan per group member to flag.
func Resolve(src []records.Record) ([]Annotated, []UnhashableRecordError) {
	annotated := make([]Annotated, 0, len(src))
	var errs []UnhashableRecordError

	// Group indices into the annotated slice, insertion-ordered within each
	// group because the scan preserves input order.
	groups := make(map[string][]int, len(src))

	for _, rec := range src {
		if rec.Hash == "" {
			errs = append(errs, UnhashableRecordError{
				SourceID: rec.SourceID,
				Filename: rec.Filename,
				Reason:   ReasonMissingHash,
			})
			continue
		}
		if rec.ReceivedAt.IsZero() {
			// A sentinel zero time would silently win earliest selection, so
			// the record is excluded instead of coerced.
			errs = append(errs, UnhashableRecordError{
				SourceID: rec.SourceID,
				Filename: rec.Filename,
				Reason:   ReasonMissingTimestamp,
			})
			continue
		}
		annotated = append(annotated, Annotated{Record: rec})
		groups[rec.Hash] = append(groups[rec.Hash], len(annotated)-1)
	}

	for _, members := range groups {
		count := len(members)
		earliest := members[0]
		latest := members[0]
		for _, idx := range members[1:] {
			ts := annotated[idx].Record.ReceivedAt
			if ts.Before(annotated[earliest].Record.ReceivedAt) {
				earliest = idx
			}
			if ts.After(annotated[latest].Record.ReceivedAt) {
				latest = idx
			}
		}
		for _, idx := range members {
			annotated[idx].Flags.DuplicateCount = count
			annotated[idx].Flags.Duplicated = count > 1
		}
		annotated[earliest].Flags.Earliest = true
		annotated[latest].Flags.Latest = true
	}

	return annotated, errs
}
