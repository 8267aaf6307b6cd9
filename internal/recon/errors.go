package recon

import "fmt"

// Reasons a record can be excluded from grouping.
const (
	ReasonMissingHash      = "missing hash"
	ReasonMissingTimestamp = "missing or unparsable received_at"
)

// UnhashableRecordError reports a source record that cannot participate in
// reconciliation. The record is excluded from every hash group and can never
// become an invoice; the run continues without it.
type UnhashableRecordError struct {
	SourceID string
	Filename string
	Reason   string
}

func (e *UnhashableRecordError) Error() string {
	return fmt.Sprintf("record %q (%s): %s", e.SourceID, e.Filename, e.Reason)
}
