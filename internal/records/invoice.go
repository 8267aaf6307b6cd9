package records

import (
	"fmt"
	"time"

	"tally/internal/services"
)

// Invoice is the canonical, validated work item handed to downstream
// processing. At most one invoice per content hash exists in a run, and it is
// immutable once constructed.
type Invoice struct {
	Hash       string
	Filename   string
	ReceivedAt time.Time
	SourceID   string
	Sender     string
	Path       string
	Size       int64
	// DuplicateCount records how many deliveries of this content the source
	// snapshot held, for diagnostics.
	DuplicateCount int
}

// PreconditionViolationError reports an attempt to build an Invoice from a
// record the source of truth already knows. This is a programmer error in the
// upstream filter, not a data problem; it exists to protect downstream
// idempotency if the must-process predicate is bypassed.
type PreconditionViolationError struct {
	Hash string
}

func (e *PreconditionViolationError) Error() string {
	return fmt.Sprintf("invoice construction from non-new record (hash %s)", e.Hash)
}

func (e *PreconditionViolationError) Unwrap() error {
	return services.ErrPrecondition
}

// NewInvoice builds the work item for a record. The record must carry the New
// flag; construction fails with a PreconditionViolationError otherwise.
func NewInvoice(rec Record, flags Flags) (Invoice, error) {
	if !flags.New {
		return Invoice{}, &PreconditionViolationError{Hash: rec.Hash}
	}
	return Invoice{
		Hash:           rec.Hash,
		Filename:       rec.Filename,
		ReceivedAt:     rec.ReceivedAt,
		SourceID:       rec.SourceID,
		Sender:         rec.Sender,
		Path:           rec.Path,
		Size:           rec.Size,
		DuplicateCount: flags.DuplicateCount,
	}, nil
}
