package recon

import (
	"log/slog"

	"tally/internal/logging"
	"tally/internal/records"
	"tally/internal/services"
)

// Result is the complete outcome of one reconciliation run.
type Result struct {
	// Records carries every classifiable source record with its full flag
	// set, in input order.
	Records []Annotated
	// Invoices are the canonical work items, one per new hash.
	Invoices []records.Invoice
	Diagnostics Diagnostics
}

// Engine runs the reconciliation passes over three snapshots. It holds no
// state between runs beyond its policy and logger.
type Engine struct {
	policy Policy
	logger *slog.Logger
}

// New constructs an Engine with the given canonical selection policy.
func New(policy Policy, logger *slog.Logger) *Engine {
	if policy == "" {
		policy = PolicyEarliest
	}
	return &Engine{
		policy: policy,
		logger: logging.NewComponentLogger(logger, "recon"),
	}
}

// Run reconciles the source snapshot against the archive and ledger
// snapshots. Collection-wide schema violations abort with a validation error;
// per-record problems accumulate into the diagnostics and the run continues.
func (e *Engine) Run(
	src []records.Record,
	archive []records.ArchiveRecord,
	ledger []records.LedgerRecord,
) (*Result, error) {
	if err := records.ValidateSource(src); err != nil {
		return nil, services.Wrap(services.ErrValidation, "recon", "validate source snapshot", "", err)
	}
	if err := records.ValidateArchive(archive); err != nil {
		return nil, services.Wrap(services.ErrValidation, "recon", "validate archive snapshot", "", err)
	}
	if err := records.ValidateLedger(ledger); err != nil {
		return nil, services.Wrap(services.ErrValidation, "recon", "validate ledger snapshot", "", err)
	}

	resolved, unhashable := Resolve(src)
	classified := DetectDrift(Classify(resolved, archive, ledger), archive)

	invoices, err := SelectCanonical(classified, e.policy)
	if err != nil {
		return nil, err
	}

	diag := buildDiagnostics(classified, archive, ledger, unhashable)

	e.logger.Info("reconciliation complete",
		logging.String("source_of_truth", diag.SourceOfTruth),
		logging.Int("source_records", diag.SourceRecords),
		logging.Int("new", diag.NewRecords),
		logging.Int("common", diag.CommonRecords),
		logging.Int("duplicate_groups", diag.DuplicateGroups),
		logging.Int("invoices", len(invoices)),
		logging.Int("unhashable", len(diag.Unhashable)),
	)
	for _, uh := range diag.Unhashable {
		e.logger.Warn("record excluded from reconciliation",
			logging.String("source_id", uh.SourceID),
			logging.String(logging.FieldFilename, uh.Filename),
			logging.String("reason", uh.Reason),
			logging.String(logging.FieldEventType, "unhashable_record"),
			logging.String(logging.FieldErrorHint, "inspect the source record and re-deliver it"),
		)
	}
	for _, pair := range diag.AcrossSourceDrift {
		e.logger.Warn("filename drift between source and archive",
			logging.String(logging.FieldHash, pair.Hash),
			logging.String("source_filename", pair.SourceFilename),
			logging.String("archive_filename", pair.ArchiveFilename),
			logging.String(logging.FieldEventType, "filename_drift"),
			logging.String(logging.FieldErrorHint, "verify which name is correct; identity is unaffected"),
		)
	}

	return &Result{
		Records:     classified,
		Invoices:    invoices,
		Diagnostics: diag,
	}, nil
}
