package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"tally/internal/archive"
	"tally/internal/config"
	"tally/internal/extract"
	"tally/internal/inbox"
	"tally/internal/ledger"
	"tally/internal/logging"
	"tally/internal/recon"
	"tally/internal/records"
	"tally/internal/services"
)

// Outcome is the per-invoice result of one run.
type Outcome struct {
	Invoice     records.Invoice
	Fields      extract.Fields
	ArchivePath string
	LedgerID    int64
	Err         error
}

// Summary is the complete result of one run.
type Summary struct {
	RunID    string
	DryRun   bool
	Result   *recon.Result
	Outcomes []Outcome
}

// Accepted counts outcomes that archived and recorded successfully.
func (s *Summary) Accepted() int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Err == nil {
			n++
		}
	}
	return n
}

// Failed counts outcomes that hit an error.
func (s *Summary) Failed() int {
	return len(s.Outcomes) - s.Accepted()
}

// Runner drives one reconciliation cycle end to end: load the three
// snapshots, reconcile, then extract, archive, and record each canonical
// invoice.
type Runner struct {
	cfg       *config.Config
	engine    *recon.Engine
	loader    *inbox.Loader
	archive   *archive.Store
	ledger    *ledger.Store
	extractor extract.Extractor
	lock      *flock.Flock
	logger    *slog.Logger
}

// New builds a Runner over an open ledger store. extractor may be nil when
// field extraction is disabled.
func New(cfg *config.Config, store *ledger.Store, extractor extract.Extractor, logger *slog.Logger) (*Runner, error) {
	policy, err := recon.ParsePolicy(cfg.Reconcile.CanonicalPolicy)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "policy", "parse canonical policy", err)
	}
	return &Runner{
		cfg:       cfg,
		engine:    recon.New(policy, logger),
		loader:    inbox.NewLoader(cfg.Paths.InboxDir, cfg.Reconcile.Extensions, logger),
		archive:   archive.NewStore(cfg.Paths.ArchiveDir, cfg.Paths.StagingDir, logger),
		ledger:    store,
		extractor: extractor,
		lock:      flock.New(filepath.Join(cfg.Paths.LogDir, "tally.lock")),
		logger:    logging.NewComponentLogger(logger, "workflow"),
	}, nil
}

// Run executes one cycle. With dryRun set it reconciles and reports but
// touches neither the archive nor the ledger. Per-invoice failures are
// recorded in the summary; only snapshot loading and reconciliation itself
// can fail the run.
func (r *Runner) Run(ctx context.Context, dryRun bool) (*Summary, error) {
	locked, err := r.lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "workflow", "lock", "acquire run lock", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrTransient, "workflow", "lock",
			fmt.Sprintf("another run holds %s", r.lock.Path()), nil)
	}
	defer func() {
		_ = r.lock.Unlock()
	}()

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := r.logger.With(logging.String(logging.FieldRunID, runID))
	logger.Info("run started", logging.Bool("dry_run", dryRun))

	var (
		source     []records.Record
		archives   []records.ArchiveRecord
		ledgerRecs []records.LedgerRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		source, err = r.loader.Load(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		archives, err = r.archive.Load(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		ledgerRecs, err = r.ledger.LoadAll(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load snapshots: %w", err)
	}

	result, err := r.engine.Run(source, archives, ledgerRecs)
	if err != nil {
		return nil, err
	}

	summary := &Summary{RunID: runID, DryRun: dryRun, Result: result}
	if dryRun {
		logger.Info("dry run complete", logging.Int("invoices", len(result.Invoices)))
		return summary, nil
	}

	summary.Outcomes = make([]Outcome, len(result.Invoices))
	workers := r.cfg.Workflow.Workers
	if workers < 1 {
		workers = 1
	}
	pg, pctx := errgroup.WithContext(ctx)
	pg.SetLimit(workers)
	for i, inv := range result.Invoices {
		pg.Go(func() error {
			summary.Outcomes[i] = r.process(pctx, logger, inv)
			return nil
		})
	}
	_ = pg.Wait()

	logger.Info("run complete",
		logging.Int("invoices", len(result.Invoices)),
		logging.Int("accepted", summary.Accepted()),
		logging.Int("failed", summary.Failed()),
	)
	return summary, nil
}

// process handles one canonical invoice. Extraction failures degrade to an
// empty field set; archive or ledger failures fail the outcome.
func (r *Runner) process(ctx context.Context, logger *slog.Logger, inv records.Invoice) Outcome {
	ctx = services.WithInvoiceHash(ctx, inv.Hash)
	outcome := Outcome{Invoice: inv}

	if r.extractor != nil {
		data, err := os.ReadFile(inv.Path)
		if err != nil {
			outcome.Err = fmt.Errorf("read invoice file: %w", err)
			return outcome
		}
		fields, err := r.extractor.Extract(ctx, inv.Filename, data)
		if err != nil {
			logger.Warn("field extraction failed; recording without fields",
				logging.String(logging.FieldHash, inv.Hash),
				logging.String(logging.FieldFilename, inv.Filename),
				logging.Error(err),
				logging.String(logging.FieldEventType, "extraction_failed"),
				logging.String(logging.FieldErrorHint, "re-run once the extraction service recovers"),
			)
		} else {
			outcome.Fields = fields
		}
	}

	archivePath, err := r.archive.Archive(ctx, inv)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.ArchivePath = archivePath

	id, err := r.ledger.Append(ctx, ledger.Entry{
		Hash:          inv.Hash,
		Filename:      inv.Filename,
		ReceivedAt:    inv.ReceivedAt,
		Sender:        inv.Sender,
		ArchivePath:   archivePath,
		Issuer:        outcome.Fields.Issuer,
		InvoiceNumber: outcome.Fields.InvoiceNumber,
		IssuedOn:      outcome.Fields.IssuedOn,
		Currency:      outcome.Fields.Currency,
		AmountTotal:   outcome.Fields.AmountTotal,
		AmountTax:     outcome.Fields.AmountTax,
	})
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.LedgerID = id

	logger.Info("invoice accepted",
		logging.String(logging.FieldHash, inv.Hash),
		logging.String(logging.FieldFilename, inv.Filename),
		logging.String("archive_path", archivePath),
	)
	return outcome
}
