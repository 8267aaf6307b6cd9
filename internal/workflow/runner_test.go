package workflow_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"tally/internal/extract"
	"tally/internal/logging"
	"tally/internal/testsupport"
	"tally/internal/workflow"
)

// stubExtractor returns fixed fields, or an error when fail is set.
type stubExtractor struct {
	fields extract.Fields
	fail   bool
	calls  int
}

func (s *stubExtractor) Extract(_ context.Context, _ string, _ []byte) (extract.Fields, error) {
	s.calls++
	if s.fail {
		return extract.Fields{}, errors.New("extraction unavailable")
	}
	return s.fields, nil
}

func TestRunAcceptsNewInvoices(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	testsupport.WriteInboxFile(t, cfg.Paths.InboxDir, "acme-jan.pdf", "january invoice")
	testsupport.WriteInboxFile(t, cfg.Paths.InboxDir, "other-feb.pdf", "february invoice")

	runner, err := workflow.New(cfg, store, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("workflow.New: %v", err)
	}
	summary, err := runner.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.RunID == "" {
		t.Fatal("expected a run id")
	}
	if summary.Accepted() != 2 || summary.Failed() != 0 {
		t.Fatalf("expected 2 accepted, got %d accepted %d failed", summary.Accepted(), summary.Failed())
	}

	recs, err := store.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 ledger rows, got %d", len(recs))
	}
	for _, outcome := range summary.Outcomes {
		if _, err := os.Stat(filepath.Join(cfg.Paths.ArchiveDir, outcome.ArchivePath)); err != nil {
			t.Fatalf("archived file missing: %v", err)
		}
	}
}

func TestRunIsIdempotentAcrossCycles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	testsupport.WriteInboxFile(t, cfg.Paths.InboxDir, "acme-jan.pdf", "january invoice")

	runner, err := workflow.New(cfg, store, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("workflow.New: %v", err)
	}
	first, err := runner.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Accepted() != 1 {
		t.Fatalf("first run accepted %d", first.Accepted())
	}

	// The inbox is unchanged; the ledger now knows the hash, so the second
	// cycle finds nothing new.
	second, err := runner.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(second.Result.Invoices) != 0 {
		t.Fatalf("second run must select no invoices, got %d", len(second.Result.Invoices))
	}
	recs, err := store.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("ledger must still hold 1 row, got %d", len(recs))
	}
}

func TestRunDryRunTouchesNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	testsupport.WriteInboxFile(t, cfg.Paths.InboxDir, "acme-jan.pdf", "january invoice")

	runner, err := workflow.New(cfg, store, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("workflow.New: %v", err)
	}
	summary, err := runner.Run(context.Background(), true)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !summary.DryRun {
		t.Fatal("summary must be marked dry run")
	}
	if len(summary.Result.Invoices) != 1 {
		t.Fatalf("dry run must still reconcile, got %d invoices", len(summary.Result.Invoices))
	}
	if len(summary.Outcomes) != 0 {
		t.Fatalf("dry run must process nothing, got %d outcomes", len(summary.Outcomes))
	}

	recs, err := store.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("dry run must not write the ledger, got %d rows", len(recs))
	}
	entries, err := os.ReadDir(cfg.Paths.ArchiveDir)
	if err != nil {
		t.Fatalf("read archive dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("dry run must not write the archive, found %d entries", len(entries))
	}
}

func TestRunRecordsExtractedFields(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	testsupport.WriteInboxFile(t, cfg.Paths.InboxDir, "acme-jan.pdf", "january invoice")

	stub := &stubExtractor{fields: extract.Fields{
		Issuer:      "ACME GmbH",
		Currency:    "EUR",
		AmountTotal: decimal.NewNullDecimal(decimal.RequireFromString("1190.50")),
	}}
	runner, err := workflow.New(cfg, store, stub, logging.NewNop())
	if err != nil {
		t.Fatalf("workflow.New: %v", err)
	}
	summary, err := runner.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stub.calls != 1 {
		t.Fatalf("extractor called %d times", stub.calls)
	}
	if summary.Accepted() != 1 {
		t.Fatalf("accepted %d", summary.Accepted())
	}

	entries, err := store.Entries(context.Background())
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if entries[0].Issuer != "ACME GmbH" || entries[0].Currency != "EUR" {
		t.Fatalf("extracted fields not recorded: %+v", entries[0])
	}
	if !entries[0].AmountTotal.Valid {
		t.Fatal("amount_total not recorded")
	}
}

func TestRunExtractionFailureStillArchivesAndRecords(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	testsupport.WriteInboxFile(t, cfg.Paths.InboxDir, "acme-jan.pdf", "january invoice")

	runner, err := workflow.New(cfg, store, &stubExtractor{fail: true}, logging.NewNop())
	if err != nil {
		t.Fatalf("workflow.New: %v", err)
	}
	summary, err := runner.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Accepted() != 1 {
		t.Fatalf("extraction failure must not reject the invoice: %d accepted", summary.Accepted())
	}

	entries, err := store.Entries(context.Background())
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 ledger row, got %d", len(entries))
	}
	if entries[0].Issuer != "" || entries[0].AmountTotal.Valid {
		t.Fatalf("failed extraction must record empty fields: %+v", entries[0])
	}
}

func TestRunRejectsUnknownPolicy(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCanonicalPolicy("newest"))
	store := testsupport.MustOpenLedger(t, cfg)

	if _, err := workflow.New(cfg, store, nil, logging.NewNop()); err == nil {
		t.Fatal("expected policy parse error")
	}
}
