package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"tally/internal/ledger"
	"tally/internal/recon"
	"tally/internal/workflow"
)

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04")
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

// RunSummary renders the outcome of one workflow run: the reconciliation
// overview, the per-invoice results, and any drift or exclusion warnings.
func RunSummary(s *workflow.Summary) string {
	var b strings.Builder

	mode := "run"
	if s.DryRun {
		mode = "dry run"
	}
	fmt.Fprintf(&b, "Reconciliation %s %s\n\n", mode, s.RunID)
	b.WriteString(Diagnostics(s.Result.Diagnostics))

	if len(s.Result.Invoices) == 0 {
		b.WriteString("\nNo new invoices.\n")
		return b.String()
	}

	if s.DryRun {
		rows := make([][]string, 0, len(s.Result.Invoices))
		for _, inv := range s.Result.Invoices {
			rows = append(rows, []string{
				shortHash(inv.Hash),
				inv.Filename,
				formatTime(inv.ReceivedAt),
				strconv.Itoa(inv.DuplicateCount),
			})
		}
		b.WriteString("\nWould accept:\n")
		b.WriteString(renderTable(
			[]string{"Hash", "Filename", "Received", "Copies"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
		))
		b.WriteString("\n")
		return b.String()
	}

	rows := make([][]string, 0, len(s.Outcomes))
	for _, o := range s.Outcomes {
		status := "accepted"
		detail := o.ArchivePath
		if o.Err != nil {
			status = "failed"
			detail = o.Err.Error()
		}
		rows = append(rows, []string{
			shortHash(o.Invoice.Hash),
			o.Invoice.Filename,
			formatTime(o.Invoice.ReceivedAt),
			status,
			detail,
		})
	}
	b.WriteString("\n")
	b.WriteString(renderTable(
		[]string{"Hash", "Filename", "Received", "Status", "Detail"},
		rows,
		nil,
	))
	fmt.Fprintf(&b, "\n%d accepted, %d failed\n", s.Accepted(), s.Failed())
	return b.String()
}

// Diagnostics renders the reconciliation counters and warnings.
func Diagnostics(d recon.Diagnostics) string {
	var b strings.Builder

	rows := [][]string{
		{"Source of truth", d.SourceOfTruth},
		{"Source records", strconv.Itoa(d.SourceRecords)},
		{"Archive records", strconv.Itoa(d.ArchiveRecords)},
		{"Ledger records", strconv.Itoa(d.LedgerRecords)},
		{"New", strconv.Itoa(d.NewRecords)},
		{"Common", strconv.Itoa(d.CommonRecords)},
		{"Duplicate groups", strconv.Itoa(d.DuplicateGroups)},
		{"Duplicate records", strconv.Itoa(d.DuplicateRecords)},
	}
	if d.AfterCutoffRecords > 0 {
		rows = append(rows, []string{"After ledger cutoff", strconv.Itoa(d.AfterCutoffRecords)})
	}
	b.WriteString(renderTable(
		[]string{"Metric", "Value"},
		rows,
		[]columnAlignment{alignLeft, alignRight},
	))
	b.WriteString("\n")

	for _, uh := range d.Unhashable {
		fmt.Fprintf(&b, "excluded: %s (%s): %s\n", uh.Filename, uh.SourceID, uh.Reason)
	}
	for _, hash := range d.WithinSourceDrift {
		fmt.Fprintf(&b, "name drift within source: %s\n", shortHash(hash))
	}
	for _, pair := range d.AcrossSourceDrift {
		fmt.Fprintf(&b, "name drift vs archive: %s source=%q archive=%q\n",
			shortHash(pair.Hash), pair.SourceFilename, pair.ArchiveFilename)
	}
	return b.String()
}

// LedgerEntries renders the ledger listing.
func LedgerEntries(entries []ledger.Entry) string {
	if len(entries) == 0 {
		return "Ledger is empty.\n"
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		amount := "-"
		if e.AmountTotal.Valid {
			amount = e.AmountTotal.Decimal.String()
			if e.Currency != "" {
				amount += " " + e.Currency
			}
		}
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			shortHash(e.Hash),
			e.Filename,
			formatTime(e.ReceivedAt),
			e.Issuer,
			e.InvoiceNumber,
			amount,
		})
	}
	return renderTable(
		[]string{"ID", "Hash", "Filename", "Received", "Issuer", "Invoice #", "Total"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	) + "\n"
}

// LedgerStats renders the ledger aggregates.
func LedgerStats(stats ledger.Stats) string {
	rows := [][]string{
		{"Entries", strconv.Itoa(stats.Entries)},
		{"Distinct senders", strconv.Itoa(stats.DistinctSenders)},
		{"Earliest receipt", formatTime(stats.Earliest)},
		{"Latest receipt", formatTime(stats.Latest)},
	}
	currencies := make([]string, 0, len(stats.TotalByCurrency))
	for currency := range stats.TotalByCurrency {
		currencies = append(currencies, currency)
	}
	sort.Strings(currencies)
	for _, currency := range currencies {
		rows = append(rows, []string{"Total " + currency, stats.TotalByCurrency[currency].String()})
	}
	return renderTable(
		[]string{"Metric", "Value"},
		rows,
		[]columnAlignment{alignLeft, alignRight},
	) + "\n"
}
