package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"tally/internal/config"
	"tally/internal/records"
	"tally/internal/services"
)

// Store manages ledger persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const entryColumns = "id, hash, filename, received_at, sender, archive_path, issuer, invoice_number, issued_on, currency, amount_total, amount_tax, recorded_at"

// Open initializes or connects to the ledger database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.Paths.LedgerPath
	// The pragmas below must hold on every pooled connection, not just the
	// one that ran them, so they are also passed in the DSN.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Append records one invoice. The unique constraint on hash makes the write
// idempotent across reruns; a second append of the same content is rejected.
func (s *Store) Append(ctx context.Context, entry Entry) (int64, error) {
	ctx = ensureContext(ctx)
	if entry.Hash == "" {
		return 0, services.Wrap(services.ErrValidation, "ledger", "append", "entry hash is required", nil)
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO invoices (hash, filename, received_at, sender, archive_path, issuer, invoice_number, issued_on, currency, amount_total, amount_tax, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Hash,
		entry.Filename,
		entry.ReceivedAt.UTC().Format(time.RFC3339Nano),
		nullableString(entry.Sender),
		nullableString(entry.ArchivePath),
		nullableString(entry.Issuer),
		nullableString(entry.InvoiceNumber),
		nullableString(entry.IssuedOn),
		nullableString(entry.Currency),
		nullableDecimal(entry.AmountTotal),
		nullableDecimal(entry.AmountTax),
		entry.RecordedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, services.Wrap(services.ErrValidation, "ledger", "append",
				fmt.Sprintf("invoice %s already recorded", entry.Hash), err)
		}
		return 0, fmt.Errorf("append ledger entry: %w", err)
	}
	return res.LastInsertId()
}

// LoadAll returns the ledger snapshot the reconciliation engine classifies
// against.
func (s *Store) LoadAll(ctx context.Context) ([]records.LedgerRecord, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, "SELECT hash, filename, received_at FROM invoices ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("load ledger snapshot: %w", err)
	}
	defer rows.Close()

	var recs []records.LedgerRecord
	for rows.Next() {
		var (
			hash        string
			filename    string
			receivedRaw string
		)
		if err := rows.Scan(&hash, &filename, &receivedRaw); err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		rec := records.LedgerRecord{Hash: hash, Filename: filename}
		if received, err := parseTimeString(receivedRaw); err == nil {
			rec.ReceivedAt = received
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger rows: %w", err)
	}
	return recs, nil
}

// Entries returns all recorded invoices, newest first.
func (s *Store) Entries(ctx context.Context) ([]Entry, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM invoices ORDER BY received_at DESC, id DESC", entryColumns))
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger entries: %w", err)
	}
	return entries, nil
}

// Stats aggregates the ledger: entry count, distinct senders, receipt time
// range, and a per-currency total over the extracted amounts.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	ctx = ensureContext(ctx)
	stats := Stats{TotalByCurrency: make(map[string]decimal.Decimal)}

	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1), COUNT(DISTINCT sender), MIN(received_at), MAX(received_at) FROM invoices`)
	var (
		minRaw sql.NullString
		maxRaw sql.NullString
	)
	if err := row.Scan(&stats.Entries, &stats.DistinctSenders, &minRaw, &maxRaw); err != nil {
		return Stats{}, fmt.Errorf("aggregate ledger: %w", err)
	}
	if minRaw.Valid {
		if t, err := parseTimeString(minRaw.String); err == nil {
			stats.Earliest = t
		}
	}
	if maxRaw.Valid {
		if t, err := parseTimeString(maxRaw.String); err == nil {
			stats.Latest = t
		}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT currency, amount_total FROM invoices WHERE currency IS NOT NULL AND amount_total IS NOT NULL`)
	if err != nil {
		return Stats{}, fmt.Errorf("aggregate ledger amounts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var currency, amountRaw string
		if err := rows.Scan(&currency, &amountRaw); err != nil {
			return Stats{}, fmt.Errorf("scan ledger amount: %w", err)
		}
		amount, err := decimal.NewFromString(amountRaw)
		if err != nil {
			continue
		}
		stats.TotalByCurrency[currency] = stats.TotalByCurrency[currency].Add(amount)
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("iterate ledger amounts: %w", err)
	}
	return stats, nil
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (Entry, error) {
	var (
		id            int64
		hash          string
		filename      string
		receivedRaw   string
		sender        sql.NullString
		archivePath   sql.NullString
		issuer        sql.NullString
		invoiceNumber sql.NullString
		issuedOn      sql.NullString
		currency      sql.NullString
		amountTotal   sql.NullString
		amountTax     sql.NullString
		recordedRaw   string
	)

	if err := scanner.Scan(
		&id,
		&hash,
		&filename,
		&receivedRaw,
		&sender,
		&archivePath,
		&issuer,
		&invoiceNumber,
		&issuedOn,
		&currency,
		&amountTotal,
		&amountTax,
		&recordedRaw,
	); err != nil {
		return Entry{}, err
	}

	entry := Entry{
		ID:            id,
		Hash:          hash,
		Filename:      filename,
		Sender:        sender.String,
		ArchivePath:   archivePath.String,
		Issuer:        issuer.String,
		InvoiceNumber: invoiceNumber.String,
		IssuedOn:      issuedOn.String,
		Currency:      currency.String,
	}
	if received, err := parseTimeString(receivedRaw); err == nil {
		entry.ReceivedAt = received
	}
	if recorded, err := parseTimeString(recordedRaw); err == nil {
		entry.RecordedAt = recorded
	}
	if amountTotal.Valid {
		if d, err := decimal.NewFromString(amountTotal.String); err == nil {
			entry.AmountTotal = decimal.NewNullDecimal(d)
		}
	}
	if amountTax.Valid {
		if d, err := decimal.NewFromString(amountTax.String); err == nil {
			entry.AmountTax = decimal.NewNullDecimal(d)
		}
	}
	return entry, nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableDecimal(value decimal.NullDecimal) any {
	if !value.Valid {
		return nil
	}
	return value.Decimal.String()
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "constraint failed")
}
