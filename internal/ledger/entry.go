package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry is one recorded invoice. Amounts are stored as decimal text so the
// database never sees a float.
type Entry struct {
	ID            int64
	Hash          string
	Filename      string
	ReceivedAt    time.Time
	Sender        string
	ArchivePath   string
	Issuer        string
	InvoiceNumber string
	IssuedOn      string
	Currency      string
	AmountTotal   decimal.NullDecimal
	AmountTax     decimal.NullDecimal
	RecordedAt    time.Time
}

// Stats summarizes the ledger for the stats command.
type Stats struct {
	Entries         int
	DistinctSenders int
	Earliest        time.Time
	Latest          time.Time
	TotalByCurrency map[string]decimal.Decimal
}
