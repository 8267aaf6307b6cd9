package extract

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseFields(t *testing.T) {
	data := []byte(`{
		"issuer": " ACME GmbH ",
		"invoice_number": "INV-2026-0042",
		"issued_on": "2026-01-15",
		"currency": "eur",
		"amount_total": "1190.50",
		"amount_tax": "190.50"
	}`)

	fields, err := parseFields(data)
	if err != nil {
		t.Fatalf("parseFields: %v", err)
	}
	if fields.Issuer != "ACME GmbH" {
		t.Fatalf("issuer not trimmed: %q", fields.Issuer)
	}
	if fields.Currency != "EUR" {
		t.Fatalf("currency not normalized: %q", fields.Currency)
	}
	if !fields.AmountTotal.Valid || !fields.AmountTotal.Decimal.Equal(decimal.RequireFromString("1190.50")) {
		t.Fatalf("amount_total not parsed: %+v", fields.AmountTotal)
	}
	if !fields.AmountTax.Valid || !fields.AmountTax.Decimal.Equal(decimal.RequireFromString("190.50")) {
		t.Fatalf("amount_tax not parsed: %+v", fields.AmountTax)
	}
}

func TestParseFieldsToleratesMissingAmounts(t *testing.T) {
	fields, err := parseFields([]byte(`{"issuer": "ACME", "amount_total": "", "amount_tax": "n/a"}`))
	if err != nil {
		t.Fatalf("parseFields: %v", err)
	}
	if fields.AmountTotal.Valid {
		t.Fatal("empty amount must stay null")
	}
	if fields.AmountTax.Valid {
		t.Fatal("unparsable amount must stay null")
	}
}

func TestParseFieldsRejectsMalformedJSON(t *testing.T) {
	if _, err := parseFields([]byte(`not json`)); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestMimeForFilename(t *testing.T) {
	cases := map[string]string{
		"invoice.pdf":  "application/pdf",
		"scan.PNG":     "image/png",
		"photo.jpeg":   "image/jpeg",
		"photo.jpg":    "image/jpeg",
		"unknown.bin":  "application/octet-stream",
		"no-extension": "application/octet-stream",
	}
	for name, want := range cases {
		if got := mimeForFilename(name); got != want {
			t.Fatalf("mimeForFilename(%q) = %q, want %q", name, got, want)
		}
	}
}
