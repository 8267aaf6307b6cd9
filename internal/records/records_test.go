package records

import (
	"errors"
	"testing"
	"time"

	"tally/internal/services"
)

func TestValidateSourceEmptyIsValid(t *testing.T) {
	if err := ValidateSource(nil); err != nil {
		t.Fatalf("empty snapshot should validate, got %v", err)
	}
}

func TestValidateSourceMissingFieldEverywhere(t *testing.T) {
	ts := time.Now()
	cases := []struct {
		name  string
		recs  []Record
		field string
	}{
		{
			name: "no hashes",
			recs: []Record{
				{Filename: "a.pdf", ReceivedAt: ts},
				{Filename: "b.pdf", ReceivedAt: ts},
			},
			field: "hash",
		},
		{
			name: "no filenames",
			recs: []Record{
				{Hash: "h1", ReceivedAt: ts},
			},
			field: "filename",
		},
		{
			name: "no timestamps",
			recs: []Record{
				{Hash: "h1", Filename: "a.pdf"},
			},
			field: "received_at",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateSource(tc.recs)
			var sve *SchemaViolationError
			if !errors.As(err, &sve) {
				t.Fatalf("expected SchemaViolationError, got %v", err)
			}
			if sve.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, sve.Field)
			}
		})
	}
}

func TestValidateSourceToleratesPartiallyMissingFields(t *testing.T) {
	recs := []Record{
		{Hash: "", Filename: "a.pdf", ReceivedAt: time.Now()},
		{Hash: "h2", Filename: "b.pdf", ReceivedAt: time.Now()},
	}
	if err := ValidateSource(recs); err != nil {
		t.Fatalf("one missing hash should not fail the snapshot, got %v", err)
	}
}

func TestNewInvoiceRequiresNewFlag(t *testing.T) {
	rec := Record{Hash: "h1", Filename: "a.pdf", ReceivedAt: time.Now()}

	_, err := NewInvoice(rec, Flags{New: false, DuplicateCount: 1})
	if err == nil {
		t.Fatal("expected precondition violation")
	}
	var pve *PreconditionViolationError
	if !errors.As(err, &pve) {
		t.Fatalf("expected PreconditionViolationError, got %T", err)
	}
	if !errors.Is(err, services.ErrPrecondition) {
		t.Fatalf("expected ErrPrecondition marker, got %v", err)
	}
}

func TestNewInvoiceCopiesIdentityFields(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	rec := Record{
		Hash:       "h1",
		Filename:   "march.pdf",
		ReceivedAt: ts,
		SourceID:   "inbox/march.pdf",
		Sender:     "billing@supplier.example",
		Path:       "/data/inbox/march.pdf",
		Size:       1024,
	}

	inv, err := NewInvoice(rec, Flags{New: true, DuplicateCount: 3})
	if err != nil {
		t.Fatalf("NewInvoice: %v", err)
	}
	if inv.Hash != rec.Hash || inv.Filename != rec.Filename || !inv.ReceivedAt.Equal(ts) {
		t.Fatalf("identity fields not copied: %+v", inv)
	}
	if inv.Sender != rec.Sender || inv.Path != rec.Path || inv.Size != rec.Size {
		t.Fatalf("payload fields not copied: %+v", inv)
	}
	if inv.DuplicateCount != 3 {
		t.Fatalf("duplicate count not carried: %+v", inv)
	}
}
