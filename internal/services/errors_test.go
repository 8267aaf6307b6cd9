package services

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("boom")
	err := Wrap(ErrValidation, "ledger", "append", "row rejected", base)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped base error, got %v", err)
	}
	if !strings.Contains(err.Error(), "ledger: append: row rejected") {
		t.Fatalf("unexpected detail: %v", err)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "", "", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestIsFatal(t *testing.T) {
	cases := []struct {
		err   error
		fatal bool
	}{
		{Wrap(ErrValidation, "records", "validate", "bad snapshot", nil), true},
		{Wrap(ErrConfiguration, "config", "load", "", nil), true},
		{Wrap(ErrPrecondition, "recon", "invoice", "", nil), true},
		{Wrap(ErrExternalTool, "extract", "call", "", nil), false},
		{Wrap(ErrTransient, "archive", "copy", "", nil), false},
	}
	for _, tc := range cases {
		if got := IsFatal(tc.err); got != tc.fatal {
			t.Fatalf("IsFatal(%v) = %v, want %v", tc.err, got, tc.fatal)
		}
	}
}
