package inbox

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tally/internal/logging"
)

func writeInboxFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadHashesFilesAndFiltersExtensions(t *testing.T) {
	dir := t.TempDir()
	writeInboxFile(t, dir, "invoice.pdf", "invoice body")
	writeInboxFile(t, dir, "notes.txt", "ignored")
	writeInboxFile(t, dir, "nested/scan.png", "image bytes")

	loader := NewLoader(dir, []string{".pdf", ".png"}, logging.NewNop())
	recs, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}

	sum := sha256.Sum256([]byte("invoice body"))
	wantHash := hex.EncodeToString(sum[:])
	var found bool
	for _, rec := range recs {
		if rec.Filename == "invoice.pdf" {
			found = true
			if rec.Hash != wantHash {
				t.Fatalf("hash mismatch: got %q want %q", rec.Hash, wantHash)
			}
			if rec.SourceID != "invoice.pdf" {
				t.Fatalf("unexpected source id: %q", rec.SourceID)
			}
			if rec.Size != int64(len("invoice body")) {
				t.Fatalf("unexpected size: %d", rec.Size)
			}
			if rec.ReceivedAt.IsZero() {
				t.Fatal("expected mtime-based received time")
			}
		}
	}
	if !found {
		t.Fatal("invoice.pdf not loaded")
	}
}

func TestLoadIdenticalContentSharesHash(t *testing.T) {
	dir := t.TempDir()
	writeInboxFile(t, dir, "first.pdf", "same bytes")
	writeInboxFile(t, dir, "second.pdf", "same bytes")

	loader := NewLoader(dir, []string{".pdf"}, logging.NewNop())
	recs, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Hash != recs[1].Hash {
		t.Fatalf("identical content must share a hash: %q vs %q", recs[0].Hash, recs[1].Hash)
	}
}

func TestLoadAppliesSidecarMetadata(t *testing.T) {
	dir := t.TempDir()
	writeInboxFile(t, dir, "invoice.pdf", "body")
	writeInboxFile(t, dir, "invoice.pdf.meta.toml", `
sender = "billing@supplier.example"
source_id = "gmail-1789"
received_at = "2026-02-03T10:30:00Z"
`)

	loader := NewLoader(dir, []string{".pdf"}, logging.NewNop())
	recs, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("sidecar must not load as a record: got %d records", len(recs))
	}

	rec := recs[0]
	if rec.Sender != "billing@supplier.example" {
		t.Fatalf("sender not applied: %q", rec.Sender)
	}
	if rec.SourceID != "gmail-1789" {
		t.Fatalf("source id not applied: %q", rec.SourceID)
	}
	want := time.Date(2026, 2, 3, 10, 30, 0, 0, time.UTC)
	if !rec.ReceivedAt.Equal(want) {
		t.Fatalf("received_at not applied: %v", rec.ReceivedAt)
	}
}

func TestLoadMalformedSidecarTimestampClearsReceivedAt(t *testing.T) {
	dir := t.TempDir()
	writeInboxFile(t, dir, "invoice.pdf", "body")
	writeInboxFile(t, dir, "invoice.pdf.meta.toml", `received_at = "03/02/2026"`)

	loader := NewLoader(dir, []string{".pdf"}, logging.NewNop())
	recs, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if !recs[0].ReceivedAt.IsZero() {
		t.Fatalf("malformed sidecar time must clear ReceivedAt, got %v", recs[0].ReceivedAt)
	}
}

func TestLoadMissingInboxIsEmptySnapshot(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "absent"), []string{".pdf"}, logging.NewNop())
	recs, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("missing inbox should not error: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected empty snapshot, got %d", len(recs))
	}
}
