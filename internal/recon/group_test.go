package recon

import (
	"testing"
	"time"

	"tally/internal/records"
)

func ts(offset int) time.Time {
	return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(offset) * time.Minute)
}

func src(hash, filename string, received time.Time) records.Record {
	return records.Record{
		Hash:       hash,
		Filename:   filename,
		ReceivedAt: received,
		SourceID:   "msg-" + hash + "-" + filename,
	}
}

func TestResolveCountsDuplicatesAndFlagsExtremes(t *testing.T) {
	input := []records.Record{
		src("A", "f1.pdf", ts(10)),
		src("A", "f1.pdf", ts(5)),
		src("B", "solo.pdf", ts(1)),
	}

	resolved, errs := Resolve(input)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(resolved) != 3 {
		t.Fatalf("expected 3 resolved records, got %d", len(resolved))
	}

	for _, ann := range resolved[:2] {
		if ann.Flags.DuplicateCount != 2 || !ann.Flags.Duplicated {
			t.Fatalf("hash A flags wrong: %+v", ann.Flags)
		}
	}
	if resolved[0].Flags.Earliest || !resolved[0].Flags.Latest {
		t.Fatalf("t=10 record should be latest only: %+v", resolved[0].Flags)
	}
	if !resolved[1].Flags.Earliest || resolved[1].Flags.Latest {
		t.Fatalf("t=5 record should be earliest only: %+v", resolved[1].Flags)
	}

	solo := resolved[2]
	if solo.Flags.DuplicateCount != 1 || solo.Flags.Duplicated {
		t.Fatalf("singleton flags wrong: %+v", solo.Flags)
	}
	if !solo.Flags.Earliest || !solo.Flags.Latest {
		t.Fatalf("singleton should be both earliest and latest: %+v", solo.Flags)
	}
}

func TestResolveExactlyOneEarliestAndLatestPerGroup(t *testing.T) {
	input := []records.Record{
		src("H", "a.pdf", ts(3)),
		src("H", "b.pdf", ts(3)),
		src("H", "c.pdf", ts(3)),
	}

	resolved, _ := Resolve(input)
	earliest, latest := 0, 0
	for _, ann := range resolved {
		if ann.Flags.Earliest {
			earliest++
		}
		if ann.Flags.Latest {
			latest++
		}
	}
	if earliest != 1 || latest != 1 {
		t.Fatalf("expected exactly one earliest and latest, got %d/%d", earliest, latest)
	}
	// Ties break on input order: the first record wins both.
	if !resolved[0].Flags.Earliest || !resolved[0].Flags.Latest {
		t.Fatalf("first-seen record should win ties: %+v", resolved[0].Flags)
	}
}

func TestResolveExcludesUnhashableRecords(t *testing.T) {
	input := []records.Record{
		src("A", "good.pdf", ts(0)),
		{Filename: "nohash.pdf", ReceivedAt: ts(1), SourceID: "msg-nohash"},
		{Hash: "B", Filename: "notime.pdf", SourceID: "msg-notime"},
	}

	resolved, errs := Resolve(input)
	if len(resolved) != 1 {
		t.Fatalf("expected 1 resolved record, got %d", len(resolved))
	}
	if len(errs) != 2 {
		t.Fatalf("expected 2 unhashable errors, got %d", len(errs))
	}
	if errs[0].Reason != ReasonMissingHash || errs[0].SourceID != "msg-nohash" {
		t.Fatalf("unexpected first error: %+v", errs[0])
	}
	if errs[1].Reason != ReasonMissingTimestamp || errs[1].SourceID != "msg-notime" {
		t.Fatalf("unexpected second error: %+v", errs[1])
	}
}

func TestResolveEmptyInput(t *testing.T) {
	resolved, errs := Resolve(nil)
	if len(resolved) != 0 || len(errs) != 0 {
		t.Fatalf("expected empty outputs, got %d/%d", len(resolved), len(errs))
	}
}
