package recon

import (
	"testing"

	"tally/internal/records"
)

func TestDetectDriftWithinSource(t *testing.T) {
	resolved := resolveAll(t, []records.Record{
		src("C", "x.pdf", ts(1)),
		src("C", "y.pdf", ts(2)),
		src("D", "same.pdf", ts(3)),
		src("D", "same.pdf", ts(4)),
	})

	flagged := DetectDrift(resolved, nil)

	if !flagged[0].Flags.NameDriftWithinSource || !flagged[1].Flags.NameDriftWithinSource {
		t.Fatalf("hash C should drift within source: %+v %+v", flagged[0].Flags, flagged[1].Flags)
	}
	if flagged[2].Flags.NameDriftWithinSource || flagged[3].Flags.NameDriftWithinSource {
		t.Fatalf("hash D should not drift: %+v %+v", flagged[2].Flags, flagged[3].Flags)
	}
}

func TestDetectDriftAcrossSources(t *testing.T) {
	resolved := resolveAll(t, []records.Record{
		src("D", "D_copy.pdf", ts(1)),
		src("E", "match.pdf", ts(2)),
		src("F", "unarchived.pdf", ts(3)),
	})
	archive := []records.ArchiveRecord{
		{Hash: "D", Filename: "d.pdf"},
		{Hash: "E", Filename: "match.pdf"},
	}

	flagged := DetectDrift(resolved, archive)

	if !flagged[0].Flags.NameDriftAcrossSources {
		t.Fatalf("renamed archived content should drift: %+v", flagged[0].Flags)
	}
	if flagged[1].Flags.NameDriftAcrossSources {
		t.Fatalf("matching names should not drift: %+v", flagged[1].Flags)
	}
	if flagged[2].Flags.NameDriftAcrossSources {
		t.Fatalf("hash absent from archive cannot drift across sources: %+v", flagged[2].Flags)
	}
}

func TestDetectDriftTrimsAndNormalizes(t *testing.T) {
	// Same name, once in NFC and once in NFD with stray whitespace.
	nfc := "r\u00e9sum\u00e9.pdf"
	nfd := " re\u0301sume\u0301.pdf "
	resolved := resolveAll(t, []records.Record{
		src("G", nfc, ts(1)),
		src("G", nfd, ts(2)),
	})
	archive := []records.ArchiveRecord{{Hash: "G", Filename: nfd}}

	flagged := DetectDrift(resolved, archive)
	for _, ann := range flagged {
		if ann.Flags.NameDriftWithinSource {
			t.Fatalf("normalization-equal names flagged within source: %+v", ann.Flags)
		}
		if ann.Flags.NameDriftAcrossSources {
			t.Fatalf("normalization-equal names flagged across sources: %+v", ann.Flags)
		}
	}
}

func TestDetectDriftIsCaseSensitive(t *testing.T) {
	resolved := resolveAll(t, []records.Record{
		src("H", "Invoice.pdf", ts(1)),
		src("H", "invoice.pdf", ts(2)),
	})

	flagged := DetectDrift(resolved, nil)
	if !flagged[0].Flags.NameDriftWithinSource {
		t.Fatalf("case difference must count as drift: %+v", flagged[0].Flags)
	}
}
