package recon

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"tally/internal/records"
)

// DetectDrift flags filename inconsistency for a hash, both inside the source
// snapshot and between the source and the archive. Drift is advisory: it is
// surfaced to operators and never influences the new/common decision.
//
// Comparison is case-sensitive on trimmed, NFC-normalized names. Mail
// gateways and file stores disagree on NFC/NFD for accented filenames, and
// without normalization every such pair would look like drift.
func DetectDrift(resolved []Annotated, archive []records.ArchiveRecord) []Annotated {
	namesByHash := make(map[string]map[string]struct{}, len(resolved))
	for _, ann := range resolved {
		hash := ann.Record.Hash
		set, ok := namesByHash[hash]
		if !ok {
			set = make(map[string]struct{}, 1)
			namesByHash[hash] = set
		}
		set[canonicalName(ann.Record.Filename)] = struct{}{}
	}

	// First archived filename per hash, mirroring how the archive itself
	// resolves duplicate content.
	archiveNames := make(map[string]string, len(archive))
	for _, rec := range archive {
		if rec.Hash == "" {
			continue
		}
		if _, ok := archiveNames[rec.Hash]; !ok {
			archiveNames[rec.Hash] = canonicalName(rec.Filename)
		}
	}

	out := make([]Annotated, len(resolved))
	copy(out, resolved)
	for i := range out {
		hash := out[i].Record.Hash
		out[i].Flags.NameDriftWithinSource = len(namesByHash[hash]) > 1
		if archived, ok := archiveNames[hash]; ok {
			out[i].Flags.NameDriftAcrossSources = canonicalName(out[i].Record.Filename) != archived
		}
	}
	return out
}

func canonicalName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
