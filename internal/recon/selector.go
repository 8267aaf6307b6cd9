package recon

import (
	"fmt"

	"tally/internal/records"
)

// Policy selects which occurrence of a duplicated hash becomes the canonical
// work item.
type Policy string

const (
	// PolicyEarliest processes the first sighting of new content and treats
	// later re-deliveries as noise. This is the default.
	PolicyEarliest Policy = "earliest"
	// PolicyLatest processes the most recent sighting instead. Kept because
	// earlier generations of this pipeline selected the last version per hash.
	PolicyLatest Policy = "latest"
)

// ParsePolicy converts a configuration string into a Policy.
func ParsePolicy(value string) (Policy, error) {
	switch Policy(value) {
	case PolicyEarliest:
		return PolicyEarliest, nil
	case PolicyLatest:
		return PolicyLatest, nil
	default:
		return "", fmt.Errorf("unknown canonical policy %q", value)
	}
}

func (p Policy) picks(flags records.Flags) bool {
	if p == PolicyLatest {
		return flags.Latest
	}
	return flags.Earliest
}

// SelectCanonical filters fully classified records down to the must-process
// set (new content, canonical occurrence per policy) and builds one Invoice
// per hash. The grouping invariant of exactly one earliest and one latest per
// hash group guarantees the emitted invoices are hash-unique.
func SelectCanonical(classified []Annotated, policy Policy) ([]records.Invoice, error) {
	invoices := make([]records.Invoice, 0)
	for _, ann := range classified {
		if !ann.Flags.New || !policy.picks(ann.Flags) {
			continue
		}
		inv, err := records.NewInvoice(ann.Record, ann.Flags)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}
