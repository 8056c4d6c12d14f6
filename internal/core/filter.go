package core

import (
	"fmt"
	"strings"
)

// MerchantFilter excludes transactions whose merchant matches a configured
// set of names. Matching is case-insensitive exact match after uppercasing
// both sides. A zero-value filter excludes nothing.
type MerchantFilter struct {
	names map[string]struct{}
}

// NewMerchantFilter builds a filter from the given merchant names.
func NewMerchantFilter(names ...string) MerchantFilter {
	if len(names) == 0 {
		return MerchantFilter{}
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[strings.ToUpper(strings.TrimSpace(n))] = struct{}{}
	}
	return MerchantFilter{names: set}
}

// Enabled reports whether the filter has any configured names.
func (f MerchantFilter) Enabled() bool {
	return len(f.names) > 0
}

// Excludes reports whether t should be dropped before aggregation.
// A transaction without a merchant cannot be classified and reports
// ErrInvalidRecord for that record.
func (f MerchantFilter) Excludes(t Transaction) (bool, error) {
	if !f.Enabled() {
		return false, nil
	}
	if t.Merchant == "" {
		return false, fmt.Errorf("%w: missing merchant (transaction %s)", ErrInvalidRecord, t.ID)
	}
	_, ok := f.names[strings.ToUpper(t.Merchant)]
	return ok, nil
}
