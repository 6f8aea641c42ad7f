package report

import (
	"fmt"

	"github.com/finmate/finmate/pkg/aggregation"
)

// Scope selects whose transactions a report covers.
type Scope string

const (
	Personal Scope = "personal"
	// Family covers every member of the current user's family, or only the user without one.
	Family Scope = "family"
)

// ParseScope reads the scope query parameter. An empty value means Personal.
func ParseScope(value string) (Scope, error) {
	switch Scope(value) {
	case "", Personal:
		return Personal, nil
	case Family:
		return Family, nil
	default:
		return "", fmt.Errorf("%w: unknown scope %q", ErrInvalidScope, value)
	}
}

// Preview is the stateless evaluation of a client-supplied transaction log.
type Preview struct {
	TransactionCount int
	Summary          aggregation.Summary
	Timeline         []aggregation.DateGroup
}
