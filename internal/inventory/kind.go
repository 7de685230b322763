// Package inventory reconciles ingredient inventory against planned batch usage.
//
// Everything here is pure: the functions take already-shaped records and
// never fail. Ordering is part of the contract; every collection keeps the
// order in which items were first seen.
package inventory

import (
	"fmt"
	"strings"

	"github.com/starford/brewstock/internal/apperr"
)

// Kind identifies an ingredient family.
type Kind string

// Supported ingredient kinds.
const (
	KindFermentables Kind = "fermentables"
	KindHops         Kind = "hops"
)

// Kinds lists every kind in dashboard order.
var Kinds = []Kind{KindFermentables, KindHops}

// ParseKind converts user input into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindFermentables:
		return KindFermentables, nil
	case KindHops:
		return KindHops, nil
	}
	return "", fmt.Errorf("%w: %q", apperr.ErrInvalidKind, s)
}

// Policy returns the per-batch usage policy for the kind.
// Fermentables count only the first matching entry of a batch; hops sum
// every addition.
func (k Kind) Policy() UsagePolicy {
	if k == KindHops {
		return SumAll
	}
	return FirstMatch
}

// Title is the human-readable table title.
func (k Kind) Title() string {
	switch k {
	case KindFermentables:
		return "Fermentables"
	case KindHops:
		return "Hops"
	}
	return string(k)
}

// CategoryName names the attribute used to group columns.
func (k Kind) CategoryName() string {
	if k == KindHops {
		return "Origin"
	}
	return "Supplier"
}
