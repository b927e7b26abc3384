package duplicates

import (
	"errors"
	"fmt"

	"github.com/aristath/cartera/internal/domain"
)

// Policy decides what valuation does with duplicate groups.
type Policy string

const (
	// PolicyExclude drops every member of a duplicate group.
	PolicyExclude Policy = "exclude"
	// PolicyConsolidate keeps the member with the highest book value.
	PolicyConsolidate Policy = "consolidate"
	// PolicyKeep counts every position.
	PolicyKeep Policy = "keep"
)

// ErrUnknownPolicy is returned by ParsePolicy for an unrecognised name.
var ErrUnknownPolicy = errors.New("unknown duplicate policy")

// ParsePolicy returns the policy registered under name.
func ParsePolicy(name string) (Policy, error) {
	switch p := Policy(name); p {
	case PolicyExclude, PolicyConsolidate, PolicyKeep:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
}

// Apply returns the positions the policy counts and the ones it leaves out.
// An empty policy behaves like PolicyExclude.
func (p Policy) Apply(positions []domain.Position) (kept, dropped []domain.Position) {
	switch p {
	case PolicyKeep:
		return positions, nil
	case PolicyConsolidate:
		kept = ConsolidateDuplicates(positions)
	default:
		kept = FilterDuplicates(positions)
	}
	if len(kept) == len(positions) {
		return kept, nil
	}

	counted := make(map[domain.Position]bool, len(kept))
	for _, k := range kept {
		counted[k] = true
	}
	for _, pos := range positions {
		if !counted[pos] {
			dropped = append(dropped, pos)
		}
	}
	return kept, dropped
}
