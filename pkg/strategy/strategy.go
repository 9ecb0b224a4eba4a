// Package strategy implements the pluggable planning step (spec §4.A/§9.1):
// a pure function that turns the source commits and hunks of a range into an
// ordered list of planned commits. Strategies never touch the backing VCS or
// the index; they only decide grouping and description.
package strategy

import (
	"github.com/fumiya-kume/reorg/pkg/diffmodel"
	"github.com/fumiya-kume/reorg/pkg/errors"
)

// Strategy groups a range's hunks into an ordered list of planned commits.
// Implementations must not mutate sourceCommits or hunks.
type Strategy func(sourceCommits []diffmodel.SourceCommit, hunks []diffmodel.Hunk) ([]diffmodel.PlannedCommit, error)

// Registry maps a strategy's configured name (matching pkg/config's
// Reorg.Strategy field) to its implementation.
var Registry = map[string]Strategy{
	"preserve": Preserve,
	"by-file":  ByFile,
	"squash":   Squash,
	"absorb":   Absorb,
}

// Lookup resolves a configured strategy name, or reports ErrorTypeValidation
// if the name isn't one of Registry's keys.
func Lookup(name string) (Strategy, error) {
	s, ok := Registry[name]
	if !ok {
		return nil, errors.NewError(errors.ErrorTypeValidation).
			WithMessagef("unknown strategy %q", name).
			Build()
	}
	return s, nil
}

// noHunksErr is returned by every strategy when given an empty hunk set:
// there is nothing to plan.
func noHunksErr() error {
	return errors.NewError(errors.ErrorTypePlan).
		WithMessage("no hunks to reorganize").
		Build()
}
