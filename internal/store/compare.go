package store

import (
	"cmp"
	"context"
	"slices"

	"github.com/roach88/rvcomply/internal/ir"
)

// Change is one test whose classification differs between two runs.
type Change struct {
	TestClass string    `json:"class"`
	Name      string    `json:"name"`
	Before    ir.Status `json:"before"`
	After     ir.Status `json:"after"`

	// Added is true when the test only appears in the second run, Removed
	// when it only appears in the first. The missing side is Pending.
	Added   bool `json:"added,omitempty"`
	Removed bool `json:"removed,omitempty"`
}

// Comparison is the result of comparing two runs.
type Comparison struct {
	Before  RunRecord `json:"before"`
	After   RunRecord `json:"after"`
	Changes []Change  `json:"changes"`
}

// Identical reports whether both runs classified every test the same way.
func (c *Comparison) Identical() bool {
	return c.Before.Fingerprint == c.After.Fingerprint
}

// Compare returns the tests whose status differs between runs a and b,
// sorted by class then name. Returns ErrRunNotFound if either run is
// missing.
func (s *Store) Compare(ctx context.Context, a, b string) (*Comparison, error) {
	before, err := s.ReadRun(ctx, a)
	if err != nil {
		return nil, err
	}
	after, err := s.ReadRun(ctx, b)
	if err != nil {
		return nil, err
	}

	cmpResult := &Comparison{Before: before.RunRecord, After: after.RunRecord, Changes: []Change{}}

	afterByKey := make(map[string]OutcomeRecord, len(after.Outcomes))
	for _, o := range after.Outcomes {
		afterByKey[o.Key()] = o
	}

	for _, o := range before.Outcomes {
		next, ok := afterByKey[o.Key()]
		delete(afterByKey, o.Key())
		switch {
		case !ok:
			cmpResult.Changes = append(cmpResult.Changes, Change{
				TestClass: o.TestClass, Name: o.Name,
				Before: o.Verdict.Status, After: ir.Pending, Removed: true,
			})
		case next.Verdict.Status != o.Verdict.Status:
			cmpResult.Changes = append(cmpResult.Changes, Change{
				TestClass: o.TestClass, Name: o.Name,
				Before: o.Verdict.Status, After: next.Verdict.Status,
			})
		}
	}
	for _, o := range afterByKey {
		cmpResult.Changes = append(cmpResult.Changes, Change{
			TestClass: o.TestClass, Name: o.Name,
			Before: ir.Pending, After: o.Verdict.Status, Added: true,
		})
	}

	slices.SortFunc(cmpResult.Changes, func(x, y Change) int {
		return cmp.Or(cmp.Compare(x.TestClass, y.TestClass), cmp.Compare(x.Name, y.Name))
	})
	return cmpResult, nil
}
