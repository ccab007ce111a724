package treepatch

import (
	"maps"
	"slices"

	"github.com/signadot/sitepatch/plan"
)

// Result reports what Apply managed to absorb. Unapplied patches keep
// their canonical path keys so callers can point at the exact slot that
// was missing.
type Result struct {
	applied int
	sets    map[string]plan.Patch
	deletes map[string]plan.Patch
}

// Applied returns the number of patches absorbed into the tree, counting
// deletes whose target slot was already absent.
func (r *Result) Applied() int {
	return r.applied
}

func (r *Result) UnappliedCount() int {
	return len(r.sets) + len(r.deletes)
}

// Ok reports whether every patch was absorbed.
func (r *Result) Ok() bool {
	return r.UnappliedCount() == 0
}

// UnappliedSets returns the canonical path keys of set patches that found
// no slot, in sorted order.
func (r *Result) UnappliedSets() []string {
	return slices.Sorted(maps.Keys(r.sets))
}

// UnappliedDeletes returns the canonical path keys of delete patches that
// could not be resolved, in sorted order.
func (r *Result) UnappliedDeletes() []string {
	return slices.Sorted(maps.Keys(r.deletes))
}

// Unapplied returns every unapplied patch keyed by canonical path, set
// patches first, each group sorted.
func (r *Result) Unapplied() []plan.Patch {
	res := make([]plan.Patch, 0, r.UnappliedCount())
	for _, k := range r.UnappliedSets() {
		res = append(res, r.sets[k])
	}
	for _, k := range r.UnappliedDeletes() {
		res = append(res, r.deletes[k])
	}
	return res
}

// First returns the canonical path key of the first unapplied patch, set
// patches taking priority over deletes and lexicographic order breaking
// ties. ok=false when everything applied.
func (r *Result) First() (string, bool) {
	if keys := r.UnappliedSets(); len(keys) > 0 {
		return keys[0], true
	}
	if keys := r.UnappliedDeletes(); len(keys) > 0 {
		return keys[0], true
	}
	return "", false
}
