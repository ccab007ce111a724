package plan

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/signadot/sitepatch/keypath"
)

// Plan is the consolidated patch set: one patch per canonical path, with
// the winning phase retained for diagnostics.
type Plan struct {
	byKey map[string]Patch
	phase map[string]Phase
}

// PreservedPathError rejects patches whose paths traverse a preserved key
// before they ever reach the patcher.
type PreservedPathError struct {
	Keys []string
}

func (e *PreservedPathError) Error() string {
	return fmt.Sprintf("patch paths traverse preserved keys: %s",
		strings.Join(e.Keys, ", "))
}

// Consolidate merges the groups in presentation order; later groups win per
// canonical path. Any patch addressing a path through a preserved key is
// rejected.
func Consolidate(preserved map[string]bool, groups ...[]Patch) (*Plan, error) {
	res := &Plan{
		byKey: map[string]Patch{},
		phase: map[string]Phase{},
	}
	var rejected []string
	for _, group := range groups {
		for _, p := range group {
			if traversesPreserved(p.Path, preserved) {
				rejected = append(rejected, p.Path.Key())
				continue
			}
			key := p.Path.Key()
			res.byKey[key] = p
			res.phase[key] = p.Phase
		}
	}
	if len(rejected) > 0 {
		slices.Sort(rejected)
		return nil, &PreservedPathError{Keys: slices.Compact(rejected)}
	}
	return res, nil
}

func traversesPreserved(path keypath.Path, preserved map[string]bool) bool {
	for _, seg := range path {
		if !seg.IsIndex() && preserved[seg.FieldName()] {
			return true
		}
	}
	return false
}

func (p *Plan) Len() int {
	return len(p.byKey)
}

// Keys returns the canonical path keys in sorted order.
func (p *Plan) Keys() []string {
	return slices.Sorted(maps.Keys(p.byKey))
}

func (p *Plan) Get(key string) (Patch, bool) {
	patch, ok := p.byKey[key]
	return patch, ok
}

// PhaseOf reports the winning phase for a canonical path key.
func (p *Plan) PhaseOf(key string) (Phase, bool) {
	ph, ok := p.phase[key]
	return ph, ok
}

// Patches returns the consolidated patches in canonical key order.
func (p *Plan) Patches() []Patch {
	keys := p.Keys()
	res := make([]Patch, 0, len(keys))
	for _, k := range keys {
		res = append(res, p.byKey[k])
	}
	return res
}
