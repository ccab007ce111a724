// Package plan turns differ output, derived values and prune keys into a
// flat list of leaf-only patch operations, then consolidates them per
// canonical path.
package plan

import (
	"maps"
	"slices"

	"github.com/signadot/sitepatch/data"
	"github.com/signadot/sitepatch/debug"
	"github.com/signadot/sitepatch/keypath"
	"github.com/signadot/sitepatch/libdiff"
	"github.com/signadot/sitepatch/overlay"
)

type Op int

const (
	// Set overwrites the value at an existing slot.
	Set Op = iota
	// Delete removes a keyed-container slot, or clears an ordered-container
	// slot to a hole.
	Delete
)

func (o Op) String() string {
	if o == Delete {
		return "delete"
	}
	return "set"
}

// Phase records which planning group produced a patch. It is diagnostic
// only; consolidation semantics do not depend on it.
type Phase int

const (
	PhaseDiff Phase = iota
	PhaseDerive
	PhasePrune
)

func (p Phase) String() string {
	switch p {
	case PhaseDiff:
		return "diff"
	case PhaseDerive:
		return "derive"
	case PhasePrune:
		return "prune"
	}
	return "<unknown phase>"
}

type Patch struct {
	Op    Op
	Path  keypath.Path
	Value any // Set only
	Phase Phase
}

func (p Patch) String() string {
	if p.Op == Delete {
		return "delete " + p.Path.Key()
	}
	return "set " + p.Path.Key()
}

// Coerce plans the diff-phase group: the differ runs against extracted data
// and the overlay of validated onto extracted. Only Change events become
// patches; Create and Remove are discarded since there is no slot to insert
// and deleting would discard passthrough data the validator never saw.
//
// Non-keyed roots degrade to an empty group.
func Coerce(extracted, validated any, preserved map[string]bool, cfg *libdiff.Config) []Patch {
	base, ok := extracted.(map[string]any)
	if !ok {
		return nil
	}
	over, ok := validated.(map[string]any)
	if !ok {
		return nil
	}
	target := overlay.Apply(base, over, preserved)
	events := libdiff.Diff(base, target, cfg)
	var res []Patch
	for _, ev := range events {
		if ev.Kind != libdiff.Change {
			continue
		}
		res = append(res, Patch{
			Op:    Set,
			Path:  ev.Path,
			Value: ev.New,
			Phase: PhaseDiff,
		})
	}
	if debug.Plan() {
		debug.Logf("plan: coerce group has %d patches of %d events\n", len(res), len(events))
	}
	return res
}

// Derive plans the derive-phase group: every key/value pair of every
// emitted record becomes a root-level set.
func Derive(emitted []map[string]any) []Patch {
	var res []Patch
	for _, record := range emitted {
		for _, k := range slices.Sorted(maps.Keys(record)) {
			res = append(res, Patch{
				Op:    Set,
				Path:  keypath.Path{keypath.Field(k)},
				Value: record[k],
				Phase: PhaseDerive,
			})
		}
	}
	return res
}

// Prune plans the prune-phase group: every configured key that is an own,
// non-preserved key of the extracted data becomes a root-level delete.
// Absent keys have nothing to remove and are skipped.
func Prune(extracted map[string]any, pruneKeys []string, preserved map[string]bool) []Patch {
	var res []Patch
	for _, k := range pruneKeys {
		if preserved[k] {
			continue
		}
		if _, own := extracted[k]; !own {
			continue
		}
		res = append(res, Patch{
			Op:    Delete,
			Path:  keypath.Path{keypath.Field(k)},
			Phase: PhasePrune,
		})
	}
	return res
}

// holeFree reports whether v contains no gaps; used by the JSON export.
func holeFree(v any) bool {
	switch t := v.(type) {
	case []any:
		for _, e := range t {
			if data.IsHole(e) || !holeFree(e) {
				return false
			}
		}
	case map[string]any:
		for _, e := range t {
			if !holeFree(e) {
				return false
			}
		}
	}
	return true
}
