// Package overlay left-joins validated data onto extracted data, producing
// the structural differ's target.
//
// The base fixes the topology: keys absent from base are never added, keys
// the overlay omits are retained unchanged. Preserved keys always keep the
// base's value. Unchanged subtrees keep the base's reference identity,
// which the differ's reference array equality depends on.
package overlay

import (
	"github.com/signadot/sitepatch/data"
)

// Apply merges over onto base under the fixed-topology rules. When nothing
// diverges the original base reference is returned.
func Apply(base, over map[string]any, preserved map[string]bool) map[string]any {
	merged, _ := applyKeyed(base, over, preserved)
	return merged
}

func applyKeyed(base, over map[string]any, preserved map[string]bool) (map[string]any, bool) {
	var res map[string]any
	for k, baseV := range base {
		if preserved[k] {
			continue
		}
		overV, present := over[k]
		if !present {
			continue
		}
		v, changed := applyValue(baseV, overV, preserved)
		if !changed {
			continue
		}
		if res == nil {
			res = make(map[string]any, len(base))
			for bk, bv := range base {
				res[bk] = bv
			}
		}
		res[k] = v
	}
	if res == nil {
		return base, false
	}
	return res, true
}

func applyValue(baseV, overV any, preserved map[string]bool) (any, bool) {
	if identical(baseV, overV) {
		return baseV, false
	}
	baseKind := data.KindOf(baseV)
	overKind := data.KindOf(overV)
	switch {
	case baseKind == data.Keyed && overKind == data.Keyed:
		return applyKeyed(baseV.(map[string]any), overV.(map[string]any), preserved)
	case baseKind == data.Ordered && overKind == data.Ordered:
		// ordered containers replace atomically: no index merge
		return overV, true
	default:
		return overV, true
	}
}

func identical(a, b any) bool {
	if data.KindOf(a) != data.Scalar || data.KindOf(b) != data.Scalar {
		return data.SameRef(a, b)
	}
	return data.LeafEqual(a, b)
}
