// Package data defines the plain-data value domain shared by the extractor,
// differ, overlay merger and patch planner.
//
// Values are ordinary Go values: nil, bool, int64, float64, string,
// Regex, time.Time, map[string]any (keyed containers) and []any (ordered
// containers, possibly holding Hole gaps), plus the Placeholder sentinel
// standing in for preserved subtrees.
package data

import (
	"math"
	"reflect"
	"time"
)

// Kind partitions plain-data values into the closed variant set the
// recursive algorithms dispatch over.
type Kind int

const (
	Scalar Kind = iota
	Keyed
	Ordered
)

func (k Kind) String() string {
	switch k {
	case Scalar:
		return "Scalar"
	case Keyed:
		return "Keyed"
	case Ordered:
		return "Ordered"
	}
	return "<unknown kind>"
}

// KindOf classifies v. Rich scalar-like values (Regex, time.Time) and
// placeholders are Scalar even though they have structure.
func KindOf(v any) Kind {
	switch v.(type) {
	case map[string]any:
		return Keyed
	case []any:
		return Ordered
	default:
		return Scalar
	}
}

// Regex is the plain-data image of a regular expression literal, compared
// by content.
type Regex struct {
	Pattern string
	Flags   string
}

type hole struct{}

// Hole marks a sparse gap in an ordered container. It is not an own value:
// the differ skips positions holding it and the re-encoder emits an elision
// instead of an explicit value.
var Hole any = hole{}

func IsHole(v any) bool {
	_, ok := v.(hole)
	return ok
}

// LeafEqual reports scalar equality: numerics compare numerically across
// int64/float64, NaN equals NaN, rich values compare by content.
func LeafEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	af, aNum := numeric(a)
	bf, bNum := numeric(b)
	if aNum || bNum {
		if !aNum || !bNum {
			return false
		}
		if math.IsNaN(af) && math.IsNaN(bf) {
			return true
		}
		return af == bf
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case Regex:
		bv, ok := b.(Regex)
		return ok && av == bv
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	case Placeholder:
		bv, ok := b.(Placeholder)
		return ok && av.Is() && bv.Is() && av.Key() == bv.Key()
	case hole:
		return IsHole(b)
	}
	return a == b
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// SameRef reports whether two containers share the same underlying storage.
// For slices this means same backing array, length and capacity; for maps,
// the same map. Non-containers are never SameRef.
func SameRef(a, b any) bool {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok {
			return false
		}
		return reflect.ValueOf(av).Pointer() == reflect.ValueOf(bv).Pointer()
	case []any:
		bv, ok := b.([]any)
		if !ok {
			return false
		}
		if len(av) != len(bv) || cap(av) != cap(bv) {
			return false
		}
		if len(av) == 0 {
			return true
		}
		return &av[0] == &bv[0]
	}
	return false
}
