package libdiff

import (
	"maps"
	"reflect"
	"slices"

	"github.com/signadot/sitepatch/data"
	"github.com/signadot/sitepatch/debug"
	"github.com/signadot/sitepatch/keypath"
)

// Diff compares two plain-data trees and returns the ordered event list.
// A nil cfg means DefaultConfig.
func Diff(prev, next any, cfg *Config) []Event {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	d := &differ{cfg: cfg}
	if len(cfg.ExcludeKeys) > 0 {
		d.exclude = make(map[string]bool, len(cfg.ExcludeKeys))
		for _, k := range cfg.ExcludeKeys {
			d.exclude[k] = true
		}
	}
	events := d.diffValue(prev, next)
	if debug.Diff() {
		for _, ev := range events {
			debug.Logf("diff: %s\n", ev)
		}
	}
	return events
}

type differ struct {
	cfg     *Config
	exclude map[string]bool
	// stack holds the same-kind container pairs being compared on the
	// current recursion branch; it is pushed and popped around recursion so
	// sibling branches sharing references pay no penalty.
	stack []pairFrame
}

type pairFrame struct {
	prev, next uintptr
	kind       data.Kind
}

// diffValue returns events whose paths are local to the compared pair; the
// caller prepends its own segment only onto non-empty results.
func (d *differ) diffValue(prev, next any) []Event {
	prevKind := data.KindOf(prev)
	nextKind := data.KindOf(next)
	if prevKind != nextKind {
		return []Event{{Kind: Change, Old: prev, New: next}}
	}
	switch prevKind {
	case data.Keyed:
		return d.guarded(prev, next, data.Keyed, func() []Event {
			return d.diffKeyed(prev.(map[string]any), next.(map[string]any))
		})
	case data.Ordered:
		return d.diffArrays(prev.([]any), next.([]any))
	default:
		if data.LeafEqual(prev, next) {
			return nil
		}
		return []Event{{Kind: Change, Old: prev, New: next}}
	}
}

// guarded runs f under the cycle guard: if the identical pair is already
// being compared on this branch, it short-circuits with no events.
func (d *differ) guarded(prev, next any, kind data.Kind, f func() []Event) []Event {
	if d.cfg.DisableCycleGuard {
		return f()
	}
	frame := pairFrame{
		prev: reflect.ValueOf(prev).Pointer(),
		next: reflect.ValueOf(next).Pointer(),
		kind: kind,
	}
	if slices.Contains(d.stack, frame) {
		return nil
	}
	d.stack = append(d.stack, frame)
	res := f()
	d.stack = d.stack[:len(d.stack)-1]
	return res
}

func (d *differ) diffKeyed(prev, next map[string]any) []Event {
	var res []Event
	prevKeys := slices.Sorted(maps.Keys(prev))
	for _, k := range prevKeys {
		if d.exclude[k] {
			continue
		}
		prevV := prev[k]
		nextV, present := next[k]
		if !present {
			res = append(res, Event{Kind: Remove, Path: keypath.Path{keypath.Field(k)}, Old: prevV})
			continue
		}
		res = d.appendChild(res, keypath.Field(k), d.diffValue(prevV, nextV))
	}
	nextKeys := slices.Sorted(maps.Keys(next))
	for _, k := range nextKeys {
		if d.exclude[k] {
			continue
		}
		if _, present := prev[k]; present {
			continue
		}
		res = append(res, Event{Kind: Create, Path: keypath.Path{keypath.Field(k)}, New: next[k]})
	}
	return res
}

func (d *differ) diffArrays(prev, next []any) []Event {
	switch d.cfg.Arrays {
	case ArraysIgnore:
		return nil
	case ArraysAtomic:
		if d.arraysEqual(prev, next) {
			return nil
		}
		return []Event{{Kind: Change, Old: prev, New: next}}
	}
	return d.guarded(prev, next, data.Ordered, func() []Event {
		return d.diffIndexed(prev, next)
	})
}

func (d *differ) arraysEqual(prev, next []any) bool {
	if data.SameRef(prev, next) {
		return true
	}
	if d.cfg.ArrayEquality != EqualityShallow {
		return false
	}
	if len(prev) != len(next) {
		return false
	}
	for i := range prev {
		if !identical(prev[i], next[i]) {
			return false
		}
	}
	return true
}

// identical is Object.is-style: containers by reference, scalars by leaf
// equality.
func identical(a, b any) bool {
	if data.KindOf(a) != data.Scalar || data.KindOf(b) != data.Scalar {
		return data.SameRef(a, b)
	}
	return data.LeafEqual(a, b)
}

// diffIndexed treats indices like keys. Holes are not own values: a
// position holding a gap on one side only reads as created or removed on
// the other.
func (d *differ) diffIndexed(prev, next []any) []Event {
	var res []Event
	for i, prevV := range prev {
		if data.IsHole(prevV) {
			continue
		}
		if i >= len(next) || data.IsHole(next[i]) {
			res = append(res, Event{Kind: Remove, Path: keypath.Path{keypath.Index(i)}, Old: prevV})
			continue
		}
		res = d.appendChild(res, keypath.Index(i), d.diffValue(prevV, next[i]))
	}
	for i, nextV := range next {
		if data.IsHole(nextV) {
			continue
		}
		if i < len(prev) && !data.IsHole(prev[i]) {
			continue
		}
		res = append(res, Event{Kind: Create, Path: keypath.Path{keypath.Index(i)}, New: nextV})
	}
	return res
}

func (d *differ) appendChild(res []Event, seg keypath.Segment, children []Event) []Event {
	for _, ev := range children {
		ev.Path = ev.Path.Prepend(seg)
		res = append(res, ev)
	}
	return res
}
