package libdiff

import (
	"testing"
	"time"

	"github.com/signadot/sitepatch/data"
)

func eventSummary(events []Event) []string {
	var res []string
	for _, ev := range events {
		res = append(res, ev.Kind.String()+" "+ev.Path.Key())
	}
	return res
}

func checkSummary(t *testing.T, events []Event, want []string) {
	t.Helper()
	got := eventSummary(events)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d = %q, want %q (all: %v)", i, got[i], want[i], got)
		}
	}
}

func TestDiffDeterministicOrder(t *testing.T) {
	prev := map[string]any{"a": int64(1), "b": int64(2)}
	next := map[string]any{"b": int64(3), "c": int64(4)}
	events := Diff(prev, next, nil)
	checkSummary(t, events, []string{"remove $.a", "change $.b", "create $.c"})
	if events[0].Old != int64(1) {
		t.Errorf("remove carries old value: %v", events[0].Old)
	}
	if events[1].Old != int64(2) || events[1].New != int64(3) {
		t.Errorf("change carries both values: %v -> %v", events[1].Old, events[1].New)
	}
	if events[2].New != int64(4) {
		t.Errorf("create carries new value: %v", events[2].New)
	}
}

func TestDiffNested(t *testing.T) {
	prev := map[string]any{
		"spec": map[string]any{
			"replicas": int64(1),
			"extra":    "keep",
		},
	}
	next := map[string]any{
		"spec": map[string]any{
			"replicas": int64(3),
			"extra":    "keep",
		},
	}
	checkSummary(t, Diff(prev, next, nil), []string{"change $.spec.replicas"})
}

func TestDiffKindMismatchIsLeafChange(t *testing.T) {
	prev := map[string]any{"v": map[string]any{"a": int64(1)}}
	next := map[string]any{"v": []any{int64(1)}}
	checkSummary(t, Diff(prev, next, nil), []string{"change $.v"})
}

func TestDiffArraysAtomicReference(t *testing.T) {
	shared := []any{int64(1), int64(2)}
	prev := map[string]any{"xs": shared, "ys": shared}
	next := map[string]any{"xs": shared, "ys": []any{int64(1), int64(2)}}
	// same reference: no event; distinct but equal storage: one change
	checkSummary(t, Diff(prev, next, nil), []string{"change $.ys"})
}

func TestDiffArraysShallow(t *testing.T) {
	cfg := &Config{Arrays: ArraysAtomic, ArrayEquality: EqualityShallow}
	prev := map[string]any{"xs": []any{int64(1), "a"}}
	checkSummary(t, Diff(prev, map[string]any{"xs": []any{int64(1), "a"}}, cfg), nil)
	checkSummary(t, Diff(prev, map[string]any{"xs": []any{int64(1), "b"}}, cfg),
		[]string{"change $.xs"})
	checkSummary(t, Diff(prev, map[string]any{"xs": []any{int64(1)}}, cfg),
		[]string{"change $.xs"})
}

func TestDiffArraysIndexed(t *testing.T) {
	cfg := &Config{Arrays: ArraysDiff}
	prev := map[string]any{"xs": []any{int64(1), int64(2), int64(3)}}
	next := map[string]any{"xs": []any{int64(1), int64(9)}}
	checkSummary(t, Diff(prev, next, cfg), []string{"change $.xs[1]", "remove $.xs[2]"})
}

func TestDiffArraysIgnore(t *testing.T) {
	cfg := &Config{Arrays: ArraysIgnore}
	prev := map[string]any{"xs": []any{int64(1)}}
	next := map[string]any{"xs": []any{int64(2), int64(3)}}
	checkSummary(t, Diff(prev, next, cfg), nil)
}

func TestDiffHolesAreNotOwnValues(t *testing.T) {
	cfg := &Config{Arrays: ArraysDiff}
	prev := []any{int64(1), data.Hole, int64(3)}
	next := []any{int64(1), data.Hole, int64(4)}
	checkSummary(t, Diff(prev, next, cfg), []string{"change $[2]"})

	// gap on one side only reads as remove/create
	checkSummary(t, Diff([]any{data.Hole}, []any{int64(1)}, cfg), []string{"create $[0]"})
	checkSummary(t, Diff([]any{int64(1)}, []any{data.Hole}, cfg), []string{"remove $[0]"})
}

func TestDiffExcludeKeys(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ExcludeKeys = []string{"meta"}
	prev := map[string]any{"meta": int64(1), "a": int64(1)}
	next := map[string]any{"a": int64(2), "extra": map[string]any{"meta": "x"}}
	checkSummary(t, Diff(prev, next, cfg),
		[]string{"change $.a", "create $.extra"})
}

func TestDiffRichValues(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	prev := map[string]any{
		"at": t0,
		"re": data.Regex{Pattern: "a+", Flags: "i"},
	}
	next := map[string]any{
		"at": t0.In(time.FixedZone("x", 3600)),
		"re": data.Regex{Pattern: "a+", Flags: ""},
	}
	checkSummary(t, Diff(prev, next, nil), []string{"change $.re"})
}

func TestDiffCycleSafety(t *testing.T) {
	a := map[string]any{"v": int64(1)}
	a["self"] = a
	checkSummary(t, Diff(a, a, nil), nil)

	b := map[string]any{"v": int64(2)}
	b["self"] = b
	checkSummary(t, Diff(a, b, nil), []string{"change $.v"})
}

func TestDiffSharedSiblingsNotPenalized(t *testing.T) {
	shared := map[string]any{"x": int64(1)}
	prev := map[string]any{"l": shared, "r": shared}
	next := map[string]any{"l": shared, "r": map[string]any{"x": int64(2)}}
	// the guard is path-scoped: the same pair may be compared again on a
	// sibling branch
	checkSummary(t, Diff(prev, next, nil), []string{"change $.r.x"})
}

func TestDiffMutualCycle(t *testing.T) {
	a := map[string]any{}
	b := map[string]any{}
	a["peer"] = b
	b["peer"] = a
	checkSummary(t, Diff(a, a, nil), nil)
}
