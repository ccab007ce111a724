package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/signadot/sitepatch/keypath"
	"github.com/signadot/sitepatch/parse"
	"github.com/signadot/sitepatch/plan"
	"github.com/signadot/sitepatch/treepatch"
)

func mustPath(t *testing.T, key string) keypath.Path {
	t.Helper()
	p, err := keypath.Parse(key)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestPlanRendering(t *testing.T) {
	patches := []plan.Patch{
		{Op: plan.Set, Path: mustPath(t, "$.name"), Value: "hallo", Phase: plan.PhaseDiff},
		{Op: plan.Set, Path: mustPath(t, "$.count"), Value: int64(3), Phase: plan.PhaseDiff},
		{Op: plan.Set, Path: mustPath(t, "$.ratio"), Value: 0.5, Phase: plan.PhaseDerive},
		{Op: plan.Delete, Path: mustPath(t, "$.legacy"), Phase: plan.PhasePrune},
	}
	p, err := plan.Consolidate(nil, patches)
	if err != nil {
		t.Fatal(err)
	}
	prior := map[string]any{"name": "hello", "count": "3", "legacy": true}

	var buf bytes.Buffer
	if err := New(&buf, Color(false)).Plan(p, prior); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"plan: 4 patches",
		`~ $.name: "hello" => "hallo"  (diff)`,
		`~ $.count: "3" => 3  (diff)`,
		"~ $.ratio: 0.5  (derive)",
		"- $.legacy  (prune)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestPlanRenderingEmpty(t *testing.T) {
	p, err := plan.Consolidate(nil)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := New(&buf, Color(false)).Plan(p, nil); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "plan: nothing to change\n" {
		t.Errorf("got %q", got)
	}
}

func TestResultRendering(t *testing.T) {
	root, err := parse.Parse([]byte(`{a: 1}`))
	if err != nil {
		t.Fatal(err)
	}
	apply := func(t *testing.T, patches []plan.Patch) *treepatch.Result {
		t.Helper()
		p, err := plan.Consolidate(nil, patches)
		if err != nil {
			t.Fatal(err)
		}
		res, err := treepatch.Apply(root, p, nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		return res
	}

	var buf bytes.Buffer
	r := New(&buf, Color(false))

	res := apply(t, []plan.Patch{{Op: plan.Set, Path: mustPath(t, "$.a"), Value: int64(2)}})
	if err := r.Result(res); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "applied 1 patch\n" {
		t.Errorf("got %q", got)
	}

	buf.Reset()
	res = apply(t, []plan.Patch{
		{Op: plan.Set, Path: mustPath(t, "$.added"), Value: int64(1), Phase: plan.PhaseDerive},
		{Op: plan.Set, Path: mustPath(t, "$.deep.slot"), Value: int64(1), Phase: plan.PhaseDiff},
		{Op: plan.Delete, Path: mustPath(t, "$.deep.legacy"), Phase: plan.PhasePrune},
	})
	if err := r.Result(res); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"applied 0, 3 could not be applied:",
		"! set $.added",
		`add a slot named "added" to the call`,
		"! set $.deep.slot",
		"! delete $.deep.legacy",
		"does not spell this slot statically",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	// deletes carry the restructuring hint too, not just sets
	if got := strings.Count(out, "does not spell this slot statically"); got != 2 {
		t.Errorf("want the restructuring hint on both the set and the delete, got %d in:\n%s", got, out)
	}
}

func TestValueAt(t *testing.T) {
	root := map[string]any{
		"a": []any{int64(1), map[string]any{"b": "x"}},
	}
	tests := []struct {
		key  string
		want any
		ok   bool
	}{
		{"$", root, true},
		{"$.a[0]", int64(1), true},
		{"$.a[1].b", "x", true},
		{"$.a[2]", nil, false},
		{"$.missing", nil, false},
		{"$.a.b", nil, false},
	}
	for _, tc := range tests {
		got, ok := valueAt(root, mustPath(t, tc.key))
		if ok != tc.ok {
			t.Errorf("valueAt(%s) ok = %v, want %v", tc.key, ok, tc.ok)
			continue
		}
		if !ok {
			continue
		}
		switch want := tc.want.(type) {
		case map[string]any:
			if _, isMap := got.(map[string]any); !isMap {
				t.Errorf("valueAt(%s) = %T, want map", tc.key, got)
			}
		default:
			if got != want {
				t.Errorf("valueAt(%s) = %v, want %v", tc.key, got, want)
			}
		}
	}
}
