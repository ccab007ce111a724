package plan

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/signadot/sitepatch/data"
	"github.com/signadot/sitepatch/keypath"
)

func TestCoerceOnlyChanges(t *testing.T) {
	extracted := map[string]any{
		"count": "3", // validator coerces to number
		"keep":  "untouched",
	}
	validated := map[string]any{
		"count": int64(3),
		"added": "never", // no slot to insert
	}
	patches := Coerce(extracted, validated, nil, nil)
	if len(patches) != 1 {
		t.Fatalf("want 1 patch, got %v", patches)
	}
	p := patches[0]
	if p.Op != Set || p.Path.Key() != "$.count" || p.Value != int64(3) || p.Phase != PhaseDiff {
		t.Errorf("bad patch: %+v", p)
	}
}

func TestCoerceFailSoftRoots(t *testing.T) {
	if got := Coerce("scalar", map[string]any{}, nil, nil); got != nil {
		t.Errorf("non-keyed extracted should degrade to empty, got %v", got)
	}
	if got := Coerce(map[string]any{}, []any{}, nil, nil); got != nil {
		t.Errorf("non-keyed validated should degrade to empty, got %v", got)
	}
}

func TestDerive(t *testing.T) {
	patches := Derive([]map[string]any{
		{"b": int64(2), "a": int64(1)},
		{"c": "x"},
	})
	wantKeys := []string{"$.a", "$.b", "$.c"}
	if len(patches) != len(wantKeys) {
		t.Fatalf("got %v", patches)
	}
	for i, p := range patches {
		if p.Path.Key() != wantKeys[i] || p.Op != Set || p.Phase != PhaseDerive {
			t.Errorf("patch %d = %+v", i, p)
		}
	}
}

func TestPrune(t *testing.T) {
	extracted := map[string]any{
		"legacy": int64(1),
		"ref":    data.NewPlaceholder("$.ref"),
		"keep":   true,
	}
	preserved := map[string]bool{"ref": true}
	patches := Prune(extracted, []string{"legacy", "absent", "ref"}, preserved)
	if len(patches) != 1 {
		t.Fatalf("want 1 patch, got %v", patches)
	}
	if patches[0].Op != Delete || patches[0].Path.Key() != "$.legacy" {
		t.Errorf("bad patch: %+v", patches[0])
	}
}

func TestConsolidateLastPhaseWins(t *testing.T) {
	diff := []Patch{
		{Op: Set, Path: keypath.Path{keypath.Field("a")}, Value: int64(1), Phase: PhaseDiff},
		{Op: Set, Path: keypath.Path{keypath.Field("b")}, Value: int64(2), Phase: PhaseDiff},
	}
	derive := []Patch{
		{Op: Set, Path: keypath.Path{keypath.Field("a")}, Value: int64(9), Phase: PhaseDerive},
	}
	prune := []Patch{
		{Op: Delete, Path: keypath.Path{keypath.Field("b")}, Phase: PhasePrune},
	}
	p, err := Consolidate(nil, diff, derive, prune)
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() != 2 {
		t.Fatalf("want 2 consolidated patches, got %v", p.Keys())
	}
	a, _ := p.Get("$.a")
	if a.Value != int64(9) {
		t.Errorf("derive should win $.a: %+v", a)
	}
	if ph, _ := p.PhaseOf("$.a"); ph != PhaseDerive {
		t.Errorf("phase of $.a = %s", ph)
	}
	b, _ := p.Get("$.b")
	if b.Op != Delete {
		t.Errorf("prune should win $.b: %+v", b)
	}
	if ph, _ := p.PhaseOf("$.b"); ph != PhasePrune {
		t.Errorf("phase of $.b = %s", ph)
	}
}

func TestConsolidateRejectsPreservedPaths(t *testing.T) {
	preserved := map[string]bool{"ref": true}
	group := []Patch{
		{Op: Set, Path: keypath.Path{keypath.Field("ref")}, Value: "x", Phase: PhaseDerive},
		{Op: Set, Path: keypath.Path{keypath.Field("a"), keypath.Field("ref"), keypath.Field("b")}, Value: "y", Phase: PhaseDiff},
		{Op: Set, Path: keypath.Path{keypath.Field("ok")}, Value: "z", Phase: PhaseDiff},
	}
	_, err := Consolidate(preserved, group)
	var pErr *PreservedPathError
	if !errors.As(err, &pErr) {
		t.Fatalf("want PreservedPathError, got %v", err)
	}
	want := []string{"$.a.ref.b", "$.ref"}
	if d := cmp.Diff(want, pErr.Keys); d != "" {
		t.Fatalf("rejected keys mismatch (-want +got):\n%s", d)
	}
}

func TestJSONPatchAndPreview(t *testing.T) {
	extracted := map[string]any{
		"count":  "3",
		"legacy": true,
		"keep":   "x",
	}
	p, err := Consolidate(nil,
		[]Patch{{Op: Set, Path: keypath.Path{keypath.Field("count")}, Value: int64(3), Phase: PhaseDiff}},
		[]Patch{{Op: Set, Path: keypath.Path{keypath.Field("keep")}, Value: "y", Phase: PhaseDerive}},
		[]Patch{{Op: Delete, Path: keypath.Path{keypath.Field("legacy")}, Phase: PhasePrune}},
	)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := p.JSONPatch()
	if err != nil {
		t.Fatal(err)
	}
	if len(doc) == 0 {
		t.Fatal("empty patch doc")
	}
	got, err := Preview(extracted, p)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{
		"count": float64(3), // JSON round trip
		"keep":  "y",
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Fatalf("preview mismatch (-want +got):\n%s", d)
	}
}

func TestJSONPatchRejectsNonFiniteIndex(t *testing.T) {
	p, err := Consolidate(nil, []Patch{
		{Op: Set, Path: keypath.Path{keypath.Field("w"), keypath.FloatIndex(nan())}, Value: int64(1)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.JSONPatch(); err == nil {
		t.Fatal("expected export error for non-finite index")
	}
}

func nan() float64 {
	z := 0.0
	return z / z
}
