package overlay

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/signadot/sitepatch/data"
)

func TestApplyPassthrough(t *testing.T) {
	base := map[string]any{"label": "x", "extra": "y"}
	over := map[string]any{"label": "x"}
	got := Apply(base, over, nil)
	want := map[string]any{"label": "x", "extra": "y"}
	if d := cmp.Diff(want, got); d != "" {
		t.Fatalf("mismatch (-want +got):\n%s", d)
	}
	// nothing diverged: same reference comes back
	if !data.SameRef(base, got) {
		t.Error("unchanged merge should return the base reference")
	}
}

func TestApplyNoStructuralGrowth(t *testing.T) {
	base := map[string]any{"a": int64(1)}
	over := map[string]any{"a": int64(1), "added": int64(2)}
	got := Apply(base, over, nil)
	if _, present := got["added"]; present {
		t.Error("overlay must not add keys absent from base")
	}
}

func TestApplyOverlayWins(t *testing.T) {
	base := map[string]any{"a": int64(1), "b": "old", "keep": true}
	over := map[string]any{"a": int64(2), "b": "new"}
	got := Apply(base, over, nil)
	want := map[string]any{"a": int64(2), "b": "new", "keep": true}
	if d := cmp.Diff(want, got); d != "" {
		t.Fatalf("mismatch (-want +got):\n%s", d)
	}
	if data.SameRef(base, got) {
		t.Error("diverged merge must not alias base")
	}
	if base["a"] != int64(1) {
		t.Error("base mutated")
	}
}

func TestApplyPreservedKeysSkipped(t *testing.T) {
	ph := data.NewPlaceholder("$.ref")
	base := map[string]any{"ref": ph, "a": int64(1)}
	over := map[string]any{"ref": "overwritten", "a": int64(1)}
	got := Apply(base, over, map[string]bool{"ref": true})
	if !data.SameRef(base, got) {
		t.Fatal("preserved-only overlay should leave base untouched")
	}
	if _, ok := data.AsPlaceholder(got["ref"]); !ok {
		t.Error("preserved value replaced")
	}
}

func TestApplyArraysReplaceAtomically(t *testing.T) {
	baseXs := []any{int64(1), int64(2), int64(3)}
	overXs := []any{int64(9)}
	base := map[string]any{"xs": baseXs}
	over := map[string]any{"xs": overXs}
	got := Apply(base, over, nil)
	if !data.SameRef(got["xs"], overXs) {
		t.Error("arrays must replace wholesale with the overlay reference")
	}
	// identical reference short-circuits
	same := Apply(base, map[string]any{"xs": baseXs}, nil)
	if !data.SameRef(base, same) {
		t.Error("same array reference should not diverge the merge")
	}
}

func TestApplyNestedLazyAllocation(t *testing.T) {
	inner := map[string]any{"deep": "v"}
	base := map[string]any{"same": inner, "diff": map[string]any{"x": int64(1)}}
	over := map[string]any{"same": map[string]any{"deep": "v"}, "diff": map[string]any{"x": int64(2)}}
	got := Apply(base, over, nil)
	if !data.SameRef(got["same"], inner) {
		t.Error("unchanged subtree must keep base reference")
	}
	if got["diff"].(map[string]any)["x"] != int64(2) {
		t.Error("diverged subtree not merged")
	}
	if data.SameRef(got["diff"], base["diff"]) {
		t.Error("diverged subtree aliases base")
	}
}

func TestApplyKindMismatchOverlayWins(t *testing.T) {
	base := map[string]any{"v": map[string]any{"a": int64(1)}}
	over := map[string]any{"v": "scalar now"}
	got := Apply(base, over, nil)
	if got["v"] != "scalar now" {
		t.Errorf("v = %v", got["v"])
	}
}
