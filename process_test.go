package sitepatch

import (
	"errors"
	"maps"
	"testing"

	"github.com/signadot/sitepatch/data"
	"github.com/signadot/sitepatch/encode"
	"github.com/signadot/sitepatch/ir"
	"github.com/signadot/sitepatch/parse"
)

func mustParse(t *testing.T, src string) *ir.Node {
	t.Helper()
	node, err := parse.Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return node
}

// coerceCount reshapes count from string to int64 and passes ref through.
func coerceCount(d map[string]any) *Validated {
	out := maps.Clone(d)
	if s, ok := out["count"].(string); ok {
		var n int64
		for i := 0; i < len(s); i++ {
			if s[i] < '0' || s[i] > '9' {
				return Invalid(Issue{Path: "$.count", Code: "type", Message: "not a number"})
			}
			n = n*10 + int64(s[i]-'0')
		}
		out["count"] = n
	}
	return Valid(out)
}

func TestProcess(t *testing.T) {
	site := Site{
		Component: "Button",
		Arg: mustParse(t,
			`{label: 'hello', count: '3', legacy: true, ref: runtimeRef, extra: 'keep', xs: [1, f(2)]}`),
	}
	rule := &Rule{
		Schema: coerceCount,
		Derive: func(validated map[string]any, emit func(map[string]any)) {
			emit(map[string]any{"extra": "derived"})
		},
		Prune: []string{"legacy", "absent"},
	}
	out, err := Process(site, rule, nil)
	if err != nil {
		t.Fatal(err)
	}
	if out.Skipped {
		t.Fatal("site should not be skipped")
	}
	if _, ok := data.AsPlaceholder(out.Extracted["ref"]); !ok {
		t.Error("ref should extract to a preserved placeholder")
	}
	if got := out.Plan.Len(); got != 3 {
		t.Fatalf("plan has %d patches: %v", got, out.Plan.Keys())
	}
	if !out.Result.Ok() {
		t.Fatalf("unapplied: %v", out.Result.Unapplied())
	}
	want := `{ label: 'hello', count: 3, ref: runtimeRef, extra: 'derived', xs: [ 1, f(2) ] }`
	if got := encode.MustWire(site.Arg); got != want {
		t.Errorf("tree = %s\nwant   %s", got, want)
	}
}

func TestProcessSkipsNonStatic(t *testing.T) {
	site := Site{Component: "Button", Arg: mustParse(t, `buildProps()`)}
	out, err := Process(site, &Rule{Prune: []string{"legacy"}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Skipped {
		t.Error("dynamic argument should be skipped")
	}
}

func TestProcessValidationError(t *testing.T) {
	site := Site{Component: "Button", Arg: mustParse(t, `{count: 'x3'}`)}
	_, err := Process(site, &Rule{Schema: coerceCount}, nil)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if verr.Issues[0].Path != "$.count" {
		t.Errorf("issue path = %s", verr.Issues[0].Path)
	}
}

func TestProcessUnapplied(t *testing.T) {
	site := Site{Component: "Button", Arg: mustParse(t, `{a: 1}`)}
	rule := &Rule{
		Derive: func(_ map[string]any, emit func(map[string]any)) {
			emit(map[string]any{"missing": int64(1)})
		},
	}
	out, err := Process(site, rule, nil)
	if !errors.Is(err, ErrUnapplied) {
		t.Fatalf("err = %v, want ErrUnapplied", err)
	}
	if out == nil || out.Result == nil {
		t.Fatal("outcome should carry the patch result for reporting")
	}
	if first, _ := out.Result.First(); first != "$.missing" {
		t.Errorf("first unapplied = %s", first)
	}
}

func TestProcessDryRun(t *testing.T) {
	src := `{count: '3', legacy: true}`
	site := Site{Component: "Button", Arg: mustParse(t, src)}
	rule := &Rule{Schema: coerceCount, Prune: []string{"legacy"}}
	out, err := Process(site, rule, &Options{DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	if out.Result != nil {
		t.Error("dry run must not produce a patch result")
	}
	// numbers come back as float64 from the JSON round trip
	if got := out.Preview["count"]; got != float64(3) {
		t.Errorf("preview count = %v (%T)", got, got)
	}
	if _, still := out.Preview["legacy"]; still {
		t.Error("preview should drop pruned keys")
	}
	want := `{ count: '3', legacy: true }`
	if got := encode.MustWire(site.Arg); got != want {
		t.Errorf("dry run mutated the tree: %s", got)
	}
}

func TestProcessConfigErrors(t *testing.T) {
	site := Site{Component: "Button", Arg: mustParse(t, `{a: 1}`)}
	for _, rule := range []*Rule{nil, {}} {
		if _, err := Process(site, rule, nil); !errors.Is(err, ErrConfig) {
			t.Errorf("rule %+v: err = %v, want ErrConfig", rule, err)
		}
	}
}
