package sitepatch

import (
	"errors"
	"testing"

	"github.com/signadot/sitepatch/encode"
)

const rulesetSrc = `
preserved: [ref]
rules:
  - match: name == 'Button' && argc > 0
    prune: [legacy]
    derive:
      label: label + '!'
  - match: 'true'
    prune: [debugInfo]
`

func TestParseRuleset(t *testing.T) {
	rs, err := ParseRuleset([]byte(rulesetSrc))
	if err != nil {
		t.Fatal(err)
	}
	if len(rs.Preserved) != 1 || rs.Preserved[0] != "ref" {
		t.Errorf("preserved = %v", rs.Preserved)
	}

	rule, ok, err := rs.Match(Site{Component: "Button", Arg: mustParse(t, `{label: 'hi'}`)})
	if err != nil || !ok {
		t.Fatalf("Match: %v, %v", ok, err)
	}
	if len(rule.Prune) != 1 || rule.Prune[0] != "legacy" {
		t.Errorf("prune = %v", rule.Prune)
	}
	var emitted []map[string]any
	rule.Derive(map[string]any{"label": "hi"}, func(rec map[string]any) {
		emitted = append(emitted, rec)
	})
	if len(emitted) != 1 || emitted[0]["label"] != "hi!" {
		t.Errorf("derived = %v", emitted)
	}

	// argc 0 falls through to the catch-all rule
	rule, ok, err = rs.Match(Site{Component: "Button", Arg: mustParse(t, `f(x)`)})
	if err != nil || !ok {
		t.Fatalf("Match: %v, %v", ok, err)
	}
	if len(rule.Prune) != 1 || rule.Prune[0] != "debugInfo" {
		t.Errorf("prune = %v", rule.Prune)
	}
}

func TestParseRulesetErrors(t *testing.T) {
	bad := []string{
		"rules:\n  - prune: [a]\n",                      // no match selector
		"rules:\n  - match: 'true'\n",                   // configures nothing
		"rules:\n  - match: ')('\n    prune: [a]\n",     // unparsable selector
		"rules:\n  - match: 'true'\n    derive:\n      k: ')('\n", // unparsable derive
	}
	for _, src := range bad {
		if _, err := ParseRuleset([]byte(src)); !errors.Is(err, ErrConfig) {
			t.Errorf("ParseRuleset(%q): err = %v, want ErrConfig", src, err)
		}
	}
}

func TestRulesetThroughPipeline(t *testing.T) {
	rs, err := ParseRuleset([]byte(rulesetSrc))
	if err != nil {
		t.Fatal(err)
	}
	site := Site{
		Component: "Button",
		Arg:       mustParse(t, `{label: 'hi', legacy: 1, ref: r}`),
	}
	rule, ok, err := rs.Match(site)
	if err != nil || !ok {
		t.Fatalf("Match: %v, %v", ok, err)
	}
	out, err := Process(site, rule, &Options{Preserved: rs.Preserved})
	if err != nil {
		t.Fatal(err)
	}
	if !out.Result.Ok() {
		t.Fatalf("unapplied: %v", out.Result.Unapplied())
	}
	want := `{ label: 'hi!', ref: r }`
	if got := encode.MustWire(site.Arg); got != want {
		t.Errorf("tree = %s, want %s", got, want)
	}
}
