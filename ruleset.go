package sitepatch

import (
	"fmt"
	"os"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/goccy/go-yaml"

	"github.com/signadot/sitepatch/debug"
	"github.com/signadot/sitepatch/ir"
)

// ruleSpec is the YAML shape of one rule: an expr selector plus what to do
// at matched sites. Derive values are expr programs evaluated against the
// validated data.
type ruleSpec struct {
	Match  string            `yaml:"match"`
	Prune  []string          `yaml:"prune"`
	Derive map[string]string `yaml:"derive"`
}

type rulesetSpec struct {
	Preserved []string   `yaml:"preserved"`
	Rules     []ruleSpec `yaml:"rules"`
}

type compiledRule struct {
	match  *vm.Program
	derive map[string]*vm.Program
	prune  []string
}

// Ruleset holds compiled rules loaded from YAML. Match selectors run
// against {name, argc}; the first matching rule wins.
type Ruleset struct {
	Preserved []string

	rules []compiledRule
}

// LoadRuleset reads and compiles a YAML ruleset file.
func LoadRuleset(path string) (*Ruleset, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return ParseRuleset(buf)
}

// ParseRuleset compiles a YAML ruleset document:
//
//	preserved: [ref]
//	rules:
//	  - match: name == 'Button'
//	    prune: [legacy]
//	    derive:
//	      total: count + 1
func ParseRuleset(buf []byte) (*Ruleset, error) {
	var spec rulesetSpec
	if err := yaml.Unmarshal(buf, &spec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	res := &Ruleset{Preserved: spec.Preserved}
	for i := range spec.Rules {
		rs := &spec.Rules[i]
		if rs.Match == "" {
			return nil, fmt.Errorf("%w: rule %d has no match selector", ErrConfig, i)
		}
		if len(rs.Prune) == 0 && len(rs.Derive) == 0 {
			return nil, fmt.Errorf("%w: rule %d (match %q) configures nothing", ErrConfig, i, rs.Match)
		}
		cr := compiledRule{prune: rs.Prune}
		prg, err := expr.Compile(rs.Match, expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("%w: rule %d match %q: %v", ErrConfig, i, rs.Match, err)
		}
		cr.match = prg
		if len(rs.Derive) > 0 {
			cr.derive = make(map[string]*vm.Program, len(rs.Derive))
			for k, src := range rs.Derive {
				p, err := expr.Compile(src)
				if err != nil {
					return nil, fmt.Errorf("%w: rule %d derive %s: %v", ErrConfig, i, k, err)
				}
				cr.derive[k] = p
			}
		}
		res.rules = append(res.rules, cr)
	}
	return res, nil
}

// Match runs the selectors in order against the site and returns the first
// matching rule. Selector runtime failures are terminal: a selector that
// cannot decide would otherwise silently skip sites.
func (rs *Ruleset) Match(site Site) (*Rule, bool, error) {
	env := map[string]any{
		"name": site.Component,
		"argc": argc(site.Arg),
	}
	for i := range rs.rules {
		cr := &rs.rules[i]
		out, err := vm.Run(cr.match, env)
		if err != nil {
			return nil, false, fmt.Errorf("rule %d match: %w", i, err)
		}
		if matched, ok := out.(bool); !ok || !matched {
			continue
		}
		if debug.Rules() {
			debug.Logf("ruleset: rule %d matches %s\n", i, site.Component)
		}
		return cr.rule(), true, nil
	}
	return nil, false, nil
}

// argc is the selector's view of the argument: the slot count of a keyed
// container, 0 for anything else.
func argc(arg *ir.Node) int {
	if arg == nil || arg.Type != ir.ObjectType {
		return 0
	}
	return len(arg.Fields)
}

// rule adapts a compiled rule to the pipeline's Rule shape. Derive
// expressions see the validated data's fields as variables; an expression
// that fails at runtime drops only its own key.
func (cr *compiledRule) rule() *Rule {
	r := &Rule{Prune: cr.prune}
	if len(cr.derive) == 0 {
		return r
	}
	programs := cr.derive
	r.Derive = func(validated map[string]any, emit func(map[string]any)) {
		record := map[string]any{}
		for k, prg := range programs {
			out, err := vm.Run(prg, validated)
			if err != nil {
				if debug.Rules() {
					debug.Logf("ruleset: derive %s: %v\n", k, err)
				}
				continue
			}
			record[k] = normalize(out)
		}
		if len(record) > 0 {
			emit(record)
		}
	}
	return r
}

// normalize maps expr results onto the plain data model.
func normalize(v any) any {
	switch t := v.(type) {
	case int:
		return int64(t)
	case []any:
		for i := range t {
			t[i] = normalize(t[i])
		}
		return t
	case map[string]any:
		for k := range t {
			t[k] = normalize(t[k])
		}
		return t
	default:
		return v
	}
}
