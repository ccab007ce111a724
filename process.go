package sitepatch

import (
	"errors"
	"fmt"

	"github.com/signadot/sitepatch/debug"
	"github.com/signadot/sitepatch/extract"
	"github.com/signadot/sitepatch/ir"
	"github.com/signadot/sitepatch/libdiff"
	"github.com/signadot/sitepatch/plan"
	"github.com/signadot/sitepatch/treepatch"
)

// ErrUnapplied is the zero-tolerance failure: a patch left unapplied means
// configured intent silently diverged from emitted output.
var ErrUnapplied = errors.New("patches could not be applied")

// Site is one matched component call: the component's name and the
// argument expression holding the data to refine.
type Site struct {
	Component string
	Arg       *ir.Node
}

// DefaultPreserved is the preserved-key set used when Options leaves it
// nil.
var DefaultPreserved = []string{"ref"}

type Options struct {
	// Preserved names keyed-container slots holding opaque runtime
	// subtrees. nil means DefaultPreserved; an empty non-nil slice means
	// none.
	Preserved []string

	// DryRun computes the plan and a logical preview without mutating the
	// tree.
	DryRun bool
}

func (o *Options) preservedSet() map[string]bool {
	keys := o.Preserved
	if keys == nil {
		keys = DefaultPreserved
	}
	res := make(map[string]bool, len(keys))
	for _, k := range keys {
		res[k] = true
	}
	return res
}

// Outcome is what Process did for one call site.
type Outcome struct {
	Site Site

	// Skipped is set when the call site carries no static keyed data.
	Skipped bool

	Extracted map[string]any
	Plan      *plan.Plan

	// Result reports the tree mutation; nil on dry runs.
	Result *treepatch.Result

	// Preview is the logical document after a dry run; nil otherwise.
	Preview map[string]any

	side *extract.SideChannel
}

// PlanSite runs the pipeline up to consolidation: extract the argument
// data, validate and derive, plan the patch groups and consolidate them.
// The tree is not touched.
//
// Sites without static keyed data are skipped, not failed.
func PlanSite(site Site, rule *Rule, opts *Options) (*Outcome, error) {
	if err := rule.validate(); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &Options{}
	}
	preserved := opts.preservedSet()
	out := &Outcome{Site: site}

	ext, ok := extract.Extract(site.Arg, preserved)
	if !ok {
		if debug.Rules() {
			debug.Logf("process: %s has no static data, skipping\n", site.Component)
		}
		out.Skipped = true
		return out, nil
	}
	out.Extracted = ext.Data

	validated := ext.Data
	if rule.Schema != nil {
		v := rule.Schema(ext.Data)
		if v == nil {
			return nil, fmt.Errorf("%w: schema for %s returned nothing", ErrConfig, site.Component)
		}
		if len(v.Issues) > 0 {
			return nil, &ValidationError{Component: site.Component, Issues: v.Issues}
		}
		validated = v.Value
	}

	var emitted []map[string]any
	if rule.Derive != nil {
		rule.Derive(validated, func(record map[string]any) {
			emitted = append(emitted, record)
		})
	}

	p, err := plan.Consolidate(preserved,
		plan.Coerce(ext.Data, validated, preserved, libdiff.DefaultConfig()),
		plan.Derive(emitted),
		plan.Prune(ext.Data, rule.Prune, preserved),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", site.Component, err)
	}
	out.Plan = p
	out.side = ext.Side
	return out, nil
}

// Process runs the whole pipeline for one call site: plan as PlanSite
// does, then mutate the tree in place (or compute a logical preview on dry
// runs). Accumulators are fresh per call; nothing is shared across
// invocations.
//
// Every shortfall past planning is terminal for the site: validation
// issues, patches through preserved keys, unapplied patches, unencodable
// values.
func Process(site Site, rule *Rule, opts *Options) (*Outcome, error) {
	if opts == nil {
		opts = &Options{}
	}
	out, err := PlanSite(site, rule, opts)
	if err != nil || out.Skipped {
		return out, err
	}

	if opts.DryRun {
		preview, err := plan.Preview(out.Extracted, out.Plan)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", site.Component, err)
		}
		out.Preview = preview
		return out, nil
	}

	res, err := treepatch.Apply(site.Arg, out.Plan, opts.preservedSet(), out.side.Resolve)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", site.Component, err)
	}
	out.Result = res
	if !res.Ok() {
		first, _ := res.First()
		return out, fmt.Errorf("%s: %w: %d of %d, first at %s",
			site.Component, ErrUnapplied, res.UnappliedCount(), out.Plan.Len(), first)
	}
	return out, nil
}
