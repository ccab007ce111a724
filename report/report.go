// Package report renders consolidated plans and patch outcomes for
// humans. Color is used when the destination is a terminal, string
// changes are shown as inline character diffs, and every unapplied patch
// comes with a hint keyed to the phase that planned it.
package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/signadot/sitepatch/data"
	"github.com/signadot/sitepatch/keypath"
	"github.com/signadot/sitepatch/plan"
	"github.com/signadot/sitepatch/treepatch"
)

type Renderer struct {
	w     io.Writer
	color bool
}

type Option func(*Renderer)

// Color forces colored output on or off, overriding terminal detection.
func Color(on bool) Option {
	return func(r *Renderer) {
		r.color = on
	}
}

func New(w io.Writer, opts ...Option) *Renderer {
	r := &Renderer{w: w}
	if f, ok := w.(*os.File); ok {
		r.color = isatty.IsTerminal(f.Fd())
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Plan writes one line per consolidated patch. prior is the extracted data
// the plan was computed against; when the old value at a patch path is
// available, changes are shown old to new, string changes as an inline
// character diff.
func (r *Renderer) Plan(p *plan.Plan, prior any) error {
	if p.Len() == 0 {
		_, err := fmt.Fprintln(r.w, "plan: nothing to change")
		return err
	}
	if _, err := fmt.Fprintf(r.w, "plan: %d %s\n", p.Len(), plural(p.Len(), "patch", "patches")); err != nil {
		return err
	}
	for _, patch := range p.Patches() {
		key := patch.Path.Key()
		phase, _ := p.PhaseOf(key)
		if patch.Op == plan.Delete {
			if _, err := fmt.Fprintf(r.w, "  - %s  (%s)\n", r.paint(color.RedString, key), phase); err != nil {
				return err
			}
			continue
		}
		line := r.setLine(patch, prior)
		if _, err := fmt.Fprintf(r.w, "  ~ %s: %s  (%s)\n", r.paint(color.CyanString, key), line, phase); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) setLine(patch plan.Patch, prior any) string {
	old, ok := valueAt(prior, patch.Path)
	if !ok {
		return r.paint(color.GreenString, formatValue(patch.Value))
	}
	oldStr, oldIsStr := old.(string)
	newStr, newIsStr := patch.Value.(string)
	if oldIsStr && newIsStr {
		return r.stringChange(oldStr, newStr)
	}
	return r.paint(color.RedString, formatValue(old)) + " => " +
		r.paint(color.GreenString, formatValue(patch.Value))
}

// Result writes the outcome of applying a plan. Unapplied set patches are
// listed with a phase-specific hint: derive-phase misses are fixable by
// adding a slot at the call site, the rest mean the call site does not
// spell the slot statically at all.
func (r *Renderer) Result(res *treepatch.Result) error {
	if res.Ok() {
		n := res.Applied()
		_, err := fmt.Fprintf(r.w, "applied %d %s\n", n, plural(n, "patch", "patches"))
		return err
	}
	if _, err := fmt.Fprintf(r.w, "applied %d, %d could not be applied:\n",
		res.Applied(), res.UnappliedCount()); err != nil {
		return err
	}
	for _, patch := range res.Unapplied() {
		key := patch.Path.Key()
		if _, err := fmt.Fprintf(r.w, "  ! %s %s\n", patch.Op, r.paint(color.RedString, key)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(r.w, "    %s\n", hint(patch)); err != nil {
			return err
		}
	}
	return nil
}

func hint(patch plan.Patch) string {
	if patch.Phase == plan.PhaseDerive {
		return fmt.Sprintf("add a slot named %q to the call (any placeholder value will do)",
			lastLabel(patch.Path))
	}
	return "the call does not spell this slot statically; it has to be restructured before it can be refined"
}

func lastLabel(p keypath.Path) string {
	if len(p) == 0 {
		return "root"
	}
	last := p[len(p)-1]
	if last.IsIndex() {
		return last.String()
	}
	return last.FieldName()
}

func (r *Renderer) paint(f func(string, ...any) string, s string) string {
	if !r.color {
		return s
	}
	return f("%s", s)
}

// stringChange renders an old/new string pair. With color the pair becomes
// an inline character diff; without, a plain quoted transition.
func (r *Renderer) stringChange(from, to string) string {
	if !r.color {
		return strconv.Quote(from) + " => " + strconv.Quote(to)
	}
	dmp := diffpatch.New()
	diffs := dmp.DiffMain(from, to, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	return dmp.DiffPrettyText(diffs)
}

// valueAt walks plain data along a logical path.
func valueAt(root any, path keypath.Path) (any, bool) {
	cur := root
	for _, seg := range path {
		if seg.IsIndex() {
			s, ok := cur.([]any)
			if !ok {
				return nil, false
			}
			f := seg.Float()
			i := int(f)
			if float64(i) != f || i < 0 || i >= len(s) {
				return nil, false
			}
			cur = s[i]
			continue
		}
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		v, own := m[seg.FieldName()]
		if !own {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

func formatValue(v any) string {
	if p, ok := data.AsPlaceholder(v); ok {
		return "<preserved " + p.Key() + ">"
	}
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(t)
	case data.Regex:
		return "/" + t.Pattern + "/" + t.Flags
	case time.Time:
		return t.Format(time.RFC3339)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+formatValue(t[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if data.IsHole(e) {
				parts = append(parts, "")
				continue
			}
			parts = append(parts, formatValue(e))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(t)
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
