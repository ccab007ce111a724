package treepatch

import (
	"fmt"

	"github.com/signadot/sitepatch/debug"
	"github.com/signadot/sitepatch/ir"
	"github.com/signadot/sitepatch/keypath"
	"github.com/signadot/sitepatch/plan"
)

type applier struct {
	sets      map[string]plan.Patch
	deletes   map[string]plan.Patch
	preserved map[string]bool
	resolve   Resolver
	applied   int
}

// Apply walks the expression tree and absorbs the consolidated plan into
// it, in place. Every touched slot must already exist: sets overwrite a
// slot's value expression (filling array holes counts), deletes remove
// keyed slots and clear ordered slots to holes without shifting siblings.
//
// A non-keyed root refuses the whole plan; the result then carries every
// patch as unapplied. Encoding failures (unresolvable placeholders, values
// outside the data model) abort with an error since partial application
// would leave the tree half-written.
func Apply(root *ir.Node, p *plan.Plan, preserved map[string]bool, resolve Resolver) (*Result, error) {
	a := &applier{
		sets:      map[string]plan.Patch{},
		deletes:   map[string]plan.Patch{},
		preserved: preserved,
		resolve:   resolve,
	}
	for _, patch := range p.Patches() {
		if patch.Op == plan.Delete {
			a.deletes[patch.Path.Key()] = patch
		} else {
			a.sets[patch.Path.Key()] = patch
		}
	}
	if root == nil || root.Type != ir.ObjectType {
		return a.result(), nil
	}
	if err := a.walkObject(root, nil); err != nil {
		return nil, err
	}
	res := a.result()
	if debug.Patch() {
		debug.Logf("patch: %d applied, %d sets and %d deletes remaining\n",
			res.applied, len(res.sets), len(res.deletes))
	}
	return res, nil
}

func (a *applier) result() *Result {
	return &Result{applied: a.applied, sets: a.sets, deletes: a.deletes}
}

func (a *applier) walkObject(node *ir.Node, cur *cursor) error {
	i := 0
	for i < len(node.Fields) {
		if node.Fields[i].Type == ir.SpreadType {
			// inline expansion: neither the slot nor anything under it has
			// a logical address
			i++
			continue
		}
		label, static := node.SlotLabel(i)
		if static && a.preserved[label] {
			i++
			continue
		}
		slot := &cursor{parent: cur, computed: !static}
		if static {
			slot.seg = keypath.Field(label)
		}
		if key, ok := slot.key(); ok {
			if _, del := a.deletes[key]; del {
				node.RemoveSlot(i)
				delete(a.deletes, key)
				a.applied++
				// slot i now names the next sibling
				continue
			}
			if patch, set := a.sets[key]; set {
				v, err := encodeValue(patch.Value, a.resolve)
				if err != nil {
					return fmt.Errorf("patch %s: %w", key, err)
				}
				node.SetValue(i, v)
				delete(a.sets, key)
				a.applied++
				// keep walking into the replacement: deeper patches may
				// still address slots inside it
			}
		}
		if err := a.walkValue(node.Values[i], slot); err != nil {
			return err
		}
		i++
	}
	a.absorbAbsentDeletes(node, cur)
	return nil
}

func (a *applier) walkArray(node *ir.Node, cur *cursor) error {
	for i := range node.Values {
		if node.Values[i].Type == ir.SpreadType {
			// inline expansion: the element has no logical address
			continue
		}
		slot := &cursor{parent: cur, seg: keypath.Index(i)}
		if key, ok := slot.key(); ok {
			if _, del := a.deletes[key]; del {
				node.SetValue(i, ir.Hole())
				delete(a.deletes, key)
				a.applied++
				continue
			}
			if patch, set := a.sets[key]; set {
				v, err := encodeValue(patch.Value, a.resolve)
				if err != nil {
					return fmt.Errorf("patch %s: %w", key, err)
				}
				node.SetValue(i, v)
				delete(a.sets, key)
				a.applied++
			}
		}
		if err := a.walkValue(node.Values[i], slot); err != nil {
			return err
		}
	}
	return nil
}

func (a *applier) walkValue(v *ir.Node, cur *cursor) error {
	switch v.Type {
	case ir.ObjectType:
		return a.walkObject(v, cur)
	case ir.ArrayType:
		return a.walkArray(v, cur)
	}
	return nil
}

// absorbAbsentDeletes settles deletes addressed at node whose target slot
// does not exist: the goal state (absence) already holds, which is what
// makes re-applying a plan a no-op. Deletes whose target still exists (a
// preserved slot, say) stay unapplied.
func (a *applier) absorbAbsentDeletes(node *ir.Node, cur *cursor) {
	parentKey := "$"
	if cur != nil {
		key, ok := cur.key()
		if !ok {
			return
		}
		parentKey = key
	}
	for k, dp := range a.deletes {
		if len(dp.Path) == 0 {
			continue
		}
		last := dp.Path[len(dp.Path)-1]
		if last.IsIndex() {
			continue
		}
		if dp.Path[:len(dp.Path)-1].Key() != parentKey {
			continue
		}
		if ir.Get(node, last.FieldName()) != nil {
			continue
		}
		delete(a.deletes, k)
		a.applied++
	}
}
