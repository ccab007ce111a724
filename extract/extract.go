package extract

import (
	"math"
	"strconv"
	"strings"

	"github.com/signadot/sitepatch/data"
	"github.com/signadot/sitepatch/debug"
	"github.com/signadot/sitepatch/ir"
	"github.com/signadot/sitepatch/keypath"
)

// Result holds the extracted plain data of one call site together with the
// side channel of captured preserved expressions.
type Result struct {
	Data map[string]any
	Side *SideChannel
}

// Extract decodes node into plain data. The top-level result must be a
// keyed container; anything else (non-static, array, scalar) yields ok
// false, meaning the call site carries no editable data.
func Extract(node *ir.Node, preserved map[string]bool) (*Result, bool) {
	x := &extractor{
		preserved: preserved,
		side:      NewSideChannel(),
	}
	v, ok := x.resolveValue(node, nil)
	if !ok {
		if debug.Extract() {
			debug.Logf("extract: %s is not static\n", node.Path())
		}
		return nil, false
	}
	m, ok := v.(map[string]any)
	if !ok {
		if debug.Extract() {
			debug.Logf("extract: %s is static but not a keyed container\n", node.Path())
		}
		return nil, false
	}
	return &Result{Data: m, Side: x.side}, true
}

type extractor struct {
	preserved map[string]bool
	side      *SideChannel
}

// resolveValue resolves node to a plain value, or ok=false when the
// expression is not static.
func (x *extractor) resolveValue(node *ir.Node, path keypath.Path) (any, bool) {
	switch node.Type {
	case ir.NullType:
		return nil, true
	case ir.BoolType:
		return node.Bool, true
	case ir.NumberType:
		if node.Int64 != nil {
			return *node.Int64, true
		}
		if node.Float64 != nil {
			return *node.Float64, true
		}
		return nil, false
	case ir.StringType:
		return node.String, true
	case ir.RegexType:
		return data.Regex{Pattern: node.String, Flags: node.Flags}, true
	case ir.IdentType:
		return resolveConst(node.String)
	case ir.TemplateType:
		return x.resolveTemplate(node, path)
	case ir.ObjectType:
		return x.resolveObject(node, path), true
	case ir.ArrayType:
		return x.resolveArray(node, path)
	default:
		// Spread, Hole, Dynamic
		return nil, false
	}
}

// resolveConst resolves the constant name references the extractor
// understands. All other names are dynamic.
func resolveConst(name string) (any, bool) {
	switch name {
	case "undefined":
		return nil, true
	case "NaN":
		return math.NaN(), true
	case "Infinity":
		return math.Inf(1), true
	}
	return nil, false
}

// resolveTemplate concatenates the template's parts. Every part must
// resolve to a scalar; a container part or a non-static part fails the
// whole template.
func (x *extractor) resolveTemplate(node *ir.Node, path keypath.Path) (any, bool) {
	var buf strings.Builder
	for _, part := range node.Values {
		v, ok := x.resolveValue(part, path)
		if !ok {
			return nil, false
		}
		s, ok := scalarText(v)
		if !ok {
			return nil, false
		}
		buf.WriteString(s)
	}
	return buf.String(), true
}

func scalarText(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "null", true
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float64:
		return floatText(t), true
	case data.Regex:
		return "/" + t.Pattern + "/" + t.Flags, true
	default:
		return "", false
	}
}

func floatText(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// resolveArray applies the strict ordered-container policy: an inline
// expansion or any non-resolving element collapses the whole container.
// Elisions survive as true gaps to keep index alignment.
func (x *extractor) resolveArray(node *ir.Node, path keypath.Path) (any, bool) {
	res := make([]any, 0, len(node.Values))
	for i, elem := range node.Values {
		switch elem.Type {
		case ir.HoleType:
			res = append(res, data.Hole)
			continue
		case ir.SpreadType:
			return nil, false
		}
		v, ok := x.resolveValue(elem, path.Child(keypath.Index(i)))
		if !ok {
			return nil, false
		}
		res = append(res, v)
	}
	return res, true
}

// resolveObject applies the partial keyed-container policy: spread slots,
// non-resolvable keys and non-resolvable values are silently omitted; the
// container always yields a result.
func (x *extractor) resolveObject(node *ir.Node, path keypath.Path) map[string]any {
	res := make(map[string]any, len(node.Fields))
	for i := range node.Fields {
		field := node.Fields[i]
		if field.Type == ir.SpreadType {
			continue
		}
		label, static := node.SlotLabel(i)
		if static && x.preserved[label] {
			key := path.Child(keypath.Field(label)).Key()
			x.side.Record(key, node.Values[i])
			res[label] = data.NewPlaceholder(key)
			if debug.Extract() {
				debug.Logf("extract: preserved %s\n", key)
			}
			continue
		}
		if !static {
			var ok bool
			label, ok = x.resolveKey(field, path)
			if !ok {
				continue
			}
		}
		v, ok := x.resolveValue(node.Values[i], path.Child(keypath.Field(label)))
		if !ok {
			continue
		}
		res[label] = v
	}
	return res
}

// resolveKey resolves a computed key expression. Only strings and
// safe-integer numbers are accepted; booleans, null, undefined and
// non-safe numbers are rejected so a coerced key never hides a logic
// error.
func (x *extractor) resolveKey(field *ir.Node, path keypath.Path) (string, bool) {
	v, ok := x.resolveValue(field, path)
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float64:
		if !safeInteger(t) {
			return "", false
		}
		return strconv.FormatInt(int64(t), 10), true
	default:
		return "", false
	}
}

const maxSafeInteger = 1<<53 - 1

func safeInteger(f float64) bool {
	return f == math.Trunc(f) && math.Abs(f) <= maxSafeInteger
}
