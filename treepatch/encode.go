package treepatch

import (
	"errors"
	"fmt"
	"time"

	"github.com/signadot/sitepatch/data"
	"github.com/signadot/sitepatch/ir"
)

var (
	// ErrEncode marks a patch value that has no expression form.
	ErrEncode = errors.New("cannot encode patch value")
	// ErrUnresolvedPlaceholder marks a preserved-subtree placeholder whose
	// key is unknown to the resolver.
	ErrUnresolvedPlaceholder = errors.New("unresolved preserved-subtree placeholder")
)

// Resolver maps a preserved-subtree placeholder key back to the captured
// expression. extract.SideChannel.Resolve satisfies it.
type Resolver func(key string) (*ir.Node, bool)

// encodeValue renders a plain data value as an expression tree. Preserved
// placeholders are resolved back to a clone of their captured subtree;
// anything the data model cannot spell is a hard error, never a silent
// substitute.
func encodeValue(v any, resolve Resolver) (*ir.Node, error) {
	if p, ok := data.AsPlaceholder(v); ok {
		if resolve == nil {
			return nil, fmt.Errorf("%w: %s (no resolver)", ErrUnresolvedPlaceholder, p.Key())
		}
		node, ok := resolve(p.Key())
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnresolvedPlaceholder, p.Key())
		}
		return node.Clone(), nil
	}
	switch t := v.(type) {
	case nil:
		return ir.Null(), nil
	case bool:
		return ir.FromBool(t), nil
	case int64:
		return ir.FromInt(t), nil
	case float64:
		return ir.FromFloat(t), nil
	case string:
		return ir.FromString(t), nil
	case data.Regex:
		return ir.FromRegex(t.Pattern, t.Flags), nil
	case time.Time:
		return ir.FromString(t.Format(time.RFC3339Nano)), nil
	case []any:
		elems := make([]*ir.Node, len(t))
		for i, e := range t {
			if data.IsHole(e) {
				elems[i] = ir.Hole()
				continue
			}
			elem, err := encodeValue(e, resolve)
			if err != nil {
				return nil, err
			}
			elems[i] = elem
		}
		return ir.FromSlice(elems), nil
	case map[string]any:
		fields := make(map[string]*ir.Node, len(t))
		for k, e := range t {
			node, err := encodeValue(e, resolve)
			if err != nil {
				return nil, err
			}
			fields[k] = node
		}
		return ir.FromMap(fields), nil
	case data.Placeholder:
		// branded placeholders are handled above; an unbranded one is a
		// value no tree position can carry
		return nil, fmt.Errorf("%w: unbranded placeholder", ErrEncode)
	default:
		return nil, fmt.Errorf("%w: %T", ErrEncode, v)
	}
}
