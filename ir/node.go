package ir

import (
	"maps"
	"slices"
	"strconv"
)

type Node struct {
	Type        Type
	Parent      *Node
	ParentIndex int
	ParentField string

	// Fields and Values carry object slots pairwise; Values alone carries
	// array elements, template parts and the single spread argument.
	Fields []*Node
	Values []*Node

	// Computed marks an object key expression computed at runtime.
	Computed bool

	String  string // string value, ident name, regex pattern
	Bool    bool
	Number  string // literal text as parsed, if any
	Float64 *float64
	Int64   *int64
	Flags   string // regex flags
	Raw     string // dynamic expression source text
}

func (y *Node) Clone() *Node {
	res := &Node{}
	return y.CloneTo(res)
}

func (y *Node) CloneTo(dst *Node) *Node {
	dst.Parent = y.Parent
	dst.ParentIndex = y.ParentIndex
	dst.ParentField = y.ParentField
	dst.Type = y.Type
	dst.Computed = y.Computed
	dst.Values = make([]*Node, len(y.Values))
	dst.Fields = make([]*Node, len(y.Fields))
	for i, yv := range y.Values {
		dstI := &Node{}
		yv.CloneTo(dstI)
		dstI.Parent = dst
		dstI.ParentIndex = i
		dstI.ParentField = yv.ParentField
		dst.Values[i] = dstI
	}
	for i, yf := range y.Fields {
		dstI := &Node{}
		yf.CloneTo(dstI)
		dstI.Parent = dst
		dstI.ParentIndex = i
		dstI.ParentField = yf.ParentField
		dst.Fields[i] = dstI
	}
	dst.String = y.String
	dst.Bool = y.Bool
	dst.Number = y.Number
	if y.Float64 != nil {
		f := *y.Float64
		dst.Float64 = &f
	}
	if y.Int64 != nil {
		i := *y.Int64
		dst.Int64 = &i
	}
	dst.Flags = y.Flags
	dst.Raw = y.Raw
	return dst
}

func FromString(v string) *Node {
	return FromStringAt(&Node{}, v)
}

func FromStringAt(p *Node, v string) *Node {
	p.Type = StringType
	p.String = v
	return p
}

func FromInt(v int64) *Node {
	return &Node{
		Type:  NumberType,
		Int64: &v,
	}
}

func FromFloat(f float64) *Node {
	return &Node{
		Type:    NumberType,
		Float64: &f,
	}
}

func FromBool(v bool) *Node {
	return &Node{
		Type: BoolType,
		Bool: v,
	}
}

func FromIdent(name string) *Node {
	return &Node{
		Type:   IdentType,
		String: name,
	}
}

func FromRegex(pattern, flags string) *Node {
	return &Node{
		Type:   RegexType,
		String: pattern,
		Flags:  flags,
	}
}

func FromDynamic(raw string) *Node {
	return &Node{
		Type: DynamicType,
		Raw:  raw,
	}
}

func Null() *Node {
	return &Node{Type: NullType}
}

func Hole() *Node {
	return &Node{Type: HoleType}
}

// Spread wraps arg as an inline-expansion marker.
func Spread(arg *Node) *Node {
	res := &Node{Type: SpreadType}
	arg.Parent = res
	arg.ParentIndex = 0
	res.Values = []*Node{arg}
	return res
}

// KeyVal is one object slot under construction. A nil Key marks an
// inline-expansion slot whose Val is the spread argument.
type KeyVal struct {
	Key *Node
	Val *Node
}

func FromKeyVals(kvs []KeyVal) *Node {
	return FromKeyValsAt(&Node{}, kvs)
}

func FromKeyValsAt(res *Node, kvs []KeyVal) *Node {
	res.Type = ObjectType
	res.Fields = make([]*Node, len(kvs))
	res.Values = make([]*Node, len(kvs))
	for i := range kvs {
		kv := &kvs[i]
		if kv.Key == nil {
			kv.Key = &Node{Type: SpreadType}
		}
		field := ""
		switch {
		case kv.Key.Computed:
		case kv.Key.Type == StringType || kv.Key.Type == IdentType:
			field = kv.Key.String
		case kv.Key.Type == NumberType:
			field = kv.Key.NumberLabel()
		}
		kv.Key.Parent = res
		kv.Key.ParentIndex = i
		kv.Key.ParentField = field
		kv.Val.Parent = res
		kv.Val.ParentIndex = i
		kv.Val.ParentField = field
		res.Fields[i] = kv.Key
		res.Values[i] = kv.Val
	}
	return res
}

func FromMap(yMap map[string]*Node) *Node {
	keys := slices.Sorted(maps.Keys(yMap))
	kvs := make([]KeyVal, 0, len(yMap))
	for _, key := range keys {
		kvs = append(kvs, KeyVal{Key: FromString(key), Val: yMap[key]})
	}
	return FromKeyVals(kvs)
}

func FromSlice(ySlice []*Node) *Node {
	res := &Node{
		Type: ArrayType,
	}
	res.Values = make([]*Node, len(ySlice))
	for i, y := range ySlice {
		res.Values[i] = y
		y.Parent = res
		y.ParentIndex = i
	}
	return res
}

// NumberLabel renders a number node the way it labels an object slot.
func (y *Node) NumberLabel() string {
	if y.Int64 != nil {
		return strconv.FormatInt(*y.Int64, 10)
	}
	if y.Float64 != nil {
		return strconv.FormatFloat(*y.Float64, 'g', -1, 64)
	}
	return y.Number
}

// SlotLabel returns the static label of object slot i, or ok=false when the
// slot is an inline expansion or its key is computed.
func (y *Node) SlotLabel(i int) (string, bool) {
	field := y.Fields[i]
	if field.Computed || field.Type == SpreadType {
		return "", false
	}
	switch field.Type {
	case StringType, IdentType:
		return field.String, true
	case NumberType:
		return field.NumberLabel(), true
	default:
		return "", false
	}
}

// Get returns the value of the first statically labeled slot named field.
func Get(y *Node, field string) *Node {
	n := len(y.Fields)
	for i := range n {
		label, ok := y.SlotLabel(i)
		if ok && label == field {
			return y.Values[i]
		}
	}
	return nil
}

// RemoveSlot deletes object slot i, reindexing the remaining slots.
func (y *Node) RemoveSlot(i int) {
	y.Fields = slices.Delete(y.Fields, i, i+1)
	y.Values = slices.Delete(y.Values, i, i+1)
	for j := i; j < len(y.Values); j++ {
		y.Fields[j].ParentIndex = j
		y.Values[j].ParentIndex = j
	}
}

// SetValue replaces object slot i's value (or array element i) with v,
// keeping the slot itself and its siblings untouched.
func (y *Node) SetValue(i int, v *Node) {
	old := y.Values[i]
	v.Parent = y
	v.ParentIndex = i
	v.ParentField = old.ParentField
	y.Values[i] = v
}

func (y *Node) Visit(f func(y *Node, isPost bool) (bool, error)) error {
	dive, err := f(y, false)
	if err != nil {
		return err
	}
	if dive {
		for _, yy := range y.Values {
			if err := yy.Visit(f); err != nil {
				return err
			}
		}
	}
	if _, err := f(y, true); err != nil {
		return err
	}
	return nil
}

func (y *Node) Root() *Node {
	res := y
	for res.Parent != nil {
		res = res.Parent
	}
	return res
}
