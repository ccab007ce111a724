package ir

import (
	"strconv"
	"strings"
)

// Path renders the node's location in the physical tree for diagnostics.
// Spread and computed-key slots render with marker forms since they have no
// logical address.
func (y *Node) Path() string {
	if y.Parent == nil {
		return "$"
	}
	switch y.Parent.Type {
	case ObjectType:
		i := y.ParentIndex
		prefix := y.Parent.Path()
		if i < len(y.Parent.Fields) {
			field := y.Parent.Fields[i]
			if field.Type == SpreadType {
				return prefix + ".<spread>"
			}
			if field.Computed {
				return prefix + ".<computed>"
			}
		}
		f := y.ParentField
		if f != "" && strings.IndexAny(f, "'.*$[]") == -1 {
			return prefix + "." + f
		}
		return prefix + ".'" + strings.Replace(f, "'", "\\'", -1) + "'"
	case ArrayType, TemplateType, SpreadType:
		return y.Parent.Path() + "[" + strconv.Itoa(y.ParentIndex) + "]"
	default:
		panic("parent but not in container")
	}
}
