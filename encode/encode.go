package encode

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/signadot/sitepatch/ir"
)

type EncState struct {
	depth  int
	indent int
	wire   bool

	Color func(ir.Type, ColorAttr, string) string
}

func Encode(node *ir.Node, w io.Writer, opts ...EncodeOption) error {
	es := &EncState{
		indent: 2,
	}
	for _, opt := range opts {
		opt(es)
	}
	if es.Color == nil {
		es.Color = func(_ ir.Type, _ ColorAttr, s string) string { return s }
	}
	return encode(node, w, es)
}

func encode(node *ir.Node, w io.Writer, es *EncState) error {
	switch node.Type {
	case ir.NullType:
		return writeString(w, es.Color(node.Type, ValueColor, "null"))
	case ir.BoolType:
		return writeString(w, es.Color(node.Type, ValueColor, strconv.FormatBool(node.Bool)))
	case ir.NumberType:
		return writeString(w, es.Color(node.Type, ValueColor, numberText(node)))
	case ir.StringType:
		return writeString(w, es.Color(node.Type, ValueColor, quote(node.String)))
	case ir.RegexType:
		return writeString(w, es.Color(node.Type, ValueColor, "/"+node.String+"/"+node.Flags))
	case ir.IdentType:
		return writeString(w, es.Color(node.Type, ValueColor, node.String))
	case ir.DynamicType:
		return writeString(w, es.Color(node.Type, ValueColor, node.Raw))
	case ir.TemplateType:
		return encodeTemplate(node, w, es)
	case ir.HoleType:
		return nil
	case ir.SpreadType:
		if err := writeString(w, es.Color(node.Type, SepColor, "...")); err != nil {
			return err
		}
		return encode(node.Values[0], w, es)
	case ir.ObjectType:
		return encodeObject(node, w, es)
	case ir.ArrayType:
		return encodeArray(node, w, es)
	default:
		return fmt.Errorf("encode: unknown node type %s", node.Type)
	}
}

func numberText(node *ir.Node) string {
	if node.Number != "" {
		return node.Number
	}
	if node.Int64 != nil {
		return strconv.FormatInt(*node.Int64, 10)
	}
	if node.Float64 != nil {
		f := *node.Float64
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
	return "0"
}

func quote(s string) string {
	var buf strings.Builder
	buf.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\'', '\\':
			buf.WriteByte('\\')
			buf.WriteByte(c)
		case '\n':
			buf.WriteString("\\n")
		case '\t':
			buf.WriteString("\\t")
		case '\r':
			buf.WriteString("\\r")
		default:
			buf.WriteByte(c)
		}
	}
	buf.WriteByte('\'')
	return buf.String()
}

func encodeTemplate(node *ir.Node, w io.Writer, es *EncState) error {
	if err := writeString(w, "`"); err != nil {
		return err
	}
	for _, part := range node.Values {
		if part.Type == ir.StringType {
			if err := writeString(w, es.Color(part.Type, ValueColor, escapeChunk(part.String))); err != nil {
				return err
			}
			continue
		}
		if err := writeString(w, es.Color(node.Type, SepColor, "${")); err != nil {
			return err
		}
		if err := encode(part, w, es); err != nil {
			return err
		}
		if err := writeString(w, es.Color(node.Type, SepColor, "}")); err != nil {
			return err
		}
	}
	return writeString(w, "`")
}

func escapeChunk(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "`", "\\`")
	return strings.ReplaceAll(s, "${", "\\${")
}

func encodeObject(node *ir.Node, w io.Writer, es *EncState) error {
	if len(node.Fields) == 0 {
		return writeString(w, es.Color(node.Type, SepColor, "{}"))
	}
	if err := writeString(w, es.Color(node.Type, SepColor, "{")); err != nil {
		return err
	}
	es.depth++
	for i := range node.Fields {
		if i > 0 {
			if err := writeString(w, es.Color(node.Type, SepColor, ",")); err != nil {
				return err
			}
		}
		if err := writeSep(w, es); err != nil {
			return err
		}
		field := node.Fields[i]
		val := node.Values[i]
		if field.Type == ir.SpreadType {
			if err := writeString(w, es.Color(ir.SpreadType, SepColor, "...")); err != nil {
				return err
			}
			if err := encode(val.Values[0], w, es); err != nil {
				return err
			}
			continue
		}
		if err := encodeKey(field, w, es); err != nil {
			return err
		}
		if err := writeString(w, es.Color(node.Type, SepColor, ": ")); err != nil {
			return err
		}
		if err := encode(val, w, es); err != nil {
			return err
		}
	}
	es.depth--
	if err := writeSep(w, es); err != nil {
		return err
	}
	return writeString(w, es.Color(node.Type, SepColor, "}"))
}

func encodeKey(field *ir.Node, w io.Writer, es *EncState) error {
	if field.Computed {
		if err := writeString(w, es.Color(ir.ObjectType, SepColor, "[")); err != nil {
			return err
		}
		if err := encode(field, w, es); err != nil {
			return err
		}
		return writeString(w, es.Color(ir.ObjectType, SepColor, "]"))
	}
	switch field.Type {
	case ir.IdentType:
		return writeString(w, es.Color(ir.ObjectType, FieldColor, field.String))
	case ir.StringType:
		if identSafe(field.String) {
			return writeString(w, es.Color(ir.ObjectType, FieldColor, field.String))
		}
		return writeString(w, es.Color(ir.ObjectType, FieldColor, quote(field.String)))
	case ir.NumberType:
		return writeString(w, es.Color(ir.ObjectType, FieldColor, field.NumberLabel()))
	default:
		return fmt.Errorf("encode: bad object key type %s", field.Type)
	}
}

func identSafe(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		ok := c == '_' || c == '$' ||
			c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
			i > 0 && c >= '0' && c <= '9'
		if !ok {
			return false
		}
	}
	switch s {
	case "null", "true", "false":
		return false
	}
	return true
}

func encodeArray(node *ir.Node, w io.Writer, es *EncState) error {
	if len(node.Values) == 0 {
		return writeString(w, es.Color(node.Type, SepColor, "[]"))
	}
	if err := writeString(w, es.Color(node.Type, SepColor, "[")); err != nil {
		return err
	}
	es.depth++
	trailingHole := false
	for i, elem := range node.Values {
		if i > 0 {
			if err := writeString(w, es.Color(node.Type, SepColor, ",")); err != nil {
				return err
			}
		}
		if elem.Type == ir.HoleType {
			trailingHole = true
			continue
		}
		trailingHole = false
		if err := writeSep(w, es); err != nil {
			return err
		}
		if err := encode(elem, w, es); err != nil {
			return err
		}
	}
	// a trailing hole needs its comma to survive re-parsing
	if trailingHole {
		if err := writeString(w, es.Color(node.Type, SepColor, ",")); err != nil {
			return err
		}
	}
	es.depth--
	if err := writeSep(w, es); err != nil {
		return err
	}
	return writeString(w, es.Color(node.Type, SepColor, "]"))
}

func writeSep(w io.Writer, es *EncState) error {
	if es.wire {
		return writeString(w, " ")
	}
	return writeString(w, "\n"+strings.Repeat(" ", es.depth*es.indent))
}

func writeString(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	return err
}
