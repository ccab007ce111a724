package keypath

import (
	"math"
	"strconv"
	"strings"
)

// Segment is one step of a logical path: a field name into a keyed
// container, or an index into an ordered container. Index segments carry a
// float64 so non-finite indices produced by resolved numeric keys survive
// canonicalization.
type Segment struct {
	field   string
	index   float64
	isIndex bool
}

func Field(name string) Segment {
	return Segment{field: name}
}

func Index(i int) Segment {
	return Segment{index: float64(i), isIndex: true}
}

func FloatIndex(f float64) Segment {
	return Segment{index: f, isIndex: true}
}

func (s Segment) IsIndex() bool {
	return s.isIndex
}

func (s Segment) FieldName() string {
	return s.field
}

// Int returns the segment's index as an int. It is only meaningful for
// finite index segments.
func (s Segment) Int() int {
	return int(s.index)
}

func (s Segment) Float() float64 {
	return s.index
}

// tokens for non-finite index segments; see package doc.
const (
	nanToken    = "NaN"
	posInfToken = "Infinity"
	negInfToken = "-Infinity"
)

func (s Segment) append(buf *strings.Builder) {
	if !s.isIndex {
		buf.WriteByte('.')
		buf.WriteString(quoteField(s.field))
		return
	}
	buf.WriteByte('[')
	switch {
	case math.IsNaN(s.index):
		buf.WriteString(nanToken)
	case math.IsInf(s.index, 1):
		buf.WriteString(posInfToken)
	case math.IsInf(s.index, -1):
		buf.WriteString(negInfToken)
	case s.index == math.Trunc(s.index):
		buf.WriteString(strconv.FormatInt(int64(s.index), 10))
	default:
		buf.WriteString(strconv.FormatFloat(s.index, 'g', -1, 64))
	}
	buf.WriteByte(']')
}

func (s Segment) String() string {
	var buf strings.Builder
	s.append(&buf)
	return buf.String()
}

// quoteField quotes a field name when it contains characters that would be
// ambiguous in the canonical encoding. The empty field name is quoted so it
// remains visible.
func quoteField(f string) string {
	if !fieldNeedsQuote(f) {
		return f
	}
	var buf strings.Builder
	buf.WriteByte('\'')
	for i := 0; i < len(f); i++ {
		c := f[i]
		if c == '\'' || c == '\\' {
			buf.WriteByte('\\')
		}
		buf.WriteByte(c)
	}
	buf.WriteByte('\'')
	return buf.String()
}

func fieldNeedsQuote(f string) bool {
	if f == "" {
		return true
	}
	for i := 0; i < len(f); i++ {
		c := f[i]
		switch {
		case c == '\'' || c == '\\' || c == '.' || c == '[' || c == ']' ||
			c == '$' || c == '*' || c == '{' || c == '}':
			return true
		case c <= ' ' || c == 0x7f:
			return true
		}
	}
	return false
}
