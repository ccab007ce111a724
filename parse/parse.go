// Package parse reads the compact expression-literal notation used for
// call-site argument fixtures.
//
// The notation covers the expression forms the extractor understands:
// null/true/false, numbers, 'single' and "double" strings, `templates`
// with ${...} parts, /regex/flags, identifiers, objects with literal,
// computed ([expr]) and spread (...expr) slots, arrays with elisions and
// spreads. Any other expression (calls, member access, arithmetic) parses
// as a Dynamic node carrying its raw source text.
package parse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/signadot/sitepatch/ir"
)

func Parse(d []byte) (*ir.Node, error) {
	p := &parser{src: string(d)}
	p.skipSpace()
	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.off != len(p.src) {
		return nil, p.errorf("trailing input at offset %d", p.off)
	}
	return node, nil
}

type parser struct {
	src string
	off int
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("parse: "+format, args...)
}

func (p *parser) eof() bool {
	return p.off >= len(p.src)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.off]
}

func (p *parser) skipSpace() {
	for !p.eof() {
		c := p.src[p.off]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			p.off++
		case c == '/' && p.off+1 < len(p.src) && p.src[p.off+1] == '/':
			i := strings.IndexByte(p.src[p.off:], '\n')
			if i == -1 {
				p.off = len(p.src)
				return
			}
			p.off += i + 1
		case c == '/' && p.off+1 < len(p.src) && p.src[p.off+1] == '*':
			i := strings.Index(p.src[p.off+2:], "*/")
			if i == -1 {
				p.off = len(p.src)
				return
			}
			p.off += i + 4
		default:
			return
		}
	}
}

// parseExpr parses one expression ending at a top-level delimiter. When the
// simple form is followed by more input (a call, member access, operator),
// the whole run re-parses as a Dynamic node.
func (p *parser) parseExpr() (*ir.Node, error) {
	start := p.off
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.atDelimiter() {
		return node, nil
	}
	// compound expression: take the balanced run as dynamic source text
	p.off = start
	raw, err := p.balancedRun()
	if err != nil {
		return nil, err
	}
	return ir.FromDynamic(raw), nil
}

func (p *parser) atDelimiter() bool {
	if p.eof() {
		return true
	}
	switch p.peek() {
	case ',', '}', ']', ')', ':':
		return true
	}
	return false
}

func (p *parser) parsePrimary() (*ir.Node, error) {
	if p.eof() {
		return nil, p.errorf("unexpected end of input")
	}
	c := p.peek()
	switch {
	case c == '{':
		return p.parseObject()
	case c == '[':
		return p.parseArray()
	case c == '\'' || c == '"':
		s, err := p.parseString(c)
		if err != nil {
			return nil, err
		}
		return ir.FromString(s), nil
	case c == '`':
		return p.parseTemplate()
	case c == '/':
		return p.parseRegex()
	case c == '-' || c >= '0' && c <= '9':
		return p.parseNumber()
	case isIdentStart(c):
		return p.parseIdentOrKeyword()
	case c == '(':
		raw, err := p.balancedRun()
		if err != nil {
			return nil, err
		}
		return ir.FromDynamic(raw), nil
	default:
		return nil, p.errorf("unexpected character %q at offset %d", c, p.off)
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}

func (p *parser) parseIdent() string {
	start := p.off
	for !p.eof() && isIdentPart(p.src[p.off]) {
		p.off++
	}
	return p.src[start:p.off]
}

func (p *parser) parseIdentOrKeyword() (*ir.Node, error) {
	name := p.parseIdent()
	switch name {
	case "null":
		return ir.Null(), nil
	case "true":
		return ir.FromBool(true), nil
	case "false":
		return ir.FromBool(false), nil
	default:
		return ir.FromIdent(name), nil
	}
}

func (p *parser) parseNumber() (*ir.Node, error) {
	start := p.off
	if p.peek() == '-' {
		p.off++
		p.skipSpace()
		if !p.eof() && isIdentStart(p.peek()) {
			// -Infinity and friends parse as negated idents
			name := p.parseIdent()
			if name == "Infinity" {
				f := ir.FromFloat(negInf())
				f.Number = "-Infinity"
				return f, nil
			}
			p.off = start
			raw, err := p.balancedRun()
			if err != nil {
				return nil, err
			}
			return ir.FromDynamic(raw), nil
		}
	}
	for !p.eof() {
		c := p.peek()
		if c >= '0' && c <= '9' || c == '.' || c == 'e' || c == 'E' ||
			(c == '+' || c == '-') && (p.src[p.off-1] == 'e' || p.src[p.off-1] == 'E') {
			p.off++
			continue
		}
		break
	}
	text := p.src[start:p.off]
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		node := ir.FromInt(i)
		node.Number = text
		return node, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, p.errorf("bad number %q", text)
	}
	node := ir.FromFloat(f)
	node.Number = text
	return node, nil
}

func negInf() float64 {
	f := 0.0
	return -1 / f
}

func (p *parser) parseString(quote byte) (string, error) {
	p.off++ // opening quote
	var buf strings.Builder
	for !p.eof() {
		c := p.src[p.off]
		switch c {
		case quote:
			p.off++
			return buf.String(), nil
		case '\\':
			s, err := p.parseEscape()
			if err != nil {
				return "", err
			}
			buf.WriteString(s)
		default:
			buf.WriteByte(c)
			p.off++
		}
	}
	return "", p.errorf("unterminated string")
}

func (p *parser) parseEscape() (string, error) {
	if p.off+1 >= len(p.src) {
		return "", p.errorf("unterminated escape")
	}
	c := p.src[p.off+1]
	p.off += 2
	switch c {
	case 'n':
		return "\n", nil
	case 't':
		return "\t", nil
	case 'r':
		return "\r", nil
	case '0':
		return "\x00", nil
	case 'u':
		if p.off+4 > len(p.src) {
			return "", p.errorf("unterminated unicode escape")
		}
		u, err := strconv.ParseUint(p.src[p.off:p.off+4], 16, 32)
		if err != nil {
			return "", p.errorf("bad unicode escape: %v", err)
		}
		p.off += 4
		return string(rune(u)), nil
	default:
		return string(c), nil
	}
}

// parseTemplate reads a `...${...}...` template. Literal chunks become
// String parts, interpolations become whatever they parse as.
func (p *parser) parseTemplate() (*ir.Node, error) {
	p.off++ // opening backtick
	res := &ir.Node{Type: ir.TemplateType}
	var buf strings.Builder
	flush := func() {
		part := ir.FromString(buf.String())
		part.Parent = res
		part.ParentIndex = len(res.Values)
		res.Values = append(res.Values, part)
		buf.Reset()
	}
	for !p.eof() {
		c := p.src[p.off]
		switch {
		case c == '`':
			p.off++
			if buf.Len() > 0 || len(res.Values) == 0 {
				flush()
			}
			return res, nil
		case c == '\\':
			s, err := p.parseEscape()
			if err != nil {
				return nil, err
			}
			buf.WriteString(s)
		case c == '$' && p.off+1 < len(p.src) && p.src[p.off+1] == '{':
			if buf.Len() > 0 {
				flush()
			}
			p.off += 2
			p.skipSpace()
			part, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			p.skipSpace()
			if p.peek() != '}' {
				return nil, p.errorf("expected '}' closing interpolation")
			}
			p.off++
			part.Parent = res
			part.ParentIndex = len(res.Values)
			res.Values = append(res.Values, part)
		default:
			buf.WriteByte(c)
			p.off++
		}
	}
	return nil, p.errorf("unterminated template")
}

func (p *parser) parseRegex() (*ir.Node, error) {
	p.off++ // opening /
	start := p.off
	inClass := false
	for !p.eof() {
		c := p.src[p.off]
		switch {
		case c == '\\':
			p.off += 2
			continue
		case c == '[':
			inClass = true
		case c == ']':
			inClass = false
		case c == '/' && !inClass:
			pattern := p.src[start:p.off]
			p.off++
			flagStart := p.off
			for !p.eof() && isIdentPart(p.peek()) {
				p.off++
			}
			return ir.FromRegex(pattern, p.src[flagStart:p.off]), nil
		case c == '\n':
			return nil, p.errorf("newline in regex")
		}
		p.off++
	}
	return nil, p.errorf("unterminated regex")
}

func (p *parser) parseObject() (*ir.Node, error) {
	p.off++ // '{'
	var kvs []ir.KeyVal
	for {
		p.skipSpace()
		if p.eof() {
			return nil, p.errorf("unterminated object")
		}
		if p.peek() == '}' {
			p.off++
			return ir.FromKeyVals(kvs), nil
		}
		kv, err := p.parseSlot()
		if err != nil {
			return nil, err
		}
		kvs = append(kvs, kv)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.off++
		case '}':
		default:
			return nil, p.errorf("expected ',' or '}' in object at offset %d", p.off)
		}
	}
}

func (p *parser) parseSlot() (ir.KeyVal, error) {
	if strings.HasPrefix(p.src[p.off:], "...") {
		p.off += 3
		p.skipSpace()
		arg, err := p.parseExpr()
		if err != nil {
			return ir.KeyVal{}, err
		}
		return ir.KeyVal{Val: ir.Spread(arg)}, nil
	}
	key, err := p.parseKey()
	if err != nil {
		return ir.KeyVal{}, err
	}
	p.skipSpace()
	if p.peek() != ':' {
		// shorthand {name}: the value is the named binding
		if key.Type == ir.IdentType && !key.Computed {
			return ir.KeyVal{Key: key, Val: ir.FromIdent(key.String)}, nil
		}
		return ir.KeyVal{}, p.errorf("expected ':' after object key at offset %d", p.off)
	}
	p.off++
	p.skipSpace()
	val, err := p.parseExpr()
	if err != nil {
		return ir.KeyVal{}, err
	}
	return ir.KeyVal{Key: key, Val: val}, nil
}

func (p *parser) parseKey() (*ir.Node, error) {
	c := p.peek()
	switch {
	case c == '[':
		p.off++
		p.skipSpace()
		key, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.peek() != ']' {
			return nil, p.errorf("expected ']' closing computed key")
		}
		p.off++
		key.Computed = true
		return key, nil
	case c == '\'' || c == '"':
		s, err := p.parseString(c)
		if err != nil {
			return nil, err
		}
		return ir.FromString(s), nil
	case c == '-' || c >= '0' && c <= '9':
		return p.parseNumber()
	case isIdentStart(c):
		return ir.FromIdent(p.parseIdent()), nil
	default:
		return nil, p.errorf("bad object key at offset %d", p.off)
	}
}

func (p *parser) parseArray() (*ir.Node, error) {
	p.off++ // '['
	var elems []*ir.Node
	for {
		p.skipSpace()
		if p.eof() {
			return nil, p.errorf("unterminated array")
		}
		switch p.peek() {
		case ']':
			p.off++
			return ir.FromSlice(elems), nil
		case ',':
			// elision
			p.off++
			elems = append(elems, ir.Hole())
			continue
		}
		var elem *ir.Node
		var err error
		if strings.HasPrefix(p.src[p.off:], "...") {
			p.off += 3
			p.skipSpace()
			var arg *ir.Node
			arg, err = p.parseExpr()
			if err == nil {
				elem = ir.Spread(arg)
			}
		} else {
			elem, err = p.parseExpr()
		}
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.off++
		case ']':
		default:
			return nil, p.errorf("expected ',' or ']' in array at offset %d", p.off)
		}
	}
}

// balancedRun consumes a compound expression up to the next top-level
// delimiter and returns its trimmed source text.
func (p *parser) balancedRun() (string, error) {
	start := p.off
	depth := 0
	for !p.eof() {
		c := p.src[p.off]
		switch c {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth == 0 {
				return p.finishRun(start)
			}
			depth--
		case ',':
			if depth == 0 {
				return p.finishRun(start)
			}
		case '\'', '"', '`':
			if _, err := p.parseString(c); err != nil {
				return "", err
			}
			continue
		}
		p.off++
	}
	return p.finishRun(start)
}

func (p *parser) finishRun(start int) (string, error) {
	raw := strings.TrimSpace(p.src[start:p.off])
	if raw == "" {
		return "", p.errorf("empty expression at offset %d", start)
	}
	return raw, nil
}
