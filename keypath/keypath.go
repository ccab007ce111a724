package keypath

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Path is a logical path: the ordered segments addressing one location in
// plain data. The zero value addresses the root.
type Path []Segment

// Key returns the canonical string key of the path, suitable for map and
// set indexing. The root encodes as "$".
func (p Path) Key() string {
	var buf strings.Builder
	buf.WriteByte('$')
	for _, s := range p {
		s.append(&buf)
	}
	return buf.String()
}

func (p Path) String() string {
	return p.Key()
}

// Child returns a new path extended by seg. The receiver is not modified.
func (p Path) Child(seg Segment) Path {
	res := make(Path, len(p)+1)
	copy(res, p)
	res[len(p)] = seg
	return res
}

// Prepend returns a new path with seg placed before the receiver's
// segments. Used for bottom-up path accumulation.
func (p Path) Prepend(seg Segment) Path {
	res := make(Path, len(p)+1)
	res[0] = seg
	copy(res[1:], p)
	return res
}

// First returns the path's first segment. It panics on the root path.
func (p Path) First() Segment {
	return p[0]
}

// Parse decodes a canonical path key back into a Path. It accepts exactly
// the output of Key.
func Parse(key string) (Path, error) {
	if len(key) == 0 || key[0] != '$' {
		return nil, fmt.Errorf("path %q should start with '$'", key)
	}
	var res Path
	rest := key[1:]
	for len(rest) > 0 {
		switch rest[0] {
		case '.':
			field, tail, err := parseField(rest[1:])
			if err != nil {
				return nil, fmt.Errorf("path %q: %w", key, err)
			}
			res = append(res, Field(field))
			rest = tail
		case '[':
			i := strings.IndexByte(rest, ']')
			if i == -1 {
				return nil, fmt.Errorf("path %q: expected ']'", key)
			}
			idx, err := parseIndex(rest[1:i])
			if err != nil {
				return nil, fmt.Errorf("path %q: %w", key, err)
			}
			res = append(res, FloatIndex(idx))
			rest = rest[i+1:]
		default:
			return nil, fmt.Errorf("path %q: expected '.' or '['", key)
		}
	}
	return res, nil
}

func parseIndex(is string) (float64, error) {
	switch is {
	case nanToken:
		return math.NaN(), nil
	case posInfToken:
		return math.Inf(1), nil
	case negInfToken:
		return math.Inf(-1), nil
	}
	f, err := strconv.ParseFloat(is, 64)
	if err != nil {
		return 0, err
	}
	return f, nil
}

func parseField(frag string) (field, rest string, err error) {
	if len(frag) == 0 {
		return "", "", fmt.Errorf("expected field at end of path")
	}
	if frag[0] != '\'' {
		i := strings.IndexAny(frag, ".[")
		if i == -1 {
			return frag, "", nil
		}
		return frag[:i], frag[i:], nil
	}
	escaped := false
	res := make([]byte, 0, len(frag))
	for i := 1; i < len(frag); i++ {
		c := frag[i]
		switch {
		case escaped:
			escaped = false
			res = append(res, c)
		case c == '\\':
			escaped = true
		case c == '\'':
			return string(res), frag[i+1:], nil
		default:
			res = append(res, c)
		}
	}
	return "", "", fmt.Errorf("unterminated quoted field")
}
