package plan

import (
	"fmt"
	"strconv"
	"strings"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/goccy/go-json"

	"github.com/signadot/sitepatch/keypath"
)

// JSONPatch renders the consolidated plan as an RFC 6902 document: set
// becomes replace, delete becomes remove. Paths with non-finite indices and
// values containing gaps cannot be represented and are fatal.
func (p *Plan) JSONPatch() ([]byte, error) {
	ops := make([]map[string]any, 0, p.Len())
	for _, patch := range p.Patches() {
		pointer, err := jsonPointer(patch.Path)
		if err != nil {
			return nil, err
		}
		switch patch.Op {
		case Delete:
			ops = append(ops, map[string]any{"op": "remove", "path": pointer})
		default:
			if !holeFree(patch.Value) {
				return nil, fmt.Errorf("cannot export sparse value at %s", patch.Path.Key())
			}
			ops = append(ops, map[string]any{"op": "replace", "path": pointer, "value": patch.Value})
		}
	}
	return json.Marshal(ops)
}

// Preview dry-runs the plan against the extracted data, returning the
// logical document the tree would encode after patching. The physical tree
// is not touched.
func Preview(extracted map[string]any, p *Plan) (map[string]any, error) {
	doc, err := json.Marshal(extracted)
	if err != nil {
		return nil, fmt.Errorf("preview: %w", err)
	}
	patchDoc, err := p.JSONPatch()
	if err != nil {
		return nil, fmt.Errorf("preview: %w", err)
	}
	ops, err := jsonpatch.DecodePatch(patchDoc)
	if err != nil {
		return nil, fmt.Errorf("preview: %w", err)
	}
	out, err := ops.Apply(doc)
	if err != nil {
		return nil, fmt.Errorf("preview: %w", err)
	}
	var res map[string]any
	if err := json.Unmarshal(out, &res); err != nil {
		return nil, fmt.Errorf("preview: %w", err)
	}
	return res, nil
}

func jsonPointer(path keypath.Path) (string, error) {
	var buf strings.Builder
	for _, seg := range path {
		buf.WriteByte('/')
		if seg.IsIndex() {
			f := seg.Float()
			if f != float64(int64(f)) {
				return "", fmt.Errorf("cannot export index %s", seg)
			}
			buf.WriteString(strconv.FormatInt(int64(f), 10))
			continue
		}
		name := seg.FieldName()
		name = strings.ReplaceAll(name, "~", "~0")
		name = strings.ReplaceAll(name, "/", "~1")
		buf.WriteString(name)
	}
	return buf.String(), nil
}
