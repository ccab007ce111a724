package encode

import (
	"bytes"
	"strings"

	"github.com/signadot/sitepatch/ir"
)

func MustString(node *ir.Node) string {
	buf := bytes.NewBuffer(nil)
	if err := Encode(node, buf); err != nil {
		panic(err)
	}
	return strings.TrimSpace(buf.String())
}

// MustWire renders node in compact single-line form.
func MustWire(node *ir.Node) string {
	buf := bytes.NewBuffer(nil)
	if err := Encode(node, buf, Wire(true)); err != nil {
		panic(err)
	}
	return strings.TrimSpace(buf.String())
}
