package encode

import (
	"testing"

	"github.com/signadot/sitepatch/ir"
)

func TestMustString(t *testing.T) {
	node := ir.FromMap(map[string]*ir.Node{
		"name":  ir.FromString("alice"),
		"age":   ir.FromInt(30),
		"tags":  ir.FromSlice([]*ir.Node{ir.FromString("a"), ir.Hole(), ir.FromString("b")}),
		"ratio": ir.FromFloat(0.5),
	})
	want := `{
  age: 30,
  name: 'alice',
  ratio: 0.5,
  tags: [
    'a',,
    'b'
  ]
}`
	if got := MustString(node); got != want {
		t.Errorf("MustString:\n%s\nwant:\n%s", got, want)
	}
}

func TestWireSpecials(t *testing.T) {
	tests := []struct {
		node *ir.Node
		want string
	}{
		{ir.Null(), "null"},
		{ir.FromBool(true), "true"},
		{ir.FromIdent("undefined"), "undefined"},
		{ir.FromRegex("a+", "i"), "/a+/i"},
		{ir.FromDynamic("f(x)"), "f(x)"},
		{ir.Spread(ir.FromIdent("xs")), "...xs"},
		{ir.FromKeyVals([]ir.KeyVal{{Val: ir.Spread(ir.FromIdent("r"))}}), "{ ...r }"},
		{ir.FromString("a'b"), `'a\'b'`},
	}
	for _, tc := range tests {
		if got := MustWire(tc.node); got != tc.want {
			t.Errorf("MustWire = %q, want %q", got, tc.want)
		}
	}
}
