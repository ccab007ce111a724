// Package encode renders IR nodes back to the expression-literal notation
// read by parse.
//
//	buf := bytes.NewBuffer(nil)
//	err := encode.Encode(node, buf)
//
//	s := encode.MustString(node)
//
// Multi-line indented output is the default; Wire(true) produces a compact
// single-line form, Colors enables ANSI coloring for terminals.
package encode
