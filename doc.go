// Package sitepatch statically refines data embedded in component call
// sites. It extracts plain data from an argument expression tree, hands it
// to validation and derivation hooks, and writes the reshaped data back
// into the tree without disturbing anything it cannot safely represent:
// dynamic expressions, inline expansions, sparse slots, runtime-owned
// preserved subtrees.
//
// The pipeline is extract -> validate -> plan -> consolidate -> patch,
// run synchronously per call site by Process. Rules come either from Go
// code (Rule) or from a YAML ruleset with expr-based selectors
// (LoadRuleset).
package sitepatch
