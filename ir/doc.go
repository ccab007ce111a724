// Package ir represents the physical expression tree of a component
// call-site argument.
//
// Keyed containers (ObjectType) hold an ordered slot list; each slot is a
// Fields[i]/Values[i] pair whose field is either a key expression or a
// SpreadType marker (inline expansion). Ordered containers (ArrayType) hold
// elements that may be real expressions, HoleType elisions, or SpreadType
// markers. This list is the authoritative order and membership of the tree;
// the logical data view extracted from it is lossy by construction.
package ir
