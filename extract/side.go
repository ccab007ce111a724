package extract

import (
	"maps"
	"slices"

	"github.com/signadot/sitepatch/ir"
)

// SideChannel maps canonical path keys to the original preserved
// expressions captured during extraction. It is consumed during patch
// application to inline those expressions wherever a placeholder appears
// inside a replacement value.
type SideChannel struct {
	m map[string]*ir.Node
}

func NewSideChannel() *SideChannel {
	return &SideChannel{m: map[string]*ir.Node{}}
}

func (s *SideChannel) Record(key string, node *ir.Node) {
	s.m[key] = node
}

func (s *SideChannel) Resolve(key string) (*ir.Node, bool) {
	node, ok := s.m[key]
	return node, ok
}

func (s *SideChannel) Len() int {
	return len(s.m)
}

func (s *SideChannel) Keys() []string {
	return slices.Sorted(maps.Keys(s.m))
}
