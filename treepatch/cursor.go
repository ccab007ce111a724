package treepatch

import (
	"slices"

	"github.com/signadot/sitepatch/keypath"
)

// cursor links a slot being visited back to the root, one step per
// container level. Logical paths are reconstructed on demand by walking
// upward, so slots under computed keys cost nothing until a patch would
// need to address them.
type cursor struct {
	parent *cursor
	seg    keypath.Segment

	// computed marks a step with no static label. Any path through such a
	// step is unsupported.
	computed bool
}

// path rebuilds the logical path of the slot, reporting ok=false when a
// step on the way to the root has no static label.
func (c *cursor) path() (keypath.Path, bool) {
	var segs []keypath.Segment
	for x := c; x != nil; x = x.parent {
		if x.computed {
			return nil, false
		}
		segs = append(segs, x.seg)
	}
	slices.Reverse(segs)
	return keypath.Path(segs), true
}

func (c *cursor) key() (string, bool) {
	p, ok := c.path()
	if !ok {
		return "", false
	}
	return p.Key(), true
}
