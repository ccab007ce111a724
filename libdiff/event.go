package libdiff

import (
	"fmt"

	"github.com/signadot/sitepatch/keypath"
)

type Kind int

const (
	Create Kind = iota
	Change
	Remove
)

func (k Kind) String() string {
	switch k {
	case Create:
		return "create"
	case Change:
		return "change"
	case Remove:
		return "remove"
	}
	return "<unknown kind>"
}

// Event is one observed difference at a logical path. Old is unset for
// Create, New is unset for Remove.
type Event struct {
	Kind Kind
	Path keypath.Path
	Old  any
	New  any
}

func (e Event) String() string {
	switch e.Kind {
	case Create:
		return fmt.Sprintf("create %s = %v", e.Path.Key(), e.New)
	case Remove:
		return fmt.Sprintf("remove %s (was %v)", e.Path.Key(), e.Old)
	default:
		return fmt.Sprintf("change %s: %v -> %v", e.Path.Key(), e.Old, e.New)
	}
}
