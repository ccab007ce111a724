package data

import (
	"fmt"
	"sync"
)

// Brand is an opaque identity token shared by all values minted under the
// same registry key. Brands play the role of a cross-instance capability
// check: two independently linked copies of this package resolve the same
// key to the same pointer through the process-wide registry, so a
// placeholder created by one copy is recognized by the other.
type Brand struct {
	key string
}

func (b *Brand) String() string {
	return b.key
}

var (
	brandMu  sync.Mutex
	brandReg = map[string]*Brand{}
)

// BrandFor returns the process-wide Brand for key, minting it on first use.
func BrandFor(key string) *Brand {
	brandMu.Lock()
	defer brandMu.Unlock()
	b := brandReg[key]
	if b == nil {
		b = &Brand{key: key}
		brandReg[key] = b
	}
	return b
}

const placeholderBrandKey = "sitepatch/preserved-subtree"

// Placeholder stands in for a preserved subtree in extracted data. It
// carries only the canonical path key of the slot it replaced; the real
// expression lives in the extraction side channel under that key.
//
// Placeholders round-trip through validation as ordinary values and are
// resolved back to their captured expressions only during patch
// application.
type Placeholder struct {
	brand *Brand
	key   string
}

// NewPlaceholder mints a placeholder for the slot at the given canonical
// path key.
func NewPlaceholder(key string) Placeholder {
	return Placeholder{brand: BrandFor(placeholderBrandKey), key: key}
}

// Is reports whether p carries the preserved-subtree brand. The zero
// Placeholder does not.
func (p Placeholder) Is() bool {
	return p.brand == BrandFor(placeholderBrandKey)
}

// Key returns the canonical path key of the preserved slot.
func (p Placeholder) Key() string {
	return p.key
}

func (p Placeholder) String() string {
	return fmt.Sprintf("preserved(%s)", p.key)
}

// MarshalJSON renders the placeholder as a recognizable object so dry-run
// previews stay readable.
func (p Placeholder) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("{%q:%q}", "$preserved", p.key)), nil
}

// AsPlaceholder reports whether v is a branded placeholder.
func AsPlaceholder(v any) (Placeholder, bool) {
	p, ok := v.(Placeholder)
	if !ok || !p.Is() {
		return Placeholder{}, false
	}
	return p, true
}
