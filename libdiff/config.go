package libdiff

// ArrayPolicy selects how ordered containers are compared.
type ArrayPolicy int

const (
	// ArraysAtomic never recurses: at most one Change for the whole
	// container, decided by the configured equality.
	ArraysAtomic ArrayPolicy = iota
	// ArraysDiff recurses index-by-index, exactly like keyed containers.
	ArraysDiff
	// ArraysIgnore neither recurses nor emits.
	ArraysIgnore
)

// ArrayEquality decides atomic-array sameness.
type ArrayEquality int

const (
	// EqualityReference compares by underlying storage identity.
	EqualityReference ArrayEquality = iota
	// EqualityShallow compares same length plus element-wise identity.
	EqualityShallow
)

type Config struct {
	Arrays        ArrayPolicy
	ArrayEquality ArrayEquality

	// ExcludeKeys are skipped entirely in keyed containers: no events, no
	// recursion. Ordered-container indices are never excluded.
	ExcludeKeys []string

	// DisableCycleGuard turns off the in-flight pair stack bounding
	// traversal of self-referential structures.
	DisableCycleGuard bool
}

// DefaultConfig pairs with the overlay merger: arrays replace atomically
// there, so they must compare by reference here.
func DefaultConfig() *Config {
	return &Config{
		Arrays:        ArraysAtomic,
		ArrayEquality: EqualityReference,
	}
}
