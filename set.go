package confluent

import "cmp"

// Set is a confluently persistent sorted set: a (provider, root) handle
// over a hash-consed treap. The zero value is
// not meaningful; construct one with NewSet.
//
// Every operation that derives a new version returns a fresh Set value
// rather than mutating the receiver, since the whole point of the engine is
// that old versions remain valid after new ones are built. Call Release
// when a particular handle is no longer needed so its reference can be
// dropped; forgetting to do so simply keeps the underlying nodes alive
// longer; see the package-level "Concurrency" discussion about ownership.
type Set[K any] struct {
	provider *SetProvider[K]
	root     *setNode[K]
}

// NewSet returns the empty set over the given provider.
func NewSet[K any](p *SetProvider[K]) Set[K] {
	return Set[K]{provider: p}
}

// NewOrderedSet returns the empty set over DefaultSetProvider[K], the
// package-wide default provider for cmp.Ordered keys.
func NewOrderedSet[K cmp.Ordered]() Set[K] {
	return NewSet(DefaultSetProvider[K]())
}

// Provider returns the set's provider.
func (s Set[K]) Provider() *SetProvider[K] { return s.provider }

// Size returns the number of elements.
func (s Set[K]) Size() uint64 { return setSize(s.root) }

// Hash returns the container-level hash: the cached hash of the root, 0 for
// the empty set.
func (s Set[K]) Hash() uint64 { return setHash(s.root) }

// Equals reports whether s and other have the same provider and identical
// root pointers, which (by canonicalization) holds iff they contain the
// same elements.
func (s Set[K]) Equals(other Set[K]) (bool, error) {
	if s.provider != other.provider {
		return false, ErrProviderMismatch
	}
	return s.root == other.root, nil
}

// Clone returns a new handle sharing the same root, with its own acquired
// reference.
func (s Set[K]) Clone() Set[K] {
	return Set[K]{provider: s.provider, root: acquireSet(s.root)}
}

// Release drops this handle's reference to its root, allowing the
// underlying nodes to be reclaimed once no other handle references them.
func (s Set[K]) Release() {
	releaseSet(s.provider, s.root)
}

// Insert returns a set with value inserted, and whether it was newly added.
func (s Set[K]) Insert(value K) (Set[K], bool) {
	leaf := makeSetLeaf(s.provider, value)
	newRoot := unionSet(s.provider, leaf, s.root)
	releaseSet(s.provider, leaf)
	inserted := setSize(newRoot) > setSize(s.root)
	return Set[K]{s.provider, newRoot}, inserted
}

// Erase returns a set with key removed, and whether it was present.
func (s Set[K]) Erase(key K) (Set[K], bool) {
	newRoot := eraseSet(s.provider, s.root, key)
	erased := setSize(newRoot) < setSize(s.root)
	return Set[K]{s.provider, newRoot}, erased
}

// InsertRange inserts every value, returning the resulting set and the
// count of values that were newly added.
func (s Set[K]) InsertRange(values []K) (Set[K], int) {
	cur := s.Clone()
	inserted := 0
	for _, v := range values {
		next, added := cur.Insert(v)
		cur.Release()
		cur = next
		if added {
			inserted++
		}
	}
	return cur, inserted
}

// EraseRange removes the elements at in-order indices [first, last),
// returning the resulting set and the count erased.
func (s Set[K]) EraseRange(first, last uint64) (Set[K], uint64, error) {
	n := setSize(s.root)
	if last < first || last > n {
		return Set[K]{}, 0, ErrRangeOutOfBounds
	}
	headPart := headSet(s.provider, s.root, first)
	tailPart := tailSet(s.provider, s.root, last)
	newRoot := joinSet(s.provider, headPart, tailPart)
	releaseSet(s.provider, headPart)
	releaseSet(s.provider, tailPart)
	return Set[K]{s.provider, newRoot}, last - first, nil
}

// RetainRange keeps only the elements at in-order indices [first, last),
// returning the resulting set and the count erased.
func (s Set[K]) RetainRange(first, last uint64) (Set[K], uint64, error) {
	n := setSize(s.root)
	if last < first || last > n {
		return Set[K]{}, 0, ErrRangeOutOfBounds
	}
	tailPart := tailSet(s.provider, s.root, first)
	newRoot := headSet(s.provider, tailPart, last-first)
	releaseSet(s.provider, tailPart)
	return Set[K]{s.provider, newRoot}, n - (last - first), nil
}

func (s Set[K]) checkProvider(other Set[K]) error {
	if s.provider != other.provider {
		return ErrProviderMismatch
	}
	return nil
}

// Union returns the set containing every key in s or other.
func (s Set[K]) Union(other Set[K]) (Set[K], error) {
	if err := s.checkProvider(other); err != nil {
		return Set[K]{}, err
	}
	return Set[K]{s.provider, unionSet(s.provider, s.root, other.root)}, nil
}

// Intersection returns the set containing every key in both s and other.
func (s Set[K]) Intersection(other Set[K]) (Set[K], error) {
	if err := s.checkProvider(other); err != nil {
		return Set[K]{}, err
	}
	return Set[K]{s.provider, intersectSet(s.provider, s.root, other.root)}, nil
}

// Difference returns the set containing every key in s not in other.
func (s Set[K]) Difference(other Set[K]) (Set[K], error) {
	if err := s.checkProvider(other); err != nil {
		return Set[K]{}, err
	}
	return Set[K]{s.provider, diffSet(s.provider, s.root, other.root)}, nil
}

// SymmetricDifference returns the set containing every key present in
// exactly one of s, other.
func (s Set[K]) SymmetricDifference(other Set[K]) (Set[K], error) {
	if err := s.checkProvider(other); err != nil {
		return Set[K]{}, err
	}
	return Set[K]{s.provider, symmetricDiffSet(s.provider, s.root, other.root)}, nil
}

// Includes reports whether every key of other is present in s.
func (s Set[K]) Includes(other Set[K]) (bool, error) {
	if err := s.checkProvider(other); err != nil {
		return false, err
	}
	return includesSet(s.provider, s.root, other.root), nil
}

// Find reports the value equal to key, if present.
func (s Set[K]) Find(key K) (K, bool) {
	node, _ := lowerBoundSet(s.root, func(v K) bool { return s.provider.cmp(v, key) < 0 })
	if node == nil || s.provider.cmp(node.value, key) != 0 {
		var zero K
		return zero, false
	}
	return node.value, true
}

// LowerBound returns the smallest value >= key and its in-order index, or
// (zero, size, false) if none.
func (s Set[K]) LowerBound(key K) (K, uint64, bool) {
	node, idx := lowerBoundSet(s.root, func(v K) bool { return s.provider.cmp(v, key) < 0 })
	if node == nil {
		var zero K
		return zero, idx, false
	}
	return node.value, idx, true
}

// UpperBound returns the smallest value > key and its in-order index, or
// (zero, size, false) if none.
func (s Set[K]) UpperBound(key K) (K, uint64, bool) {
	node, idx := lowerBoundSet(s.root, func(v K) bool { return s.provider.cmp(v, key) <= 0 })
	if node == nil {
		var zero K
		return zero, idx, false
	}
	return node.value, idx, true
}

// EqualRange returns the half-open index range of elements equal to key:
// [lo, lo+1) if present (width 1, since set keys are unique), [lo, lo) if not.
func (s Set[K]) EqualRange(key K) (uint64, uint64) {
	v, lo, found := s.LowerBound(key)
	if !found || s.provider.cmp(v, key) != 0 {
		return lo, lo
	}
	return lo, lo + 1
}

// Count returns 1 if key is present, 0 otherwise.
func (s Set[K]) Count(key K) uint64 {
	if _, ok := s.Find(key); ok {
		return 1
	}
	return 0
}

// AtIndex returns the value at in-order index k.
func (s Set[K]) AtIndex(k uint64) (K, bool) {
	node := atIndexSet(s.root, k)
	if node == nil {
		var zero K
		return zero, false
	}
	return node.value, true
}

// Iterate returns a bidirectional iterator positioned before the first
// element.
func (s Set[K]) Iterate() *SetIterator[K] {
	return newSetIterator(s)
}
