package confluent

import "cmp"

// Map is a confluently persistent sorted key/value map: a (provider, root)
// handle over the map overlay of the hash-consed treap. It shares the same
// value-returning, explicit-Release ownership discipline as Set.
type Map[K, V any] struct {
	provider *MapProvider[K, V]
	root     *mapNode[K, V]
}

// NewMap returns the empty map over the given provider.
func NewMap[K, V any](p *MapProvider[K, V]) Map[K, V] {
	return Map[K, V]{provider: p}
}

// NewOrderedMap returns the empty map over DefaultMapProvider[K, V].
func NewOrderedMap[K cmp.Ordered, V comparable]() Map[K, V] {
	return NewMap(DefaultMapProvider[K, V]())
}

// Provider returns the map's provider.
func (m Map[K, V]) Provider() *MapProvider[K, V] { return m.provider }

// Size returns the number of entries.
func (m Map[K, V]) Size() uint64 { return mapSize(m.root) }

// Hash returns the container-level hash: the cached hash of the root, 0 for
// the empty map.
func (m Map[K, V]) Hash() uint64 { return mapHash(m.root) }

// Equals reports whether m and other have the same provider and identical
// root pointers.
func (m Map[K, V]) Equals(other Map[K, V]) (bool, error) {
	if m.provider != other.provider {
		return false, ErrProviderMismatch
	}
	return m.root == other.root, nil
}

// Clone returns a new handle sharing the same root, with its own acquired
// reference.
func (m Map[K, V]) Clone() Map[K, V] {
	return Map[K, V]{provider: m.provider, root: acquireMap(m.root)}
}

// Release drops this handle's reference to its root.
func (m Map[K, V]) Release() {
	releaseMap(m.provider, m.root)
}

// InsertOrAssign returns a map with key mapped to value, overwriting any
// existing mapping, and whether key was newly added.
func (m Map[K, V]) InsertOrAssign(key K, value V) (Map[K, V], bool) {
	leaf := makeMapLeaf(m.provider, key, value)
	newRoot := unionMap(m.provider, leaf, m.root)
	releaseMap(m.provider, leaf)
	inserted := mapSize(newRoot) > mapSize(m.root)
	return Map[K, V]{m.provider, newRoot}, inserted
}

// Erase returns a map with key removed, and whether it was present.
func (m Map[K, V]) Erase(key K) (Map[K, V], bool) {
	newRoot := eraseMap(m.provider, m.root, key)
	erased := mapSize(newRoot) < mapSize(m.root)
	return Map[K, V]{m.provider, newRoot}, erased
}

// InsertRange inserts every (key, value) pair, returning the resulting map
// and the count of keys that were newly added.
func (m Map[K, V]) InsertRange(keys []K, values []V) (Map[K, V], int) {
	cur := m.Clone()
	inserted := 0
	for i, k := range keys {
		next, added := cur.InsertOrAssign(k, values[i])
		cur.Release()
		cur = next
		if added {
			inserted++
		}
	}
	return cur, inserted
}

// EraseRange removes the entries at in-order indices [first, last),
// returning the resulting map and the count erased.
func (m Map[K, V]) EraseRange(first, last uint64) (Map[K, V], uint64, error) {
	n := mapSize(m.root)
	if last < first || last > n {
		return Map[K, V]{}, 0, ErrRangeOutOfBounds
	}
	headPart := headMap(m.provider, m.root, first)
	tailPart := tailMap(m.provider, m.root, last)
	newRoot := joinMap(m.provider, headPart, tailPart)
	releaseMap(m.provider, headPart)
	releaseMap(m.provider, tailPart)
	return Map[K, V]{m.provider, newRoot}, last - first, nil
}

// RetainRange keeps only the entries at in-order indices [first, last),
// returning the resulting map and the count erased.
func (m Map[K, V]) RetainRange(first, last uint64) (Map[K, V], uint64, error) {
	n := mapSize(m.root)
	if last < first || last > n {
		return Map[K, V]{}, 0, ErrRangeOutOfBounds
	}
	tailPart := tailMap(m.provider, m.root, first)
	newRoot := headMap(m.provider, tailPart, last-first)
	releaseMap(m.provider, tailPart)
	return Map[K, V]{m.provider, newRoot}, n - (last - first), nil
}

func (m Map[K, V]) checkProvider(other Map[K, V]) error {
	if m.provider != other.provider {
		return ErrProviderMismatch
	}
	return nil
}

// Union returns the map containing every key of m or other; on a key
// present in both, m's value wins.
func (m Map[K, V]) Union(other Map[K, V]) (Map[K, V], error) {
	if err := m.checkProvider(other); err != nil {
		return Map[K, V]{}, err
	}
	return Map[K, V]{m.provider, unionMap(m.provider, m.root, other.root)}, nil
}

// Intersection returns the map containing every (key, value) pair present
// identically in both m and other.
func (m Map[K, V]) Intersection(other Map[K, V]) (Map[K, V], error) {
	if err := m.checkProvider(other); err != nil {
		return Map[K, V]{}, err
	}
	return Map[K, V]{m.provider, intersectMap(m.provider, m.root, other.root)}, nil
}

// Difference returns the map containing every (key, value) pair of m not
// present identically in other.
func (m Map[K, V]) Difference(other Map[K, V]) (Map[K, V], error) {
	if err := m.checkProvider(other); err != nil {
		return Map[K, V]{}, err
	}
	return Map[K, V]{m.provider, diffMap(m.provider, m.root, other.root)}, nil
}

// SymmetricDifference returns the map containing every (key, value) pair
// present in exactly one of m, other (a key present in both with different
// values keeps m's entry).
func (m Map[K, V]) SymmetricDifference(other Map[K, V]) (Map[K, V], error) {
	if err := m.checkProvider(other); err != nil {
		return Map[K, V]{}, err
	}
	return Map[K, V]{m.provider, symmetricDiffMap(m.provider, m.root, other.root)}, nil
}

// KeySet returns the set of m's keys, sharing the same underlying key-set
// provider so it can be merged with m via IntersectWith/Subtract.
func (m Map[K, V]) KeySet() Set[K] {
	return Set[K]{provider: m.provider.setProvider, root: acquireSet(keyNodeOf(m.root))}
}

// IntersectWith returns the map containing every entry of m whose key is in
// s. s must share m's key-set provider.
func (m Map[K, V]) IntersectWith(s Set[K]) (Map[K, V], error) {
	if s.provider != m.provider.setProvider {
		return Map[K, V]{}, ErrProviderMismatch
	}
	return Map[K, V]{m.provider, intersectMapSet(m.provider, m.root, s.root)}, nil
}

// Subtract returns the map with every entry whose key is in s removed. s
// must share m's key-set provider.
func (m Map[K, V]) Subtract(s Set[K]) (Map[K, V], error) {
	if s.provider != m.provider.setProvider {
		return Map[K, V]{}, ErrProviderMismatch
	}
	return Map[K, V]{m.provider, subtractMapSet(m.provider, m.root, s.root)}, nil
}

// At returns the value mapped to key, or ErrKeyNotFound if absent.
func (m Map[K, V]) At(key K) (V, error) {
	node, _ := lowerBoundMap(m.root, func(k K) bool { return m.provider.setProvider.cmp(k, key) < 0 })
	if node == nil || m.provider.setProvider.cmp(node.keyNode.value, key) != 0 {
		var zero V
		return zero, ErrKeyNotFound
	}
	return node.mapped, nil
}

// Find reports the value mapped to key, if present.
func (m Map[K, V]) Find(key K) (V, bool) {
	v, err := m.At(key)
	return v, err == nil
}

// LowerBound returns the entry with the smallest key >= key and its
// in-order index, or (zero, zero, size, false) if none.
func (m Map[K, V]) LowerBound(key K) (K, V, uint64, bool) {
	node, idx := lowerBoundMap(m.root, func(k K) bool { return m.provider.setProvider.cmp(k, key) < 0 })
	if node == nil {
		var zk K
		var zv V
		return zk, zv, idx, false
	}
	return node.keyNode.value, node.mapped, idx, true
}

// UpperBound returns the entry with the smallest key > key and its in-order
// index, or (zero, zero, size, false) if none.
func (m Map[K, V]) UpperBound(key K) (K, V, uint64, bool) {
	node, idx := lowerBoundMap(m.root, func(k K) bool { return m.provider.setProvider.cmp(k, key) <= 0 })
	if node == nil {
		var zk K
		var zv V
		return zk, zv, idx, false
	}
	return node.keyNode.value, node.mapped, idx, true
}

// EqualRange returns the half-open index range of entries with this key:
// [lo, lo+1) if present, [lo, lo) if not.
func (m Map[K, V]) EqualRange(key K) (uint64, uint64) {
	k, _, lo, found := m.LowerBound(key)
	if !found || m.provider.setProvider.cmp(k, key) != 0 {
		return lo, lo
	}
	return lo, lo + 1
}

// Count returns 1 if key is present, 0 otherwise.
func (m Map[K, V]) Count(key K) uint64 {
	if _, ok := m.Find(key); ok {
		return 1
	}
	return 0
}

// AtIndex returns the (key, value) pair at in-order index k.
func (m Map[K, V]) AtIndex(k uint64) (K, V, bool) {
	node := atIndexMap(m.root, k)
	if node == nil {
		var zk K
		var zv V
		return zk, zv, false
	}
	return node.keyNode.value, node.mapped, true
}

// Iterate returns a bidirectional iterator positioned before the first
// entry.
func (m Map[K, V]) Iterate() *MapIterator[K, V] {
	return newMapIterator(m)
}
