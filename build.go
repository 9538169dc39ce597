package confluent

import "sort"

// buildSetShape turns a strictly-sorted slice into a mutable scratch tree
// with the exact shape the canonical treap would have, in one left-to-right
// pass: a classic monotonic-stack Cartesian-tree construction. priority
// ties are broken in favor of the earlier (lesser) key, matching rankSet's
// tie-break, so the result is bit-for-bit what repeated Insert would
// produce.
type setShapeNode[K any] struct {
	value    K
	priority uint64
	left     *setShapeNode[K]
	right    *setShapeNode[K]
}

func buildSetShape[K any](p *SetProvider[K], sorted []K) (*setShapeNode[K], error) {
	if len(sorted) == 0 {
		return nil, nil
	}
	stack := make([]*setShapeNode[K], 0, 64)
	for i, v := range sorted {
		if i > 0 && p.cmp(sorted[i-1], v) >= 0 {
			return nil, ErrUnsortedInput
		}
		node := &setShapeNode[K]{value: v, priority: intmix(p.hash(v))}
		var last *setShapeNode[K]
		for len(stack) > 0 && stack[len(stack)-1].priority > node.priority {
			last = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
		}
		node.left = last
		if len(stack) > 0 {
			stack[len(stack)-1].right = node
		}
		stack = append(stack, node)
	}
	return stack[0], nil
}

func internSetShape[K any](p *SetProvider[K], n *setShapeNode[K]) *setNode[K] {
	if n == nil {
		return nil
	}
	left := internSetShape(p, n.left)
	right := internSetShape(p, n.right)
	result := makeSet(p, n.value, left, right)
	releaseSet(p, left)
	releaseSet(p, right)
	return result
}

// NewSetFromSorted builds a set from a strictly increasing slice of values
// in O(n), without any intermediate union calls. Returns ErrUnsortedInput if sorted is not
// strictly increasing under the provider's comparator.
func NewSetFromSorted[K any](p *SetProvider[K], sorted []K) (Set[K], error) {
	shape, err := buildSetShape(p, sorted)
	if err != nil {
		return Set[K]{}, err
	}
	return Set[K]{p, internSetShape(p, shape)}, nil
}

// NewSetFromUnsorted builds a set from values in arbitrary order. It sorts
// and builds successive doubling-sized batches (1, 2, 4, 8, ...) and unions
// each into the accumulated result, for O(n log n) total work.
func NewSetFromUnsorted[K any](p *SetProvider[K], values []K) Set[K] {
	acc := NewSet(p)
	for i, batch := 0, 1; i < len(values); i, batch = i+batch, batch*2 {
		end := i + batch
		if end > len(values) {
			end = len(values)
		}
		chunk := sortDedupValues(p, values[i:end])
		chunkSet, _ := NewSetFromSorted(p, chunk)
		merged, _ := acc.Union(chunkSet)
		acc.Release()
		chunkSet.Release()
		acc = merged
	}
	return acc
}

func sortDedupValues[K any](p *SetProvider[K], values []K) []K {
	chunk := append([]K(nil), values...)
	sort.Slice(chunk, func(i, j int) bool { return p.cmp(chunk[i], chunk[j]) < 0 })
	out := chunk[:0]
	for i, v := range chunk {
		if i == 0 || p.cmp(out[len(out)-1], v) != 0 {
			out = append(out, v)
		}
	}
	return out
}

// mapShapeNode is buildSetShape's map-overlay counterpart.
type mapShapeNode[K, V any] struct {
	key      K
	mapped   V
	priority uint64
	left     *mapShapeNode[K, V]
	right    *mapShapeNode[K, V]
}

func buildMapShape[K, V any](p *MapProvider[K, V], keys []K, values []V) (*mapShapeNode[K, V], error) {
	if len(keys) == 0 {
		return nil, nil
	}
	stack := make([]*mapShapeNode[K, V], 0, 64)
	for i, k := range keys {
		if i > 0 && p.setProvider.cmp(keys[i-1], k) >= 0 {
			return nil, ErrUnsortedInput
		}
		node := &mapShapeNode[K, V]{key: k, mapped: values[i], priority: intmix(p.setProvider.hash(k))}
		var last *mapShapeNode[K, V]
		for len(stack) > 0 && stack[len(stack)-1].priority > node.priority {
			last = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
		}
		node.left = last
		if len(stack) > 0 {
			stack[len(stack)-1].right = node
		}
		stack = append(stack, node)
	}
	return stack[0], nil
}

func internMapShape[K, V any](p *MapProvider[K, V], n *mapShapeNode[K, V]) *mapNode[K, V] {
	if n == nil {
		return nil
	}
	left := internMapShape(p, n.left)
	right := internMapShape(p, n.right)
	result := makeMap(p, n.key, n.mapped, left, right)
	releaseMap(p, left)
	releaseMap(p, right)
	return result
}

// NewMapFromSorted builds a map from parallel key/value slices in O(n+m),
// with keys strictly increasing under the provider's comparator. Returns
// ErrUnsortedInput otherwise.
func NewMapFromSorted[K, V any](p *MapProvider[K, V], keys []K, values []V) (Map[K, V], error) {
	shape, err := buildMapShape(p, keys, values)
	if err != nil {
		return Map[K, V]{}, err
	}
	return Map[K, V]{p, internMapShape(p, shape)}, nil
}

// NewMapFromUnsorted builds a map from parallel key/value slices in
// arbitrary order, by the same doubling-batch strategy as
// NewSetFromUnsorted. On a duplicate key within a batch or across batches,
// the earliest occurrence in values wins: each batch keeps its first
// occurrence, and the accumulated map is the left operand of Union, whose
// value wins on a collision. (Folding InsertOrAssign over the same entries
// would instead keep the latest occurrence.)
func NewMapFromUnsorted[K, V any](p *MapProvider[K, V], keys []K, values []V) Map[K, V] {
	acc := NewMap(p)
	for i, batch := 0, 1; i < len(keys); i, batch = i+batch, batch*2 {
		end := i + batch
		if end > len(keys) {
			end = len(keys)
		}
		ck, cv := sortDedupEntries(p, keys[i:end], values[i:end])
		chunkMap, _ := NewMapFromSorted(p, ck, cv)
		merged, _ := acc.Union(chunkMap)
		acc.Release()
		chunkMap.Release()
		acc = merged
	}
	return acc
}

func sortDedupEntries[K, V any](p *MapProvider[K, V], keys []K, values []V) ([]K, []V) {
	type entry struct {
		k K
		v V
	}
	entries := make([]entry, len(keys))
	for i := range keys {
		entries[i] = entry{keys[i], values[i]}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return p.setProvider.cmp(entries[i].k, entries[j].k) < 0
	})
	outK := make([]K, 0, len(entries))
	outV := make([]V, 0, len(entries))
	for i, e := range entries {
		if i == 0 || p.setProvider.cmp(outK[len(outK)-1], e.k) != 0 {
			outK = append(outK, e.k)
			outV = append(outV, e.v)
		}
	}
	return outK, outV
}
