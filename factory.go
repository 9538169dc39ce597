package confluent

// makeSetLeaf returns the canonical leaf node for value. The returned handle carries its own reference.
func makeSetLeaf[K any](p *SetProvider[K], value K) *setNode[K] {
	return makeSet(p, value, nil, nil)
}

// makeSet returns the canonical node for (value, left, right), acquiring a
// fresh reference for the caller and, internally, one reference on each
// non-nil child for the node's own ownership of them.
// left and right are borrowed: the caller's own references to them are
// untouched and remain the caller's responsibility to release.
func makeSet[K any](p *SetProvider[K], value K, left, right *setNode[K]) *setNode[K] {
	priority := intmix(p.hash(value))
	candidate := &setNode[K]{
		value:    value,
		left:     acquireSet(left),
		right:    acquireSet(right),
		priority: priority,
		size:     1 + setSize(left) + setSize(right),
		hash:     combine(setHash(left), setHash(right), priority),
	}
	candidate.refcount.Store(1)
	canon := p.internSet(candidate)
	if canon != candidate {
		releaseSet(p, left)
		releaseSet(p, right)
	}
	return canon
}

// makeSetFrom rebuilds a node at parent's position with new children,
// reusing parent's value and priority rather than recomputing them from the
// hasher. If left and right are physically identical to parent's existing
// children, nothing actually changed, so parent itself (with an acquired
// reference) is returned without touching the table.
func makeSetFrom[K any](p *SetProvider[K], parent *setNode[K], left, right *setNode[K]) *setNode[K] {
	if left == parent.left && right == parent.right {
		return acquireSet(parent)
	}
	candidate := &setNode[K]{
		value:    parent.value,
		left:     acquireSet(left),
		right:    acquireSet(right),
		priority: parent.priority,
		size:     1 + setSize(left) + setSize(right),
		hash:     combine(setHash(left), setHash(right), parent.priority),
	}
	candidate.refcount.Store(1)
	canon := p.internSet(candidate)
	if canon != candidate {
		releaseSet(p, left)
		releaseSet(p, right)
	}
	return canon
}

// makeMapLeaf returns the canonical map leaf for (key, mapped).
func makeMapLeaf[K, V any](p *MapProvider[K, V], key K, mapped V) *mapNode[K, V] {
	return makeMap(p, key, mapped, nil, nil)
}

// makeMap returns the canonical map node for (key, mapped, left, right).
// Its key_node is built by the set factory from key and the children's own
// key_nodes, so key_node.left == key_node_of(left) and key_node.right ==
// key_node_of(right) always hold, the key-set congruence invariant of
// node.go. Because the key layer is hash-consed independently of mapped
// values, two maps that agree on keys and shape, but differ in values,
// share the identical key_node subtrees. left and right are borrowed.
func makeMap[K, V any](p *MapProvider[K, V], key K, mapped V, left, right *mapNode[K, V]) *mapNode[K, V] {
	keyNode := makeSet(p.setProvider, key, keyNodeOf(left), keyNodeOf(right))
	candidate := &mapNode[K, V]{
		mapped:  mapped,
		keyNode: keyNode,
		left:    acquireMap(left),
		right:   acquireMap(right),
		hash:    combine(mapHash(left), mapHash(right), p.mappedHash(mapped), setHash(keyNode)),
	}
	candidate.refcount.Store(1)
	canon := p.internMap(candidate)
	if canon != candidate {
		releaseMap(p, left)
		releaseMap(p, right)
		releaseSet(p.setProvider, keyNode)
	}
	return canon
}

// makeMapFrom rebuilds a map node at parent's position with new children,
// reusing parent's key and mapped value. Like makeSetFrom, unchanged children short-
// circuit to returning parent itself.
func makeMapFrom[K, V any](p *MapProvider[K, V], parent *mapNode[K, V], left, right *mapNode[K, V]) *mapNode[K, V] {
	if left == parent.left && right == parent.right {
		return acquireMap(parent)
	}
	return makeMap(p, parent.keyNode.value, parent.mapped, left, right)
}
