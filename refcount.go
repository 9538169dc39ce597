package confluent

// acquireSet increments n's refcount relaxed, returning n for call chaining. A nil node is a no-op.
func acquireSet[K any](n *setNode[K]) *setNode[K] {
	if n != nil {
		n.refcount.Add(1)
	}
	return n
}

// releaseSet decrements n's refcount. On the 1→0 transition it asks the
// provider to finalize removal under the table lock, and only
// once that finalization actually happened (guarding against a concurrent
// internSet resurrecting the node in the race window) recursively releases
// n's own children: a node being destroyed was itself an owner of its
// children's references.
func releaseSet[K any](p *SetProvider[K], n *setNode[K]) {
	if n == nil {
		return
	}
	if n.refcount.Add(^uint64(0)) != 0 { // decrement by 1
		return
	}
	left, right := n.left, n.right
	p.releaseSet(n)
	if n.refcount.Load() != 0 {
		// resurrected by a concurrent intern probe before we took the lock;
		// the node is alive again and its children must not be released.
		return
	}
	releaseSet(p, left)
	releaseSet(p, right)
}

func acquireMap[K, V any](n *mapNode[K, V]) *mapNode[K, V] {
	if n != nil {
		n.refcount.Add(1)
	}
	return n
}

func releaseMap[K, V any](p *MapProvider[K, V], n *mapNode[K, V]) {
	if n == nil {
		return
	}
	if n.refcount.Add(^uint64(0)) != 0 {
		return
	}
	left, right, keyNode := n.left, n.right, n.keyNode
	p.releaseMap(n)
	if n.refcount.Load() != 0 {
		return
	}
	releaseMap(p, left)
	releaseMap(p, right)
	releaseSet(p.setProvider, keyNode)
}
