/*
Package confluent provides confluently persistent sorted sets and maps: an
immutable, versioned map and set pair built on a hash-consed treap.

Uses

- Copy-on-write alternative to Go's builtin map, where old versions must
remain cheaply readable after new ones are derived

- Structural sharing of sorted collections across many concurrently-held
snapshots

- O(1) equality and hashing of whole containers, since equal contents always
collapse to the same node identity

What's a hash-consed treap

A treap is a binary search tree that is also a heap on a per-node priority.
confluent derives each node's priority deterministically from its key, so,
unlike a general treap, shape is a pure function of content: the same set of
keys always builds the same tree, regardless of insertion order. Combined
with global interning (a given Provider holds at most one live node for
each distinct subtree at any time), this makes two containers comparable by
pointer and mergeable by a divide-and-conquer algorithm that can skip whole
subtrees the moment it notices both sides point at the identical interned
node.

Concurrency

A container handle (Set, Map, ...) is a thin (provider, root pointer) pair
and is not safe for concurrent mutation by itself, but distinct handles
sharing a Provider may be read and mutated concurrently: the Provider
mediates all structural sharing through its own internal lock.

Inspiration

The shared-node design follows the same line of thinking as Clojure's and
Scala's persistent collections, specialized here to a treap so that merges
(union/intersection/difference) are output-sensitive in the size of the
symmetric difference between inputs, not just the size of the inputs
themselves.
*/
package confluent
