package confluent

import (
	"cmp"
	"encoding/json"

	"github.com/minio/blake2b-simd"
)

// Comparator orders two keys: negative if a < b, zero if equal, positive if
// a > b.
type Comparator[K any] func(a, b K) int

// Hasher produces a deterministic uint64 digest of a value. Two values equal
// under the container's Equaler must hash identically.
type Hasher[T any] func(v T) uint64

// Equaler reports whether two values are equal.
type Equaler[T any] func(a, b T) bool

// OrderedComparator returns the natural Comparator for a cmp.Ordered type.
func OrderedComparator[K cmp.Ordered]() Comparator[K] {
	return func(a, b K) int { return cmp.Compare(a, b) }
}

// EqualEqualer returns the Equaler for a comparable type using Go's built-in
// ==.
func EqualEqualer[T comparable]() Equaler[T] {
	return func(a, b T) bool { return a == b }
}

// DefaultHasher returns a Hasher for any JSON-marshalable type, folding its
// canonical encoding through BLAKE2b: when a type has no dedicated Hasher,
// marshal it and hash the bytes.
func DefaultHasher[T any]() Hasher[T] {
	return func(v T) uint64 {
		b, err := json.Marshal(v)
		if err != nil {
			// Values that reach here are expected to be JSON-marshalable;
			// callers with exotic key/value types should supply their own
			// Hasher via NewSetProvider/NewMapProvider instead of relying on
			// this default.
			panic("confluent: DefaultHasher: " + err.Error())
		}
		return bytesHash(b)
	}
}

func bytesHash(b []byte) uint64 {
	sum := blake2b.Sum256(b)
	var h uint64
	for i := 0; i < 8; i++ {
		h = h<<8 | uint64(sum[i])
	}
	return h
}

// intmix turns a key's hash into a treap priority. It's the splitmix64
// finalizer: a well-studied bijective bit mixer, so that nearby hashes
// don't produce nearby priorities (which would otherwise skew tree shape
// for sequential key sets like integers 1..n).
func intmix(h uint64) uint64 {
	h += 0x9e3779b97f4a7c15
	h = (h ^ (h >> 30)) * 0xbf58476d1ce4e5b9
	h = (h ^ (h >> 27)) * 0x94d049bb133111eb
	h = h ^ (h >> 31)
	return h
}

// combine folds the hashes of a node's children and its own priority (for
// map nodes: the mapped value's hash and the key node's hash, in place of a
// priority) into the node's cached content hash. The fold is order-sensitive (left and right are not
// interchangeable) and is a straightforward 64-bit generalization of
// boost::hash_combine, re-mixed with intmix at each step.
func combine(parts ...uint64) uint64 {
	var h uint64 = 0xcbf29ce484222325 // FNV offset basis, arbitrary non-zero seed
	for _, p := range parts {
		h ^= intmix(p + 0x9e3779b97f4a7c15 + (h << 6) + (h >> 2))
	}
	return h
}
