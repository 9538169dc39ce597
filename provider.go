package confluent

import (
	"cmp"
	"io"
	"reflect"
	"sync"

	"github.com/sirupsen/logrus"
)

const minBuckets = 8

// ProviderOption configures a SetProvider or MapProvider at construction
// time, as a functional option so the same option type applies to both
// provider kinds.
type ProviderOption func(*providerConfig)

type providerConfig struct {
	log *logrus.Logger
}

// WithLogger attaches a logrus.Logger that receives structured Debug-level
// traces of node interning (set and map tables), set-node finalization and
// set-table resizes. Merge operations do not log. Without this option, or
// with a nil logger, a Provider logs nothing.
func WithLogger(log *logrus.Logger) ProviderOption {
	return func(c *providerConfig) {
		if log != nil {
			c.log = log
		}
	}
}

func newProviderConfig(opts []ProviderOption) *providerConfig {
	c := &providerConfig{log: disabledLogger()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func disabledLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.PanicLevel)
	return log
}

// SetProvider owns the hash-cons table for set nodes of one (K, comparator,
// hasher, equality) parameterization. Nodes are
// never shared across providers: two SetProviders are always independent,
// even if instantiated with identical K.
type SetProvider[K any] struct {
	mu      sync.Mutex
	buckets []*setNode[K]
	count   uint64

	cmp  Comparator[K]
	hash Hasher[K]
	eq   Equaler[K]
	log  *logrus.Logger
}

// NewSetProvider creates an independent set provider parameterized by the
// given comparator, hasher, and equality predicate.
func NewSetProvider[K any](cmp Comparator[K], hash Hasher[K], eq Equaler[K], opts ...ProviderOption) *SetProvider[K] {
	cfg := newProviderConfig(opts)
	return &SetProvider[K]{
		buckets: make([]*setNode[K], minBuckets),
		cmp:     cmp,
		hash:    hash,
		eq:      eq,
		log:     cfg.log,
	}
}

// Size returns the number of live (refcounted, interned) nodes currently
// owned by this provider.
func (p *SetProvider[K]) Size() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

func (p *SetProvider[K]) bucketFor(h uint64, n int) int {
	return int(h % uint64(n))
}

// internSet returns the canonical node matching candidate's (hash, left,
// right, value) tuple, incrementing its refcount, or inserts candidate as
// the new canonical node if none exists. Must be called with
// candidate's refcount already at 1 and its next pointer zero-valued; on a
// cache hit the candidate is discarded (left for the garbage collector) and
// its already-acquired children references are the caller's to release.
func (p *SetProvider[K]) internSet(candidate *setNode[K]) *setNode[K] {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx := p.bucketFor(candidate.hash, len(p.buckets))
	for n := p.buckets[idx]; n != nil; n = n.next {
		if n.hash == candidate.hash &&
			n.left == candidate.left &&
			n.right == candidate.right &&
			p.eq(n.value, candidate.value) {
			n.refcount.Add(1)
			p.log.WithFields(logrus.Fields{"hash": n.hash, "bucket": idx}).
				Debug("confluent: set node intern hit")
			return n
		}
	}

	candidate.next = p.buckets[idx]
	p.buckets[idx] = candidate
	p.count++
	p.log.WithFields(logrus.Fields{"hash": candidate.hash, "bucket": idx, "count": p.count}).
		Debug("confluent: set node intern miss, inserted")
	p.maybeResizeLocked()
	return candidate
}

// releaseSet finalizes the 1→0 refcount transition for n under the table
// lock: it re-checks the refcount (a concurrent internSet probe of the same
// bucket may have resurrected it in the window between the atomic decrement
// and acquiring the lock) and only then unlinks it from its bucket.
func (p *SetProvider[K]) releaseSet(n *setNode[K]) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n.refcount.Load() != 0 {
		return
	}
	idx := p.bucketFor(n.hash, len(p.buckets))
	prev := (*setNode[K])(nil)
	for cur := p.buckets[idx]; cur != nil; cur = cur.next {
		if cur == n {
			if prev == nil {
				p.buckets[idx] = cur.next
			} else {
				prev.next = cur.next
			}
			n.next = nil
			p.count--
			p.log.WithFields(logrus.Fields{"hash": n.hash, "bucket": idx, "count": p.count}).
				Debug("confluent: set node finalized")
			p.maybeResizeLocked()
			return
		}
		prev = cur
	}
}

// maybeResizeLocked grows the table when load factor exceeds 1 (doubling)
// or shrinks it when load factor drops below 0.5 (halving), with a floor of
// minBuckets. Must be called with p.mu held.
func (p *SetProvider[K]) maybeResizeLocked() {
	n := len(p.buckets)
	switch {
	case p.count > uint64(n):
		p.rehashLocked(n * 2)
	case p.count < uint64(n)/2 && n > minBuckets:
		newSize := n / 2
		if newSize < minBuckets {
			newSize = minBuckets
		}
		p.rehashLocked(newSize)
	}
}

func (p *SetProvider[K]) rehashLocked(newSize int) {
	newBuckets := make([]*setNode[K], newSize)
	for _, head := range p.buckets {
		for n := head; n != nil; {
			next := n.next
			idx := p.bucketFor(n.hash, newSize)
			n.next = newBuckets[idx]
			newBuckets[idx] = n
			n = next
		}
	}
	p.log.WithFields(logrus.Fields{"from": len(p.buckets), "to": newSize}).
		Debug("confluent: set provider table resized")
	p.buckets = newBuckets
}

// MapProvider owns the hash-cons table for map nodes of one (K, V,
// comparator, hashers, equality predicates) parameterization.
// It embeds the set provider over the same K: every map node's key_node is
// interned there, so a map and its key_set() share the identical provider
// for the key layer.
type MapProvider[K, V any] struct {
	mu      sync.Mutex
	buckets []*mapNode[K, V]
	count   uint64

	setProvider *SetProvider[K]
	mappedHash  Hasher[V]
	mappedEq    Equaler[V]
	log         *logrus.Logger
}

// NewMapProvider creates an independent map provider over the given set
// provider (its key layer) plus a hasher/equality predicate for mapped
// values.
func NewMapProvider[K, V any](setProvider *SetProvider[K], mappedHash Hasher[V], mappedEq Equaler[V], opts ...ProviderOption) *MapProvider[K, V] {
	cfg := newProviderConfig(opts)
	return &MapProvider[K, V]{
		buckets:     make([]*mapNode[K, V], minBuckets),
		setProvider: setProvider,
		mappedHash:  mappedHash,
		mappedEq:    mappedEq,
		log:         cfg.log,
	}
}

// Size returns the number of live map nodes owned by this provider. It does
// not count the key-set nodes it references, which are owned and counted by
// the embedded SetProvider.
func (p *MapProvider[K, V]) Size() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

func (p *MapProvider[K, V]) bucketFor(h uint64, n int) int {
	return int(h % uint64(n))
}

func (p *MapProvider[K, V]) internMap(candidate *mapNode[K, V]) *mapNode[K, V] {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx := p.bucketFor(candidate.hash, len(p.buckets))
	for n := p.buckets[idx]; n != nil; n = n.next {
		if n.hash == candidate.hash &&
			n.left == candidate.left &&
			n.right == candidate.right &&
			n.keyNode == candidate.keyNode &&
			p.mappedEq(n.mapped, candidate.mapped) {
			n.refcount.Add(1)
			p.log.WithFields(logrus.Fields{"hash": n.hash, "bucket": idx}).
				Debug("confluent: map node intern hit")
			return n
		}
	}

	candidate.next = p.buckets[idx]
	p.buckets[idx] = candidate
	p.count++
	p.log.WithFields(logrus.Fields{"hash": candidate.hash, "bucket": idx, "count": p.count}).
		Debug("confluent: map node intern miss, inserted")
	p.maybeResizeLocked()
	return candidate
}

func (p *MapProvider[K, V]) releaseMap(n *mapNode[K, V]) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n.refcount.Load() != 0 {
		return
	}
	idx := p.bucketFor(n.hash, len(p.buckets))
	prev := (*mapNode[K, V])(nil)
	for cur := p.buckets[idx]; cur != nil; cur = cur.next {
		if cur == n {
			if prev == nil {
				p.buckets[idx] = cur.next
			} else {
				prev.next = cur.next
			}
			n.next = nil
			p.count--
			p.maybeResizeLocked()
			return
		}
		prev = cur
	}
}

func (p *MapProvider[K, V]) maybeResizeLocked() {
	n := len(p.buckets)
	switch {
	case p.count > uint64(n):
		p.rehashLocked(n * 2)
	case p.count < uint64(n)/2 && n > minBuckets:
		newSize := n / 2
		if newSize < minBuckets {
			newSize = minBuckets
		}
		p.rehashLocked(newSize)
	}
}

func (p *MapProvider[K, V]) rehashLocked(newSize int) {
	newBuckets := make([]*mapNode[K, V], newSize)
	for _, head := range p.buckets {
		for n := head; n != nil; {
			next := n.next
			idx := p.bucketFor(n.hash, newSize)
			n.next = newBuckets[idx]
			newBuckets[idx] = n
			n = next
		}
	}
	p.buckets = newBuckets
}

var defaultSetProviders sync.Map // reflect.Type -> any (*SetProvider[K])

// DefaultSetProvider returns the package-wide lazily-initialized set
// provider for K, built from OrderedComparator, DefaultHasher and
// EqualEqualer. There is exactly one of these per instantiation of K: it is
// the provider NewOrderedSet uses, and a convenient shared default for
// callers who don't need a dedicated provider of their own.
func DefaultSetProvider[K cmp.Ordered]() *SetProvider[K] {
	var zero K
	t := reflect.TypeOf(zero)
	if v, ok := defaultSetProviders.Load(t); ok {
		return v.(*SetProvider[K])
	}
	p := NewSetProvider(OrderedComparator[K](), DefaultHasher[K](), EqualEqualer[K]())
	actual, _ := defaultSetProviders.LoadOrStore(t, p)
	return actual.(*SetProvider[K])
}

var defaultMapProviders sync.Map // reflect.Type -> any (*MapProvider[K, V])

// DefaultMapProvider returns the package-wide lazily-initialized map
// provider for (K, V), layered over DefaultSetProvider[K]. Mirrors
// DefaultSetProvider for the map overlay.
func DefaultMapProvider[K cmp.Ordered, V comparable]() *MapProvider[K, V] {
	var zeroK K
	var zeroV V
	t := reflect.TypeOf(struct {
		K K
		V V
	}{zeroK, zeroV})
	if v, ok := defaultMapProviders.Load(t); ok {
		return v.(*MapProvider[K, V])
	}
	p := NewMapProvider(DefaultSetProvider[K](), DefaultHasher[V](), EqualEqualer[V]())
	actual, _ := defaultMapProviders.LoadOrStore(t, p)
	return actual.(*MapProvider[K, V])
}
