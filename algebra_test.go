package confluent

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var defaultGopterParameters = gopter.DefaultTestParameters()

func setOf(t *testing.T, p *SetProvider[int], values []int) Set[int] {
	t.Helper()
	s := NewSet(p)
	for _, v := range values {
		next, _ := s.Insert(v)
		s.Release()
		s = next
	}
	return s
}

func asMap(s Set[int]) map[int]struct{} {
	out := make(map[int]struct{}, s.Size())
	for v := range s.All() {
		out[v] = struct{}{}
	}
	return out
}

func TestSetUnionCommutesAndAssociates(t *testing.T) {
	t.Parallel()
	properties := gopter.NewProperties(defaultGopterParameters)

	properties.Property("union is commutative", prop.ForAll(
		func(xs, ys []int) bool {
			p := newIntSetProvider()
			a, b := setOf(t, p, xs), setOf(t, p, ys)
			defer a.Release()
			defer b.Release()

			ab, _ := a.Union(b)
			ba, _ := b.Union(a)
			defer ab.Release()
			defer ba.Release()

			ok, _ := ab.Equals(ba)
			return ok
		},
		gen.SliceOf(gen.IntRange(0, 50)),
		gen.SliceOf(gen.IntRange(0, 50)),
	))

	properties.Property("union is associative", prop.ForAll(
		func(xs, ys, zs []int) bool {
			p := newIntSetProvider()
			a, b, c := setOf(t, p, xs), setOf(t, p, ys), setOf(t, p, zs)
			defer a.Release()
			defer b.Release()
			defer c.Release()

			ab, _ := a.Union(b)
			abc1, _ := ab.Union(c)
			bc, _ := b.Union(c)
			abc2, _ := a.Union(bc)
			defer ab.Release()
			defer abc1.Release()
			defer bc.Release()
			defer abc2.Release()

			ok, _ := abc1.Equals(abc2)
			return ok
		},
		gen.SliceOf(gen.IntRange(0, 50)),
		gen.SliceOf(gen.IntRange(0, 50)),
		gen.SliceOf(gen.IntRange(0, 50)),
	))

	properties.TestingRun(t)
}

func TestSetSymmetricDifferenceLaw(t *testing.T) {
	t.Parallel()
	properties := gopter.NewProperties(defaultGopterParameters)

	properties.Property("symmetric_difference(A,B) == difference(union(A,B), intersection(A,B))", prop.ForAll(
		func(xs, ys []int) bool {
			p := newIntSetProvider()
			a, b := setOf(t, p, xs), setOf(t, p, ys)
			defer a.Release()
			defer b.Release()

			symdiff, _ := a.SymmetricDifference(b)
			union, _ := a.Union(b)
			inter, _ := a.Intersection(b)
			diffOfThose, _ := union.Difference(inter)
			defer symdiff.Release()
			defer union.Release()
			defer inter.Release()
			defer diffOfThose.Release()

			ok, _ := symdiff.Equals(diffOfThose)
			return ok
		},
		gen.SliceOf(gen.IntRange(0, 50)),
		gen.SliceOf(gen.IntRange(0, 50)),
	))

	properties.TestingRun(t)
}

func TestSetIncludesLaw(t *testing.T) {
	t.Parallel()
	properties := gopter.NewProperties(defaultGopterParameters)

	properties.Property("includes(A,B) iff union(A,B) == A", prop.ForAll(
		func(xs, ys []int) bool {
			p := newIntSetProvider()
			a, b := setOf(t, p, xs), setOf(t, p, ys)
			defer a.Release()
			defer b.Release()

			includes, _ := a.Includes(b)
			union, _ := a.Union(b)
			defer union.Release()
			unionEqualsA, _ := union.Equals(a)

			return includes == unionEqualsA
		},
		gen.SliceOf(gen.IntRange(0, 50)),
		gen.SliceOf(gen.IntRange(0, 50)),
	))

	properties.TestingRun(t)
}

func TestSetCongruentRegardlessOfInsertionOrder(t *testing.T) {
	t.Parallel()
	properties := gopter.NewProperties(defaultGopterParameters)

	properties.Property("two insertion orders of the same multiset build the identical canonical tree", prop.ForAll(
		func(values []int, seed int) bool {
			p := newIntSetProvider()
			a := setOf(t, p, values)
			defer a.Release()

			shuffled := append([]int(nil), values...)
			for i := len(shuffled) - 1; i > 0; i-- {
				j := (seed + i*2654435761) % (i + 1)
				if j < 0 {
					j = -j
				}
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			}
			b := setOf(t, p, shuffled)
			defer b.Release()

			ok, _ := a.Equals(b)
			return ok
		},
		gen.SliceOf(gen.IntRange(0, 50)),
		gen.IntRange(0, 1_000_000),
	))

	properties.TestingRun(t)
}

func TestSetRoundTripsThroughIteration(t *testing.T) {
	t.Parallel()
	properties := gopter.NewProperties(defaultGopterParameters)

	properties.Property("iterating a set and rebuilding from its output reproduces the same elements", prop.ForAll(
		func(values []int) bool {
			p := newIntSetProvider()
			a := setOf(t, p, values)
			defer a.Release()

			b := setOf(t, p, nil)
			for v := range a.All() {
				next, _ := b.Insert(v)
				b.Release()
				b = next
			}
			defer b.Release()

			aSet, bSet := asMap(a), asMap(b)
			if len(aSet) != len(bSet) {
				return false
			}
			for k := range aSet {
				if _, ok := bSet[k]; !ok {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 50)),
	))

	properties.TestingRun(t)
}
