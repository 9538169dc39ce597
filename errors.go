package confluent

import "errors"

// ErrKeyNotFound is returned by Map.At when the given key has no entry.
var ErrKeyNotFound = errors.New("confluent: key not found")

// ErrProviderMismatch is returned by binary operations (union, intersection,
// difference, symmetric difference, includes, equals, intersect/subtract
// against a key set) whose operands were built from different Providers.
// Nodes from distinct providers are never interned together, so the merge
// engine's pointer-equality shortcuts would be unsound across them.
var ErrProviderMismatch = errors.New("confluent: operands belong to different providers")

// ErrRangeOutOfBounds is returned by index-range operations when
// last < first or last > size.
var ErrRangeOutOfBounds = errors.New("confluent: range out of bounds")

// ErrUnsortedInput is returned by the bulk sorted-range constructors when
// the input is not strictly increasing under the provider's comparator.
var ErrUnsortedInput = errors.New("confluent: input is not strictly sorted")
