// Copyright 2025 The Hashtable Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package hashtable implements a generic hash table with a collision
// resolution strategy that is chosen at construction time and fixed for the
// life of the table: separate chaining, linear probing, or quadratic
// probing.
//
// # Layout
//
// Capacity is always a power of two (minimum 8) and doubles on growth,
// allowing i%N to be computed with a bitwise mask. The bucket index for a
// key is derived from the upper bits of hash(key) (h1) while the low 7 bits
// (h2) are used by the open-addressing strategies as a per-slot fingerprint
// stored in a control byte, so that most probe steps are resolved by a
// single byte comparison rather than a full key comparison.
//
// # Open addressing
//
// Each slot has a control byte which is in one of three states: empty,
// deleted (a tombstone), or full holding the h2 fingerprint of the
// resident key. Lookups walk the probe sequence until a matching full slot
// or an empty control byte is found; tombstones are skipped but do not
// terminate the walk, which keeps probe chains valid for keys inserted
// before the deletion. Linear probing advances the sequence by 1,
// quadratic probing by triangular numbers (1, 3, 6, 10, ...). Since
// (i²+i)/2 is a bijection in Z/(2^k), the quadratic sequence visits every
// slot exactly once before repeating, so probes terminate as long as one
// empty slot exists. See https://en.wikipedia.org/wiki/Quadratic_probing.
//
// # Resizing
//
// When the occupancy (live entries plus tombstones for open addressing)
// exceeds the configured load factor after an insert, the table rebuilds
// synchronously before Put returns: either into a table of twice the
// capacity, or at the same capacity when dropping tombstones alone
// recovers enough room. A caller never observes a partially migrated
// table.
//
// A Table is NOT goroutine-safe.
package hashtable

import (
	"errors"
	"math/bits"
	"math/rand/v2"
	"reflect"
)

const invariants = false

// ErrInvalidKey is returned by Put and Delete when the supplied key is
// rejected by the table's key validator. By default only nil-able keys
// (pointers, interfaces, channels) equal to nil are rejected; such a key
// has no meaningful hash and would otherwise be stored as a sentinel.
var ErrInvalidKey = errors.New("hashtable: invalid key")

// Strategy selects the collision resolution scheme for a Table. The
// strategy is fixed at construction and never changes for the life of one
// table instance.
type Strategy uint8

const (
	// Chaining resolves collisions by keeping a list of entries per
	// bucket.
	Chaining Strategy = iota
	// LinearProbing resolves collisions by walking consecutive slots of
	// the open-addressed array.
	LinearProbing
	// QuadraticProbing resolves collisions by walking the open-addressed
	// array with triangular-number strides.
	QuadraticProbing
)

func (s Strategy) String() string {
	switch s {
	case Chaining:
		return "chaining"
	case LinearProbing:
		return "linear"
	case QuadraticProbing:
		return "quadratic"
	default:
		return "unknown"
	}
}

// HashFn hashes a key to a 64-bit value. The seed is owned by the table
// and is mixed into every call; supplying a constant-valued HashFn is a
// supported way to exercise worst-case collision behavior in tests.
type HashFn[K comparable] func(key K, seed uint64) uint64

// store is the slot storage behind a Table. One concrete store is chosen
// per Strategy at construction. Hash values are computed by the Table and
// passed down so that a store never needs to re-invoke the hash function;
// stores remember the full hash per entry for rebuilds.
type store[K comparable, V any] interface {
	get(h uint64, key K) (V, bool)
	put(h uint64, key K, value V)
	remove(h uint64, key K) bool
	len() int
	capacity() int
	all(yield func(key K, value V) bool) bool
	clear()
	checkInvariants()
}

// Table is a hash table mapping keys to values with Put, Get, Delete,
// ContainsKey, and All operations. Collisions are handled, never surfaced:
// the only error condition on any operation is an invalid key.
//
// A Table is NOT goroutine-safe. Callers needing concurrent access must
// provide external mutual exclusion.
type Table[K comparable, V any] struct {
	hash     HashFn[K]
	seed     uint64
	strategy Strategy
	maxLoad  float64
	// validKey reports whether a key may be stored. nil means every value
	// of K is valid and the check is skipped entirely.
	validKey func(K) bool
	store    store[K, V]
}

const (
	minCapacity          = 8
	defaultMaxLoadFactor = 0.75
)

// New constructs a Table with the specified initial capacity, collision
// strategy, and hash function. The capacity is rounded up to a power of
// two, minimum 8; a non-positive initialCapacity requests the minimum.
// New panics if hash is nil or strategy is unknown.
func New[K comparable, V any](
	initialCapacity int, strategy Strategy, hash HashFn[K], options ...option[K, V],
) *Table[K, V] {
	if hash == nil {
		panic("hashtable: nil hash function")
	}

	t := &Table[K, V]{
		hash:     hash,
		seed:     rand.Uint64(),
		strategy: strategy,
		maxLoad:  defaultMaxLoadFactor,
		validKey: defaultKeyValidator[K](),
	}

	for _, op := range options {
		op.apply(t)
	}

	capacity := normalizeCapacity(initialCapacity)
	switch strategy {
	case Chaining:
		t.store = newChainStore[K, V](capacity, t.maxLoad)
	case LinearProbing:
		t.store = newProbeStore[K, V](capacity, t.maxLoad, false /* quadratic */)
	case QuadraticProbing:
		t.store = newProbeStore[K, V](capacity, t.maxLoad, true /* quadratic */)
	default:
		panic("hashtable: unknown collision strategy")
	}
	return t
}

// Put inserts an entry into the table, overwriting the existing value if
// an entry with the same key already exists. If the insert pushes the
// load factor past the configured threshold the table grows before Put
// returns. Returns ErrInvalidKey for a rejected key, in which case the
// table is unchanged.
func (t *Table[K, V]) Put(key K, value V) error {
	if t.validKey != nil && !t.validKey(key) {
		return ErrInvalidKey
	}
	t.store.put(t.hash(key, t.seed), key, value)
	if invariants {
		t.store.checkInvariants()
	}
	return nil
}

// Get retrieves the value for the specified key, returning ok=false if the
// key is not present. Absence is a normal outcome, not a failure; an
// invalid key is reported as absent since Put can never have stored it.
func (t *Table[K, V]) Get(key K) (value V, ok bool) {
	if t.validKey != nil && !t.validKey(key) {
		return value, false
	}
	return t.store.get(t.hash(key, t.seed), key)
}

// ContainsKey reports whether the table holds an entry for key.
func (t *Table[K, V]) ContainsKey(key K) bool {
	_, ok := t.Get(key)
	return ok
}

// Delete removes the entry for the specified key, reporting whether the
// key was present. Deleting an absent key is a no-op. Under open
// addressing the slot is tombstoned rather than emptied; tombstones are
// reclaimed by the next rebuild. Returns ErrInvalidKey for a rejected
// key.
func (t *Table[K, V]) Delete(key K) (bool, error) {
	if t.validKey != nil && !t.validKey(key) {
		return false, ErrInvalidKey
	}
	ok := t.store.remove(t.hash(key, t.seed), key)
	if invariants {
		t.store.checkInvariants()
	}
	return ok, nil
}

// Len returns the number of live entries in the table. Tombstones are not
// counted.
func (t *Table[K, V]) Len() int {
	return t.store.len()
}

// Strategy returns the collision resolution strategy the table was
// constructed with.
func (t *Table[K, V]) Strategy() Strategy {
	return t.strategy
}

// All calls yield sequentially for each key and value present in the
// table. If yield returns false, iteration stops. The table can be
// mutated during iteration, though there is no guarantee that the
// mutations will be visible to the iteration.
func (t *Table[K, V]) All(yield func(key K, value V) bool) {
	t.store.all(yield)
}

// Clear deletes all entries, retaining the current capacity.
func (t *Table[K, V]) Clear() {
	t.store.clear()
}

// capacity returns the current slot count. Exposed for tests that verify
// the load factor and resize behavior.
func (t *Table[K, V]) capacity() int {
	return t.store.capacity()
}

// normalizeCapacity rounds n up to the next power of two, clamping to the
// minimum capacity.
func normalizeCapacity(n int) int {
	if n <= minCapacity {
		return minCapacity
	}
	return 1 << bits.Len(uint(n-1))
}

// defaultKeyValidator returns a predicate rejecting nil keys for key types
// that admit nil (pointers, interfaces, channels), and nil for every other
// key type so the per-operation check can be skipped. The kind is resolved
// once here; the returned predicate does not touch reflect's slow paths
// for non-nilable K.
func defaultKeyValidator[K comparable]() func(K) bool {
	switch reflect.TypeOf((*K)(nil)).Elem().Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Chan, reflect.UnsafePointer:
		return func(key K) bool {
			return !reflect.ValueOf(&key).Elem().IsNil()
		}
	default:
		return nil
	}
}

// h1 extracts the portion of a hash used for bucket indexing: the 57
// upper bits.
func h1(h uint64) uint64 {
	return h >> 7
}

// h2 extracts the portion of a hash stored in an occupied control byte:
// the low 7 bits.
func h2(h uint64) uint64 {
	return h & 0x7f
}
