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

package hashtable

import "fmt"

// chainEntry is one element of a bucket's chain. The full hash is kept
// both as a cheap pre-filter before the key comparison and so that
// resizes redistribute entries without re-invoking the hash function.
type chainEntry[K comparable, V any] struct {
	hash  uint64
	key   K
	value V
}

// chainStore is the separate-chaining slot storage: each bucket owns a
// slice of every entry hashing to it. Unlike open addressing there is no
// size <= capacity bound and no tombstones; deletion unlinks the entry
// from its chain directly.
type chainStore[K comparable, V any] struct {
	buckets [][]chainEntry[K, V]
	// mask is len(buckets)-1. len(buckets) is always a power of two.
	mask    uint64
	used    int
	maxLoad float64
}

func newChainStore[K comparable, V any](capacity int, maxLoad float64) *chainStore[K, V] {
	return &chainStore[K, V]{
		buckets: make([][]chainEntry[K, V], capacity),
		mask:    uint64(capacity) - 1,
		maxLoad: maxLoad,
	}
}

func (s *chainStore[K, V]) get(h uint64, key K) (value V, ok bool) {
	b := s.buckets[h1(h)&s.mask]
	for i := range b {
		if b[i].hash == h && b[i].key == key {
			return b[i].value, true
		}
	}
	return value, false
}

func (s *chainStore[K, V]) put(h uint64, key K, value V) {
	idx := h1(h) & s.mask
	for i := range s.buckets[idx] {
		if e := &s.buckets[idx][i]; e.hash == h && e.key == key {
			e.value = value
			return
		}
	}
	s.buckets[idx] = append(s.buckets[idx], chainEntry[K, V]{hash: h, key: key, value: value})
	s.used++
	// Chains absorb any load, but keeping size/capacity at or below the
	// threshold keeps the average chain length, and thus lookups, O(1).
	if float64(s.used) > s.maxLoad*float64(len(s.buckets)) {
		s.resize(2 * len(s.buckets))
	}
}

func (s *chainStore[K, V]) remove(h uint64, key K) bool {
	idx := h1(h) & s.mask
	b := s.buckets[idx]
	for i := range b {
		if b[i].hash == h && b[i].key == key {
			// Order within a chain is immaterial: swap the tail entry in
			// and truncate.
			b[i] = b[len(b)-1]
			b[len(b)-1] = chainEntry[K, V]{}
			s.buckets[idx] = b[:len(b)-1]
			s.used--
			return true
		}
	}
	return false
}

// resize allocates a new bucket array and redistributes every entry using
// the new capacity's mask. The swap of the bucket array reference is the
// last step, so no caller ever observes a half-migrated table.
func (s *chainStore[K, V]) resize(newCapacity int) {
	buckets := make([][]chainEntry[K, V], newCapacity)
	mask := uint64(newCapacity) - 1
	for i := range s.buckets {
		for _, e := range s.buckets[i] {
			idx := h1(e.hash) & mask
			buckets[idx] = append(buckets[idx], e)
		}
	}
	s.buckets = buckets
	s.mask = mask
}

func (s *chainStore[K, V]) len() int {
	return s.used
}

func (s *chainStore[K, V]) capacity() int {
	return len(s.buckets)
}

func (s *chainStore[K, V]) all(yield func(key K, value V) bool) bool {
	// Snapshot the bucket array so that a resize during iteration does
	// not disturb the walk.
	buckets := s.buckets
	for i := range buckets {
		for j := range buckets[i] {
			if !yield(buckets[i][j].key, buckets[i][j].value) {
				return false
			}
		}
	}
	return true
}

func (s *chainStore[K, V]) clear() {
	for i := range s.buckets {
		s.buckets[i] = nil
	}
	s.used = 0
}

func (s *chainStore[K, V]) checkInvariants() {
	var used int
	for i := range s.buckets {
		for j := range s.buckets[i] {
			e := &s.buckets[i][j]
			if idx := h1(e.hash) & s.mask; idx != uint64(i) {
				panic(fmt.Sprintf("invariant failed: key %v in bucket %d, expected %d", e.key, i, idx))
			}
			used++
		}
	}
	if used != s.used {
		panic(fmt.Sprintf("invariant failed: found %d entries, but used count is %d", used, s.used))
	}
	if float64(s.used) > s.maxLoad*float64(len(s.buckets)) {
		panic(fmt.Sprintf("invariant failed: overloaded: used=%d capacity=%d threshold=%.2f",
			s.used, len(s.buckets), s.maxLoad))
	}
}
