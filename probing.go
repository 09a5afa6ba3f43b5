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

// Each slot in an open-addressed store has a control byte which can have
// one of three states: empty, deleted, or full. They have the following
// bit patterns:
//
//	  empty: 1 0 0 0 0 0 0 0
//	deleted: 1 1 1 1 1 1 1 0
//	   full: 0 h h h h h h h  // h represents the H2 hash bits
//
// A probe step compares the control byte against h2(hash) first: the
// deleted pattern can never equal an h2 value, so tombstones are skipped
// without a dedicated branch, and full slots with a different fingerprint
// are rejected without touching the key.
type ctrl uint8

const (
	ctrlEmpty   ctrl = 0b10000000
	ctrlDeleted ctrl = 0b11111110
)

// slot holds an entry of an open-addressed store. The full hash is kept
// so that rebuilds do not need to re-invoke the hash function.
type slot[K comparable, V any] struct {
	hash  uint64
	key   K
	value V
}

// probeSeq generates the deterministic slot sequence for a hash. It is
// the single probe routine shared by get, put, remove, and rebuild:
// generating the sequence in one place is what guarantees the insert-time
// and lookup-time walks for a key can never drift apart.
//
// Linear mode advances by 1. Quadratic mode advances by triangular
// numbers,
//
//	p(i) := hash + (i² + i)/2  (mod mask+1)
//
// which visits every slot exactly once when mask+1 is a power of two,
// since (i²+i)/2 is a bijection in Z/(2^m). A sequence that revisits
// slots before covering the table could loop forever on a table with no
// empty slot in the missed region; TestProbeSequenceCoversAllSlots
// verifies the coverage property for both modes.
type probeSeq struct {
	mask      uint64
	offset    uint64
	index     uint64
	quadratic bool
}

func makeProbeSeq(h uint64, mask uint64, quadratic bool) probeSeq {
	return probeSeq{
		mask:      mask,
		offset:    h & mask,
		quadratic: quadratic,
	}
}

func (s probeSeq) next() probeSeq {
	if s.quadratic {
		s.index++
		s.offset = (s.offset + s.index) & s.mask
	} else {
		s.offset = (s.offset + 1) & s.mask
	}
	return s
}

func (s probeSeq) String() string {
	return fmt.Sprintf("mask=%d offset=%d index=%d quadratic=%t",
		s.mask, s.offset, s.index, s.quadratic)
}

// probeStore is the open-addressing slot storage, used for both
// LinearProbing and QuadraticProbing. Every entry occupies a slot in the
// single backing array; ctrls carries one control byte per slot.
//
// Tombstones occupy capacity until a rebuild, so the resize trigger
// counts used+tombstones against the load factor. Without that, a
// Put/Delete workload at constant size would grow probe chains without
// bound while never tripping a size-based trigger.
type probeStore[K comparable, V any] struct {
	ctrls []ctrl
	slots []slot[K, V]
	// mask is len(slots)-1. len(slots) is always a power of two.
	mask uint64
	// used is the number of live entries.
	used int
	// tombstones is the number of deleted slots not yet reclaimed.
	tombstones int
	maxLoad    float64
	quadratic  bool
}

func newProbeStore[K comparable, V any](capacity int, maxLoad float64, quadratic bool) *probeStore[K, V] {
	s := &probeStore[K, V]{
		maxLoad:   maxLoad,
		quadratic: quadratic,
	}
	s.alloc(capacity)
	return s
}

func (s *probeStore[K, V]) alloc(capacity int) {
	s.ctrls = make([]ctrl, capacity)
	for i := range s.ctrls {
		s.ctrls[i] = ctrlEmpty
	}
	s.slots = make([]slot[K, V], capacity)
	s.mask = uint64(capacity) - 1
}

func (s *probeStore[K, V]) get(h uint64, key K) (value V, ok bool) {
	for seq := makeProbeSeq(h1(h), s.mask, s.quadratic); ; seq = seq.next() {
		c := s.ctrls[seq.offset]
		if c == ctrlEmpty {
			return value, false
		}
		if c == ctrl(h2(h)) {
			if sl := &s.slots[seq.offset]; sl.key == key {
				return sl.value, true
			}
		}
	}
}

func (s *probeStore[K, V]) put(h uint64, key K, value V) {
	// Walk the probe sequence with the same termination rule as get,
	// remembering the first tombstone on the way. If the key is found,
	// overwrite in place. If an empty slot terminates the walk the key is
	// absent and the new entry lands in the remembered tombstone if there
	// was one, reclaiming it, else in the empty slot.
	reuse := -1
	for seq := makeProbeSeq(h1(h), s.mask, s.quadratic); ; seq = seq.next() {
		c := s.ctrls[seq.offset]
		if c == ctrlEmpty {
			target := seq.offset
			if reuse >= 0 {
				target = uint64(reuse)
				s.tombstones--
			}
			s.setSlot(target, h, key, value)
			s.used++
			// Keep used/capacity (and probe-chain occupancy) at or below
			// the threshold before returning, so the overload is never
			// observable by the caller.
			if s.overloaded() {
				s.rebuild()
			}
			return
		}
		if c == ctrlDeleted {
			if reuse < 0 {
				reuse = int(seq.offset)
			}
			continue
		}
		if c == ctrl(h2(h)) {
			if sl := &s.slots[seq.offset]; sl.key == key {
				sl.value = value
				return
			}
		}
	}
}

func (s *probeStore[K, V]) remove(h uint64, key K) bool {
	for seq := makeProbeSeq(h1(h), s.mask, s.quadratic); ; seq = seq.next() {
		c := s.ctrls[seq.offset]
		if c == ctrlEmpty {
			return false
		}
		if c == ctrl(h2(h)) {
			if sl := &s.slots[seq.offset]; sl.key == key {
				// Tombstone the slot rather than emptying it. Marking it
				// empty would terminate the probe walks of colliding keys
				// inserted after this one.
				*sl = slot[K, V]{}
				s.ctrls[seq.offset] = ctrlDeleted
				s.used--
				s.tombstones++
				return true
			}
		}
	}
}

func (s *probeStore[K, V]) setSlot(i uint64, h uint64, key K, value V) {
	s.slots[i] = slot[K, V]{hash: h, key: key, value: value}
	s.ctrls[i] = ctrl(h2(h))
}

// overloaded reports whether occupancy exceeds the load factor threshold.
// Tombstones count as occupancy: they lengthen probe chains exactly like
// live entries until reclaimed.
func (s *probeStore[K, V]) overloaded() bool {
	return float64(s.used+s.tombstones) > s.maxLoad*float64(len(s.slots))
}

// rebuild reallocates the backing array and re-inserts every live entry,
// dropping all tombstones. The capacity doubles unless the live entries
// alone use at most half the threshold budget, in which case dropping
// tombstones recovers enough room and the capacity is kept. Rebuilding at
// the same capacity is what bounds table growth under Put/Delete churn at
// a steady size.
func (s *probeStore[K, V]) rebuild() {
	newCapacity := len(s.slots)
	if float64(s.used) > s.maxLoad*float64(newCapacity)/2 {
		newCapacity *= 2
	}

	oldCtrls, oldSlots := s.ctrls, s.slots
	s.alloc(newCapacity)
	s.tombstones = 0

	for i := range oldCtrls {
		if oldCtrls[i]&ctrlEmpty == 0 {
			sl := &oldSlots[i]
			s.uncheckedPut(sl.hash, sl.key, sl.value)
		}
	}
}

// uncheckedPut inserts an entry known not to be in the store, into the
// first empty slot of its probe sequence. Only called during rebuild, on
// a tombstone-free array with spare capacity.
func (s *probeStore[K, V]) uncheckedPut(h uint64, key K, value V) {
	for seq := makeProbeSeq(h1(h), s.mask, s.quadratic); ; seq = seq.next() {
		if s.ctrls[seq.offset] == ctrlEmpty {
			s.setSlot(seq.offset, h, key, value)
			return
		}
	}
}

func (s *probeStore[K, V]) len() int {
	return s.used
}

func (s *probeStore[K, V]) capacity() int {
	return len(s.slots)
}

func (s *probeStore[K, V]) all(yield func(key K, value V) bool) bool {
	// Snapshot the controls and slots so that iteration remains valid if
	// the store is rebuilt during iteration.
	ctrls, slots := s.ctrls, s.slots
	for i := range ctrls {
		// Full slots have the high bit clear.
		if ctrls[i]&ctrlEmpty == 0 {
			if !yield(slots[i].key, slots[i].value) {
				return false
			}
		}
	}
	return true
}

func (s *probeStore[K, V]) clear() {
	for i := range s.ctrls {
		s.ctrls[i] = ctrlEmpty
	}
	clear(s.slots)
	s.used = 0
	s.tombstones = 0
}

func (s *probeStore[K, V]) checkInvariants() {
	var used, tombstones, empty int
	for i := range s.ctrls {
		switch c := s.ctrls[i]; {
		case c == ctrlEmpty:
			empty++
		case c == ctrlDeleted:
			tombstones++
		default:
			sl := &s.slots[i]
			if c != ctrl(h2(sl.hash)) {
				panic(fmt.Sprintf("invariant failed: ctrl(%d)=%02x does not match h2=%02x",
					i, c, h2(sl.hash)))
			}
			if _, ok := s.get(sl.hash, sl.key); !ok {
				panic(fmt.Sprintf("invariant failed: slot(%d): %v not reachable by probing", i, sl.key))
			}
			used++
		}
	}
	if used != s.used {
		panic(fmt.Sprintf("invariant failed: found %d used slots, but used count is %d", used, s.used))
	}
	if tombstones != s.tombstones {
		panic(fmt.Sprintf("invariant failed: found %d tombstones, but tombstone count is %d",
			tombstones, s.tombstones))
	}
	if empty == 0 {
		panic("invariant failed: no empty slot to terminate probe sequences")
	}
	if s.overloaded() {
		panic(fmt.Sprintf("invariant failed: overloaded: used=%d tombstones=%d capacity=%d threshold=%.2f",
			s.used, s.tombstones, len(s.slots), s.maxLoad))
	}
}
