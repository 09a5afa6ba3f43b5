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

// Ready-made hash functions for common key types. Any HashFn with decent
// bit dispersion works; these exist so that callers with string or
// integer keys do not have to supply their own. The table splits a hash
// into high index bits and a low 7-bit fingerprint, so every function
// here finishes with a full-width mixing step rather than exposing raw
// FNV or identity bits.

const (
	fnvOffset64 = 0xcbf29ce484222325
	fnvPrime64  = 0x00000100000001b3
)

// HashBytes is a seeded FNV-1a hash over key, suitable as a HashFn for
// []byte-derived keys.
func HashBytes(key []byte, seed uint64) uint64 {
	h := fnvOffset64 ^ seed
	for _, b := range key {
		h ^= uint64(b)
		h *= fnvPrime64
	}
	return mix64(h)
}

// HashString is a seeded FNV-1a hash over key, suitable as a HashFn for
// string keys.
func HashString(key string, seed uint64) uint64 {
	h := fnvOffset64 ^ seed
	for i := 0; i < len(key); i++ {
		h ^= uint64(key[i])
		h *= fnvPrime64
	}
	return mix64(h)
}

// HashUint64 hashes an unsigned integer key, suitable as a HashFn for
// uint64 keys.
func HashUint64(key uint64, seed uint64) uint64 {
	return mix64(key ^ seed)
}

// HashInt hashes an integer key, suitable as a HashFn for int keys.
func HashInt(key int, seed uint64) uint64 {
	return mix64(uint64(key) ^ seed)
}

// mix64 is the splitmix64 finalizer. It is a bijection on 64-bit values
// that diffuses every input bit into every output bit.
func mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
