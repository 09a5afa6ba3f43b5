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

// option provide an interface to do work on Table while it is being
// created.
type option[K comparable, V any] interface {
	apply(t *Table[K, V])
}

type maxLoadFactorOption[K comparable, V any] struct {
	f float64
}

func (op maxLoadFactorOption[K, V]) apply(t *Table[K, V]) {
	t.maxLoad = op.f
}

// WithMaxLoadFactor is an option to specify the load factor threshold
// above which the table resizes. The default is 0.75. Panics unless f is
// in (0, 1): a threshold of 1 or more would leave open addressing with no
// empty slot to terminate probe sequences.
func WithMaxLoadFactor[K comparable, V any](f float64) option[K, V] {
	if f <= 0 || f >= 1 {
		panic("hashtable: max load factor must be in (0, 1)")
	}
	return maxLoadFactorOption[K, V]{f}
}

type seedOption[K comparable, V any] struct {
	seed uint64
}

func (op seedOption[K, V]) apply(t *Table[K, V]) {
	t.seed = op.seed
}

// WithSeed is an option to fix the seed mixed into every hash call. The
// default seed is random per table. Fixing the seed makes slot placement
// deterministic, which tests rely on.
func WithSeed[K comparable, V any](seed uint64) option[K, V] {
	return seedOption[K, V]{seed}
}

type keyValidatorOption[K comparable, V any] struct {
	valid func(K) bool
}

func (op keyValidatorOption[K, V]) apply(t *Table[K, V]) {
	t.validKey = op.valid
}

// WithKeyValidator is an option to replace the default invalid-key check
// with a custom predicate reporting whether a key may be stored. Keys
// failing the predicate cause Put and Delete to return ErrInvalidKey. A
// nil predicate accepts every key.
func WithKeyValidator[K comparable, V any](valid func(K) bool) option[K, V] {
	return keyValidatorOption[K, V]{valid}
}
