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

import (
	"fmt"
	"io"
	"strconv"
	"testing"

	"github.com/aclements/go-perfevent/perfbench"
)

func BenchmarkGetHit(b *testing.B) {
	b.Run("impl=runtimeMap", func(b *testing.B) {
		b.Run("t=Int64", benchSizes(benchmarkRuntimeMapGetHit[int64], genKeys[int64]))
		b.Run("t=String", benchSizes(benchmarkRuntimeMapGetHit[string], genKeys[string]))
	})
	for _, s := range allStrategies {
		s := s
		b.Run("impl="+s.String(), func(b *testing.B) {
			b.Run("t=Int64", benchSizes(benchmarkTableGetHit[int64](s), genKeys[int64]))
			b.Run("t=String", benchSizes(benchmarkTableGetHit[string](s), genKeys[string]))
		})
	}
}

func BenchmarkGetMiss(b *testing.B) {
	b.Run("impl=runtimeMap", func(b *testing.B) {
		b.Run("t=Int64", benchSizes(benchmarkRuntimeMapGetMiss[int64], genKeys[int64]))
		b.Run("t=String", benchSizes(benchmarkRuntimeMapGetMiss[string], genKeys[string]))
	})
	for _, s := range allStrategies {
		s := s
		b.Run("impl="+s.String(), func(b *testing.B) {
			b.Run("t=Int64", benchSizes(benchmarkTableGetMiss[int64](s), genKeys[int64]))
			b.Run("t=String", benchSizes(benchmarkTableGetMiss[string](s), genKeys[string]))
		})
	}
}

func BenchmarkPutGrow(b *testing.B) {
	b.Run("impl=runtimeMap", func(b *testing.B) {
		b.Run("t=Int64", benchSizes(benchmarkRuntimeMapPutGrow[int64], genKeys[int64]))
		b.Run("t=String", benchSizes(benchmarkRuntimeMapPutGrow[string], genKeys[string]))
	})
	for _, s := range allStrategies {
		s := s
		b.Run("impl="+s.String(), func(b *testing.B) {
			b.Run("t=Int64", benchSizes(benchmarkTablePutGrow[int64](s), genKeys[int64]))
			b.Run("t=String", benchSizes(benchmarkTablePutGrow[string](s), genKeys[string]))
		})
	}
}

func BenchmarkPutDelete(b *testing.B) {
	b.Run("impl=runtimeMap", func(b *testing.B) {
		b.Run("t=Int64", benchSizes(benchmarkRuntimeMapPutDelete[int64], genKeys[int64]))
		b.Run("t=String", benchSizes(benchmarkRuntimeMapPutDelete[string], genKeys[string]))
	})
	for _, s := range allStrategies {
		s := s
		b.Run("impl="+s.String(), func(b *testing.B) {
			b.Run("t=Int64", benchSizes(benchmarkTablePutDelete[int64](s), genKeys[int64]))
			b.Run("t=String", benchSizes(benchmarkTablePutDelete[string](s), genKeys[string]))
		})
	}
}

type benchTypes interface {
	int64 | string
}

func benchSizes[T benchTypes](
	f func(b *testing.B, n int, genKeys func(start, end int) []T), genKeys func(start, end int) []T,
) func(*testing.B) {
	var cases = []int{6, 64, 1024, 8192, 1 << 16}

	return func(b *testing.B) {
		for _, n := range cases {
			b.Run("len="+strconv.Itoa(n), func(b *testing.B) { f(b, n, genKeys) })
		}
	}
}

func genKeys[T benchTypes](start, end int) []T {
	keys := make([]T, end-start)
	for i := range keys {
		switch k := any(&keys[i]).(type) {
		case *int64:
			*k = int64(start + i)
		case *string:
			*k = strconv.Itoa(start + i)
		default:
			panic("not reached")
		}
	}
	return keys
}

func benchHash[T benchTypes]() HashFn[T] {
	return func(key T, seed uint64) uint64 {
		switch k := any(key).(type) {
		case int64:
			return HashUint64(uint64(k), seed)
		case string:
			return HashString(k, seed)
		default:
			panic("not reached")
		}
	}
}

func benchmarkRuntimeMapGetHit[T benchTypes](
	b *testing.B, n int, genKeys func(start, end int) []T,
) {
	m := make(map[T]T, n)
	keys := genKeys(0, n)
	for _, k := range keys {
		m[k] = k
	}
	perfbench.Open(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m[keys[i%n]]
	}
}

func benchmarkTableGetHit[T benchTypes](
	strategy Strategy,
) func(b *testing.B, n int, genKeys func(start, end int) []T) {
	return func(b *testing.B, n int, genKeys func(start, end int) []T) {
		m := New[T, T](n, strategy, benchHash[T]())
		keys := genKeys(0, n)
		for _, k := range keys {
			_ = m.Put(k, k)
		}
		perfbench.Open(b)
		b.ResetTimer()
		var ok bool
		for i := 0; i < b.N; i++ {
			_, ok = m.Get(keys[i%n])
		}
		b.StopTimer()
		fmt.Fprint(io.Discard, ok)
	}
}

func benchmarkRuntimeMapGetMiss[T benchTypes](
	b *testing.B, n int, genKeys func(start, end int) []T,
) {
	m := make(map[T]T)
	keys := genKeys(0, n)
	miss := genKeys(-n, 0)
	for _, k := range keys {
		m[k] = k
	}
	perfbench.Open(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m[miss[i%n]]
	}
}

func benchmarkTableGetMiss[T benchTypes](
	strategy Strategy,
) func(b *testing.B, n int, genKeys func(start, end int) []T) {
	return func(b *testing.B, n int, genKeys func(start, end int) []T) {
		m := New[T, T](0, strategy, benchHash[T]())
		keys := genKeys(0, n)
		miss := genKeys(-n, 0)
		for _, k := range keys {
			_ = m.Put(k, k)
		}
		perfbench.Open(b)
		b.ResetTimer()
		var ok bool
		for i := 0; i < b.N; i++ {
			_, ok = m.Get(miss[i%n])
		}
		b.StopTimer()
		fmt.Fprint(io.Discard, ok)
	}
}

func benchmarkRuntimeMapPutGrow[T benchTypes](
	b *testing.B, n int, genKeys func(start, end int) []T,
) {
	keys := genKeys(0, n)
	perfbench.Open(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m := make(map[T]T)
		for _, k := range keys {
			m[k] = k
		}
	}
}

func benchmarkTablePutGrow[T benchTypes](
	strategy Strategy,
) func(b *testing.B, n int, genKeys func(start, end int) []T) {
	return func(b *testing.B, n int, genKeys func(start, end int) []T) {
		keys := genKeys(0, n)
		perfbench.Open(b)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			m := New[T, T](0, strategy, benchHash[T]())
			for _, k := range keys {
				_ = m.Put(k, k)
			}
		}
	}
}

func benchmarkRuntimeMapPutDelete[T benchTypes](
	b *testing.B, n int, genKeys func(start, end int) []T,
) {
	m := make(map[T]T, n)
	keys := genKeys(0, n)
	for _, k := range keys {
		m[k] = k
	}
	perfbench.Open(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		j := i % n
		delete(m, keys[j])
		m[keys[j]] = keys[j]
	}
}

func benchmarkTablePutDelete[T benchTypes](
	strategy Strategy,
) func(b *testing.B, n int, genKeys func(start, end int) []T) {
	return func(b *testing.B, n int, genKeys func(start, end int) []T) {
		m := New[T, T](n, strategy, benchHash[T]())
		keys := genKeys(0, n)
		for _, k := range keys {
			_ = m.Put(k, k)
		}
		perfbench.Open(b)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			j := i % n
			_, _ = m.Delete(keys[j])
			_ = m.Put(keys[j], keys[j])
		}
	}
}
