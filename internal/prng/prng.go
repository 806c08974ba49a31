// Package prng provides the reproducible randomness used by weekly selection:
// a Mulberry32 generator, FNV-1a key hashing and a Fisher–Yates shuffle.
// Nothing here touches a process-global source or the wall clock.
package prng

import "hash/fnv"

// Generator is a Mulberry32 stream. It is not safe for concurrent use and
// must not be shared across selection runs.
type Generator struct {
	state uint32
}

// New returns a generator positioned at the start of the stream for seed.
func New(seed uint32) *Generator {
	return &Generator{state: seed}
}

// ForKey seeds a generator from the FNV-1a hash of key.
func ForKey(key string) *Generator {
	return New(HashKey(key))
}

// Float64 returns the next value in [0, 1).
func (g *Generator) Float64() float64 {
	g.state += 0x6d2b79f5
	t := g.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / 4294967296.0
}

// Intn returns the next value in [0, n). n must be positive.
func (g *Generator) Intn(n int) int {
	if n <= 0 {
		panic("prng: Intn called with non-positive n")
	}
	return int(g.Float64() * float64(n))
}

// HashKey is 32-bit FNV-1a over the UTF-8 bytes of key.
func HashKey(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32()
}

// Shuffle returns a Fisher–Yates permutation of items; the input is untouched.
func Shuffle[T any](g *Generator, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := g.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// PickN shuffles items and keeps at most n of them.
func PickN[T any](g *Generator, items []T, n int) []T {
	if n <= 0 {
		return nil
	}
	shuffled := Shuffle(g, items)
	if len(shuffled) > n {
		shuffled = shuffled[:n]
	}
	return shuffled
}

// Pick deterministically chooses one element for key, or false when list is empty.
func Pick[T any](list []T, key string) (T, bool) {
	var zero T
	if len(list) == 0 {
		return zero, false
	}
	return list[ForKey(key).Intn(len(list))], true
}
