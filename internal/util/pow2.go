// Package util contains internal helpers shared by the pool, the texture
// manager and the cache (power-of-two arithmetic).
//
//revive:disable:var-naming  // allow 'util' as an internal helpers package name
package util

import "math/bits"

// IsPowerOfTwo reports whether x is a power of two (> 0).
func IsPowerOfTwo(x uint64) bool {
	return x != 0 && (x&(x-1)) == 0
}

// NextPow2 returns the smallest power of two >= x.
// Special cases:
//   - x == 0  -> 1
//   - if the exact next power would overflow 64 bits, the result is clamped to 1<<63
//
// The implementation uses the classic bit-twiddling "fill" technique.
func NextPow2(x uint64) uint64 {
	if x <= 1 {
		return 1
	}
	x--
	x |= x >> 1
	x |= x >> 2
	x |= x >> 4
	x |= x >> 8
	x |= x >> 16
	x |= x >> 32
	x++
	// If overflow occurred (wrap to 0), clamp to the highest 64-bit power of two.
	if x == 0 {
		return 1 << 63
	}
	return x
}

// Log2 returns floor(log2(x)) for x > 0 and 0 for x == 0.
// For a power of two it is the exact shift: 1<<Log2(x) == x.
func Log2(x uint64) int {
	if x == 0 {
		return 0
	}
	return bits.Len64(x) - 1
}

// RoundUp rounds n up to a multiple of align. align must be a power of two.
func RoundUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}
