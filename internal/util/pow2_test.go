package util

import "testing"

func TestNextPow2(t *testing.T) {
	t.Parallel()

	cases := map[uint64]uint64{0: 1, 1: 1, 2: 2, 3: 4, 5: 8, 64: 64, 65: 128, 1<<63 + 1: 1 << 63}
	for in, want := range cases {
		if got := NextPow2(in); got != want {
			t.Fatalf("NextPow2(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestLog2AndIsPowerOfTwo(t *testing.T) {
	t.Parallel()

	for shift := 0; shift < 63; shift++ {
		x := uint64(1) << shift
		if !IsPowerOfTwo(x) {
			t.Fatalf("IsPowerOfTwo(%d) = false", x)
		}
		if got := Log2(x); got != shift {
			t.Fatalf("Log2(%d) = %d, want %d", x, got, shift)
		}
	}
	if IsPowerOfTwo(0) || IsPowerOfTwo(6) {
		t.Fatal("0 and 6 are not powers of two")
	}
	if Log2(0) != 0 || Log2(7) != 2 {
		t.Fatal("Log2 must floor")
	}
}

func TestRoundUp(t *testing.T) {
	t.Parallel()

	if got := RoundUp(0, 8); got != 0 {
		t.Fatalf("RoundUp(0,8) = %d", got)
	}
	if got := RoundUp(1, 8); got != 8 {
		t.Fatalf("RoundUp(1,8) = %d", got)
	}
	if got := RoundUp(16, 8); got != 16 {
		t.Fatalf("RoundUp(16,8) = %d", got)
	}
	if got := RoundUp(17, 8); got != 24 {
		t.Fatalf("RoundUp(17,8) = %d", got)
	}
}
