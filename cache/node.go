package cache

import (
	"github.com/IvanBrykalov/texcache/policy"
	"github.com/IvanBrykalov/texcache/pool"
)

// slot is one cache entry: the lit buffer of a single surface plus its
// intrusive list links. Slots are addressed by index; the LRU list and the
// free-slot list are chains of indices, never pointers.
//
// A slot is either resident (inCache, linked, block allocated) or evicted
// (unlinked, zero block). The slot itself lives until its surface is released.
type slot struct {
	surface Surface // nil while on the free-slot list

	// Intrusive list links: head is MRU, tail is LRU.
	// On the free-slot list next chains free slots.
	prev policy.Slot
	next policy.Slot

	inCache bool
	block   pool.Block // bytes in the pool
	texels  int        // Width*(Height+2*margin)
	geom    Geometry   // geometry the buffer was laid out for

	// Sub-texture grid: blocks of 1<<subShift texels.
	subShift   int
	subW, subH int
	valid      []uint64 // bit i set => block i holds current light
	nValid     int
}

func (s *slot) blocks() int { return s.subW * s.subH }

func (s *slot) isValid(i int) bool { return s.valid[i>>6]&(1<<(i&63)) != 0 }

func (s *slot) setValid(i int) {
	if !s.isValid(i) {
		s.valid[i>>6] |= 1 << (i & 63)
		s.nValid++
	}
}

func (s *slot) clearValid(i int) {
	if s.isValid(i) {
		s.valid[i>>6] &^= 1 << (i & 63)
		s.nValid--
	}
}

func (s *slot) invalidateAll() {
	clear(s.valid)
	s.nValid = 0
}

// layout prepares the sub-texture grid for geometry g.
func (s *slot) layout(g Geometry, subShift int) {
	if subShift < g.MipShift {
		subShift = g.MipShift
	}
	s.geom = g
	s.subShift = subShift
	side := 1 << subShift
	s.subW = (g.Width + side - 1) >> subShift
	s.subH = (g.Height + side - 1) >> subShift
	n := (s.blocks() + 63) >> 6
	if cap(s.valid) >= n {
		s.valid = s.valid[:n]
	} else {
		s.valid = make([]uint64, n)
	}
	s.invalidateAll()
}
