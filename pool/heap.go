// Package pool implements the fixed-capacity arena from which the texture
// cache carves texel buffers.
//
// The heap hands out offsets into an arena the caller owns; it never touches
// the memory itself. This keeps it independent of the pixel type: a cache of
// uint16 texels simply divides offsets by two.
//
// Allocation failure is the normal steady state of a full cache, not an
// error: Alloc reports false and the caller evicts something and retries.
package pool

import (
	"fmt"
	"sort"

	"github.com/IvanBrykalov/texcache/internal/util"
)

// Granularity is the allocation unit in bytes. Capacities and block sizes are
// rounded up to a multiple of it.
const Granularity = 8

// Block is a live allocation: Size bytes starting at Off.
type Block struct {
	Off  int
	Size int
}

// End returns the first byte offset past the block.
func (b Block) End() int { return b.Off + b.Size }

// span is a free range inside the arena.
type span struct {
	off  int
	size int
}

// Heap is a first-fit allocator over a single arena.
// Free spans are kept sorted by offset and coalesced on Free, so two
// neighbouring releases always merge back into one span.
//
// Heap is not safe for concurrent use.
type Heap struct {
	capacity int
	inUse    int
	free     []span      // sorted by off, never adjacent
	live     map[int]int // off -> size, for Free validation
}

// New returns a heap with the given capacity (rounded up to Granularity).
func New(size int) *Heap {
	h := &Heap{}
	h.Init(size)
	return h
}

// Init (re)creates the arena. All outstanding blocks become invalid.
func (h *Heap) Init(size int) {
	if size < 0 {
		panic("pool: negative heap size")
	}
	h.capacity = util.RoundUp(size, Granularity)
	h.Reset()
}

// Reset releases every block without changing the capacity.
func (h *Heap) Reset() {
	h.inUse = 0
	h.free = h.free[:0]
	if h.capacity > 0 {
		h.free = append(h.free, span{off: 0, size: h.capacity})
	}
	h.live = make(map[int]int)
}

// Capacity returns the arena size in bytes.
func (h *Heap) Capacity() int { return h.capacity }

// InUse returns the number of bytes held by live blocks.
func (h *Heap) InUse() int { return h.inUse }

// Available returns the total free bytes (possibly fragmented).
func (h *Heap) Available() int { return h.capacity - h.inUse }

// FreeSpans returns the number of free fragments.
func (h *Heap) FreeSpans() int { return len(h.free) }

// Largest returns the size of the largest free span.
func (h *Heap) Largest() int {
	m := 0
	for _, s := range h.free {
		if s.size > m {
			m = s.size
		}
	}
	return m
}

// Alloc carves size bytes from the first free span large enough to hold them.
// It returns false when no contiguous span fits; the heap is left unchanged.
func (h *Heap) Alloc(size int) (Block, bool) {
	if size <= 0 {
		return Block{}, false
	}
	size = util.RoundUp(size, Granularity)
	for i := range h.free {
		s := &h.free[i]
		if s.size < size {
			continue
		}
		b := Block{Off: s.off, Size: size}
		if s.size == size {
			h.free = append(h.free[:i], h.free[i+1:]...)
		} else {
			s.off += size
			s.size -= size
		}
		h.inUse += size
		h.live[b.Off] = size
		return b, true
	}
	return Block{}, false
}

// Free returns b to the heap. Freeing a block twice, or a block this heap did
// not hand out, panics: both are bookkeeping bugs in the caller.
func (h *Heap) Free(b Block) {
	size, ok := h.live[b.Off]
	if !ok || size != b.Size {
		panic(fmt.Sprintf("pool: free of unknown block {off=%d size=%d}", b.Off, b.Size))
	}
	delete(h.live, b.Off)
	h.inUse -= size

	// Position of the first span after b.
	i := sort.Search(len(h.free), func(i int) bool { return h.free[i].off > b.Off })

	mergePrev := i > 0 && h.free[i-1].off+h.free[i-1].size == b.Off
	mergeNext := i < len(h.free) && b.End() == h.free[i].off

	switch {
	case mergePrev && mergeNext:
		h.free[i-1].size += b.Size + h.free[i].size
		h.free = append(h.free[:i], h.free[i+1:]...)
	case mergePrev:
		h.free[i-1].size += b.Size
	case mergeNext:
		h.free[i].off = b.Off
		h.free[i].size += b.Size
	default:
		h.free = append(h.free, span{})
		copy(h.free[i+1:], h.free[i:])
		h.free[i] = span{off: b.Off, size: b.Size}
	}
}
