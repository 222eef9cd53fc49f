package cache

import (
	"fmt"
	"image"
	"io"
	"log/slog"

	"github.com/IvanBrykalov/texcache/internal/util"
	"github.com/IvanBrykalov/texcache/lightmap"
	"github.com/IvanBrykalov/texcache/policy"
	"github.com/IvanBrykalov/texcache/policy/lru"
	"github.com/IvanBrykalov/texcache/pool"
	"github.com/IvanBrykalov/texcache/texmgr"
)

// Cache keeps lit texel buffers for surfaces in a fixed-size pool, evicting
// least-recently-used buffers when the pool is full.
//
// Cache is not safe for concurrent use; it is driven synchronously by a
// single rasterizer.
type Cache[P Pixel] struct {
	opt    Options
	packer Packer[P]
	bpp    int
	log    *slog.Logger

	heap  *pool.Heap
	arena []P

	slots    []slot
	freeSlot policy.Slot

	head policy.Slot // MRU
	tail policy.Slot // LRU
	len  int
	size int64 // bytes held by resident entries

	pol policy.ListPolicy

	hits, misses, evicts uint64
	relights, cells      uint64
}

// withDefaults fills the zero-valued Options fields.
func withDefaults(opt Options) Options {
	if opt.CacheSize <= 0 {
		panic("CacheSize must be > 0")
	}
	if opt.Margin < 0 {
		opt.Margin = 0
	}
	if opt.SubTextureSize <= 0 {
		opt.SubTextureSize = DefaultSubTextureSize
	}
	opt.SubTextureSize = int(util.NextPow2(uint64(opt.SubTextureSize)))
	if opt.Policy == nil {
		opt.Policy = lru.New()
	}
	if opt.Manager == nil {
		opt.Manager = texmgr.NewManager(nil)
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Logger == nil {
		opt.Logger = newNopLogger()
	}
	return opt
}

// New constructs a cache that packs texels with pk.
// Defaults:
//   - nil Metrics  -> NoopMetrics
//   - nil Policy   -> LRU
//   - nil Manager  -> TrueRGB manager with the 3-3-2 palette
func New[P Pixel](pk Packer[P], opt Options) *Cache[P] {
	opt = withDefaults(opt)
	c := &Cache[P]{
		opt:      opt,
		packer:   pk,
		bpp:      sizeOf[P](),
		log:      opt.Logger,
		heap:     &pool.Heap{},
		freeSlot: policy.None,
		head:     policy.None,
		tail:     policy.None,
	}
	c.pol = opt.Policy.New(listHooks[P]{c: c})
	c.initPool(opt.CacheSize)
	return c
}

// initPool (re)creates the arena for size texels.
func (c *Cache[P]) initPool(size int) {
	c.heap.Init(size * c.bpp)
	c.arena = make([]P, c.heap.Capacity()/c.bpp)
}

// ---- TextureCache implementation ----

// SetCacheSize evicts everything and recreates the pool for size texels.
func (c *Cache[P]) SetCacheSize(size int) {
	if size <= 0 {
		panic("CacheSize must be > 0")
	}
	c.Clear()
	c.opt.CacheSize = size
	c.initPool(size)
	c.log.Debug("texcache: pool resized", "texels", size, "bytes", c.heap.Capacity())
}

// Clear evicts every resident entry. Slots (and surface handles) survive.
func (c *Cache[P]) Clear() {
	n := c.len
	for c.tail != policy.None {
		c.evict(c.tail, EvictClear)
	}
	c.heap.Reset()
	c.len, c.size = 0, 0
	c.opt.Metrics.Size(0, 0)
	if n > 0 {
		c.log.Debug("texcache: cleared", "entries", n)
	}
}

// InitTexture attaches an entry to s without allocating a buffer.
func (c *Cache[P]) InitTexture(s Surface) { c.slotFor(s) }

// Release evicts the entry of s and returns its slot to the free list.
func (c *Cache[P]) Release(s Surface) {
	id, ok := c.lookup(s)
	if !ok {
		return
	}
	c.evict(id, EvictRelease)
	e := &c.slots[id]
	e.surface = nil
	e.valid = e.valid[:0]
	e.next = c.freeSlot
	c.freeSlot = id
	*s.CacheHandle() = Handle{}
}

// UseTexture returns the lit buffer for s.
//
//   - resident and dirty: the changed blocks are relit in place; the LRU
//     order is left alone.
//   - resident and clean: the entry is promoted to MRU; nothing is relit
//     unless UseSubTexture left blocks unlit.
//   - not resident: a buffer is allocated (evicting from the LRU tail as
//     needed), inserted at MRU and fully lit.
//
// It returns false, changing nothing, when s has no lightmap, and false
// when s is larger than the whole pool.
func (c *Cache[P]) UseTexture(s Surface, dirty lightmap.Dirty) (Lit[P], bool) {
	if !c.lightable(s) {
		return Lit[P]{}, false
	}
	id := c.slotFor(s)
	c.checkGeometry(id, s)

	if c.slots[id].inCache {
		c.hit()
		if dirty.IsClean() {
			c.pol.OnGet(id)
		} else {
			c.invalidate(id, dirty)
		}
	} else {
		c.miss()
		if !c.admit(id, s) {
			return Lit[P]{}, false
		}
	}
	c.relightInvalid(id, s)
	return c.lit(id), true
}

// UseSubTexture lights only the sub-texture block containing texel (u, v),
// clamped to the surface. A resident entry keeps its LRU position; a miss
// allocates and inserts the entry like UseTexture but lights a single block.
func (c *Cache[P]) UseSubTexture(s Surface, u, v int, dirty lightmap.Dirty) (Lit[P], bool) {
	if !c.lightable(s) {
		return Lit[P]{}, false
	}
	id := c.slotFor(s)
	c.checkGeometry(id, s)

	if c.slots[id].inCache {
		c.hit()
		c.invalidate(id, dirty)
	} else {
		c.miss()
		if !c.admit(id, s) {
			return Lit[P]{}, false
		}
	}

	e := &c.slots[id]
	u = clampIndex(u, e.geom.Width)
	v = clampIndex(v, e.geom.Height)
	b := (v>>e.subShift)*e.subW + u>>e.subShift
	if !e.isValid(b) {
		c.relightBlock(id, s, b)
	}
	return c.lit(id), true
}

// Dump writes entry count, total bytes and mean bytes per entry.
func (c *Cache[P]) Dump(w io.Writer) error {
	st := c.Stats()
	_, err := fmt.Fprintf(w,
		"texcache: %d entries, %d bytes, %.1f bytes/entry (pool %d bytes, %d free spans, %d slots)\n",
		st.Entries, st.Bytes, st.MeanBytes(), st.Capacity, st.FreeSpans, st.Slots)
	return err
}

// Stats returns a snapshot of occupancy and counters.
func (c *Cache[P]) Stats() Stats {
	return Stats{
		Entries:    c.len,
		Bytes:      c.size,
		Capacity:   c.heap.Capacity(),
		FreeSpans:  c.heap.FreeSpans(),
		Slots:      len(c.slots),
		Hits:       c.hits,
		Misses:     c.misses,
		Evictions:  c.evicts,
		Relights:   c.relights,
		RelitCells: c.cells,
	}
}

// Len returns the number of resident entries.
func (c *Cache[P]) Len() int { return c.len }

// Bytes returns the pool bytes held by resident entries.
func (c *Cache[P]) Bytes() int64 { return c.size }

// Order returns the resident surfaces from MRU to LRU.
func (c *Cache[P]) Order() []Surface {
	out := make([]Surface, 0, c.len)
	for id := c.head; id != policy.None; id = c.slots[id].next {
		out = append(out, c.slots[id].surface)
	}
	return out
}

// Resident reports whether s currently has a lit buffer.
func (c *Cache[P]) Resident(s Surface) bool {
	id, ok := c.lookup(s)
	return ok && c.slots[id].inCache
}

var (
	_ TextureCache[uint8]  = (*Cache[uint8])(nil)
	_ TextureCache[uint16] = (*Cache[uint16])(nil)
	_ TextureCache[uint32] = (*Cache[uint32])(nil)
)

// ---- helpers ----

func (c *Cache[P]) hit() {
	c.hits++
	c.opt.Metrics.Hit()
}

func (c *Cache[P]) miss() {
	c.misses++
	c.opt.Metrics.Miss()
}

// lightable reports whether s can be lit at all.
func (c *Cache[P]) lightable(s Surface) bool {
	if s.Lightmap() == nil || s.Texture() == nil {
		return false
	}
	g := s.Geometry()
	return g.Width > 0 && g.Height > 0 && g.MipShift >= 0
}

// lookup returns the slot of s if its handle belongs to this cache.
func (c *Cache[P]) lookup(s Surface) (policy.Slot, bool) {
	h := s.CacheHandle()
	if !h.Valid() {
		return policy.None, false
	}
	id := policy.Slot(h.idx - 1)
	if int(id) >= len(c.slots) || c.slots[id].surface != s {
		return policy.None, false
	}
	return id, true
}

// slotFor returns the slot of s, creating one on first reference.
// It may grow c.slots, so callers re-take slot pointers afterwards.
func (c *Cache[P]) slotFor(s Surface) policy.Slot {
	if id, ok := c.lookup(s); ok {
		return id
	}
	var id policy.Slot
	if c.freeSlot != policy.None {
		id = c.freeSlot
		c.freeSlot = c.slots[id].next
	} else {
		id = policy.Slot(len(c.slots))
		c.slots = append(c.slots, slot{})
	}
	c.slots[id] = slot{
		surface: s,
		prev:    policy.None,
		next:    policy.None,
		valid:   c.slots[id].valid[:0],
	}
	*s.CacheHandle() = Handle{idx: int32(id) + 1}
	return id
}

// checkGeometry evicts a resident buffer laid out for different geometry.
func (c *Cache[P]) checkGeometry(id policy.Slot, s Surface) {
	e := &c.slots[id]
	if e.inCache && e.geom != s.Geometry() {
		c.evict(id, EvictResize)
	}
}

// admit allocates a buffer for slot id, evicting from the LRU tail until the
// pool has room, and inserts the entry at MRU with every block unlit.
func (c *Cache[P]) admit(id policy.Slot, s Surface) bool {
	g := s.Geometry()
	texels := g.Width * (g.Height + 2*c.opt.Margin)
	need := texels * c.bpp
	if util.RoundUp(need, pool.Granularity) > c.heap.Capacity() {
		c.log.Warn("texcache: surface larger than pool, not cached",
			"width", g.Width, "height", g.Height, "bytes", need, "pool", c.heap.Capacity())
		return false
	}

	var blk pool.Block
	for {
		b, ok := c.heap.Alloc(need)
		if ok {
			blk = b
			break
		}
		victim := c.tail
		if victim == policy.None || victim == id {
			// Cannot happen: an empty pool always fits a buffer no larger than it.
			c.log.Warn("texcache: pool exhausted with nothing to evict", "bytes", need)
			return false
		}
		c.evict(victim, EvictCapacity)
	}

	e := &c.slots[id]
	e.block = blk
	e.texels = texels
	e.inCache = true
	e.layout(g, util.Log2(uint64(c.opt.SubTextureSize)))
	c.size += int64(blk.Size)

	// Blank the margin rows.
	buf := c.buffer(id)
	clear(buf[:g.Width*c.opt.Margin])
	clear(buf[g.Width*(c.opt.Margin+g.Height):])

	if ev := c.pol.OnAdd(id); ev != policy.None && ev != id {
		c.evict(ev, EvictPolicy)
	}
	c.opt.Metrics.Size(c.len, c.size)
	return true
}

// evict releases the buffer of slot id and unlinks it.
func (c *Cache[P]) evict(id policy.Slot, reason EvictReason) {
	e := &c.slots[id]
	if !e.inCache {
		return
	}
	c.pol.OnRemove(id)
	c.unlink(id)
	c.heap.Free(e.block)
	c.size -= int64(e.block.Size)
	e.block = pool.Block{}
	e.texels = 0
	e.inCache = false
	e.invalidateAll()

	c.evicts++
	c.opt.Metrics.Evict(reason)
	c.opt.Metrics.Size(c.len, c.size)
	if cb := c.opt.OnEvict; cb != nil {
		cb(e.surface, reason)
	}
}

// invalidate marks the blocks touched by dirty as unlit.
func (c *Cache[P]) invalidate(id policy.Slot, dirty lightmap.Dirty) {
	e := &c.slots[id]
	t := dirtyTexels(dirty, e.geom)
	if t.Empty() {
		return
	}
	for by := t.Min.Y >> e.subShift; by <= (t.Max.Y-1)>>e.subShift; by++ {
		for bx := t.Min.X >> e.subShift; bx <= (t.Max.X-1)>>e.subShift; bx++ {
			e.clearValid(by*e.subW + bx)
		}
	}
}

// relightInvalid lights every unlit block of slot id.
func (c *Cache[P]) relightInvalid(id policy.Slot, s Surface) {
	e := &c.slots[id]
	switch e.nValid {
	case e.blocks():
		return
	case 0:
		// Whole surface in one kernel run.
		if c.run(id, s, image.Rect(0, 0, e.geom.Width, e.geom.Height)) {
			for i := 0; i < e.blocks(); i++ {
				e.setValid(i)
			}
		}
		return
	}
	for i := 0; i < e.blocks(); i++ {
		if !e.isValid(i) {
			c.relightBlock(id, s, i)
		}
	}
}

// relightBlock lights sub-texture block b of slot id.
func (c *Cache[P]) relightBlock(id policy.Slot, s Surface, b int) {
	e := &c.slots[id]
	side := 1 << e.subShift
	x, y := (b%e.subW)*side, (b/e.subW)*side
	if c.run(id, s, image.Rect(x, y, x+side, y+side)) {
		e.setValid(b)
	}
}

// run executes the kernel over texel rectangle r of slot id.
func (c *Cache[P]) run(id policy.Slot, s Surface, r image.Rectangle) bool {
	bitsR, bitsG, bitsB := c.packer.Bits()
	fd, ok := newFillDesc(s, c.opt.Manager, bitsR, bitsG, bitsB)
	if !ok {
		return false
	}
	n := relight(&fd, c.packer, c.pixels(id), r)
	c.relights++
	c.cells += uint64(n)
	c.opt.Metrics.Relight(n)
	return true
}

// buffer returns the whole allocation of slot id.
func (c *Cache[P]) buffer(id policy.Slot) []P {
	e := &c.slots[id]
	off := e.block.Off / c.bpp
	return c.arena[off : off+e.texels]
}

// pixels returns the lit area of slot id (margins excluded).
func (c *Cache[P]) pixels(id policy.Slot) []P {
	e := &c.slots[id]
	m := e.geom.Width * c.opt.Margin
	return c.buffer(id)[m : m+e.geom.Width*e.geom.Height]
}

func (c *Cache[P]) lit(id policy.Slot) Lit[P] {
	e := &c.slots[id]
	return Lit[P]{
		Pix:    c.pixels(id),
		Buf:    c.buffer(id),
		Width:  e.geom.Width,
		Height: e.geom.Height,
		Margin: c.opt.Margin,
	}
}
