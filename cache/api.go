package cache

import (
	"io"

	"github.com/IvanBrykalov/texcache/lightmap"
	"github.com/IvanBrykalov/texcache/texmgr"
)

// TextureCache is the contract the rasterizer's polygon-draw path uses.
// It is implemented by *Cache[P] for every pixel type.
//
// A TextureCache is single-threaded: every call runs to completion before
// returning and must not overlap with another call on the same cache.
type TextureCache[P Pixel] interface {
	// UseTexture returns the fully lit buffer for s, lighting it if needed.
	// dirty names the lightmap cells that changed since the last call for s.
	// It returns false when s has no lightmap or cannot fit in the pool.
	UseTexture(s Surface, dirty lightmap.Dirty) (Lit[P], bool)

	// UseSubTexture is UseTexture restricted to the sub-texture block that
	// contains texel (u, v). It does not change the LRU order of a resident entry.
	UseSubTexture(s Surface, u, v int, dirty lightmap.Dirty) (Lit[P], bool)

	// InitTexture attaches a cache entry to s without lighting anything.
	InitTexture(s Surface)

	// Release drops the entry of s; its handle becomes unset.
	Release(s Surface)

	// SetCacheSize recreates the pool; every entry is evicted.
	SetCacheSize(texels int)

	// Clear evicts every entry.
	Clear()

	// Dump writes a one-line summary of the cache contents.
	Dump(w io.Writer) error

	// Stats returns counters and occupancy.
	Stats() Stats
}

// Geometry describes a surface's lit texture in texture space.
type Geometry struct {
	// Width and Height of the lit texture, in texels.
	Width, Height int
	// OriginU and OriginV place lit texel (0,0) in the base texture;
	// addresses wrap with the texture's masks.
	OriginU, OriginV int
	// MipShift is log2 of the texels covered by one lightmap cell side.
	MipShift int
}

// Handle is the cache entry reference stored by a surface.
// The zero value means "no entry yet".
type Handle struct {
	idx int32 // slot+1
}

// Valid reports whether the handle refers to an entry.
func (h Handle) Valid() bool { return h.idx != 0 }

// Surface is the polygon-texture collaborator: everything the cache needs to
// know about one lit polygon. The surface owns the entry's lifetime (through
// its Handle); the cache owns only the lit buffer and its LRU position.
//
// A Surface belongs to at most one cache, and implementations are expected
// to be pointer types.
type Surface interface {
	Geometry() Geometry
	Texture() *texmgr.Texture
	// Lightmap returns nil for unlit surfaces.
	Lightmap() *lightmap.Lightmap
	CacheHandle() *Handle
}

// PolyTexture is a plain Surface implementation.
type PolyTexture struct {
	Geom  Geometry
	Tex   *texmgr.Texture
	Light *lightmap.Lightmap

	handle Handle
}

// NewPolyTexture returns a w×h surface over tex with a fresh lightmap sized
// for the mip shift.
func NewPolyTexture(tex *texmgr.Texture, w, h, mipShift int) *PolyTexture {
	lw, lh := lightmap.SizeFor(w, h, mipShift)
	return &PolyTexture{
		Geom:  Geometry{Width: w, Height: h, MipShift: mipShift},
		Tex:   tex,
		Light: lightmap.New(lw, lh),
	}
}

func (p *PolyTexture) Geometry() Geometry           { return p.Geom }
func (p *PolyTexture) Texture() *texmgr.Texture     { return p.Tex }
func (p *PolyTexture) Lightmap() *lightmap.Lightmap { return p.Light }
func (p *PolyTexture) CacheHandle() *Handle         { return &p.handle }

// Lit is a ready-to-sample buffer. Its slices alias the cache's pool: they
// stay valid until the next call that may evict the entry.
type Lit[P Pixel] struct {
	// Pix holds Width*Height texels, row-major, margins excluded.
	Pix []P
	// Buf is the whole allocation: Margin rows, Pix, Margin rows.
	Buf           []P
	Width, Height int
	Margin        int
}

// At returns the texel at (x, y).
func (l Lit[P]) At(x, y int) P { return l.Pix[y*l.Width+x] }

// Stats is a snapshot of the cache.
type Stats struct {
	Entries   int
	Bytes     int64
	Capacity  int
	FreeSpans int
	Slots     int

	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Relights   uint64 // kernel runs
	RelitCells uint64
}

// MeanBytes returns the average buffer size of resident entries.
func (s Stats) MeanBytes() float64 {
	if s.Entries == 0 {
		return 0
	}
	return float64(s.Bytes) / float64(s.Entries)
}
