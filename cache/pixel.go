package cache

import (
	"unsafe"

	"github.com/IvanBrykalov/texcache/texmgr"
)

// Pixel is the output texel type: 8-bit palette index, 16-bit packed RGB or
// 32-bit XRGB.
type Pixel interface {
	~uint8 | ~uint16 | ~uint32
}

// Packer turns a lit 8-bit-per-channel colour into an output texel.
type Packer[P Pixel] interface {
	Pack(r, g, b uint8) P
	// BytesPerPixel must equal the size of P; a mismatched packer makes the
	// kernel a no-op.
	BytesPerPixel() int
	// Bits returns the channel depths of the output format.
	Bits() (r, g, b int)
}

// PalettePacker maps colours to 8-bit palette indices through the
// palette's inverse colormap.
type PalettePacker struct{ Pal *texmgr.Palette }

func (p PalettePacker) Pack(r, g, b uint8) uint8 { return p.Pal.Index(r, g, b) }
func (PalettePacker) BytesPerPixel() int         { return 1 }
func (PalettePacker) Bits() (r, g, b int)        { return 5, 5, 5 }

// RGB565Packer packs 5-6-5 16-bit texels.
type RGB565Packer struct{}

func (RGB565Packer) Pack(r, g, b uint8) uint16 {
	return uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
}
func (RGB565Packer) BytesPerPixel() int  { return 2 }
func (RGB565Packer) Bits() (r, g, b int) { return 5, 6, 5 }

// RGB555Packer packs 5-5-5 16-bit texels (top bit clear).
type RGB555Packer struct{}

func (RGB555Packer) Pack(r, g, b uint8) uint16 {
	return uint16(r>>3)<<10 | uint16(g>>3)<<5 | uint16(b>>3)
}
func (RGB555Packer) BytesPerPixel() int  { return 2 }
func (RGB555Packer) Bits() (r, g, b int) { return 5, 5, 5 }

// XRGB8888Packer writes 0x00RRGGBB texels.
type XRGB8888Packer struct{}

func (XRGB8888Packer) Pack(r, g, b uint8) uint32 {
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}
func (XRGB8888Packer) BytesPerPixel() int  { return 4 }
func (XRGB8888Packer) Bits() (r, g, b int) { return 8, 8, 8 }

// Format16 selects the 16-bit layout.
type Format16 int

const (
	Format565 Format16 = iota
	Format555
)

type (
	// Cache8 lights into 8-bit palette indices.
	Cache8 = Cache[uint8]
	// Cache16 lights into 16-bit 5-6-5 or 5-5-5 texels.
	Cache16 = Cache[uint16]
	// Cache32 lights into 32-bit XRGB texels.
	Cache32 = Cache[uint32]
)

// New8 returns a paletted cache using the manager's palette.
func New8(opt Options) *Cache8 {
	opt = withDefaults(opt)
	return New[uint8](PalettePacker{Pal: opt.Manager.Palette()}, opt)
}

// New16 returns a 16-bit cache in the given layout.
func New16(opt Options, f Format16) *Cache16 {
	if f == Format555 {
		return New[uint16](RGB555Packer{}, opt)
	}
	return New[uint16](RGB565Packer{}, opt)
}

// New32 returns a 32-bit cache.
func New32(opt Options) *Cache32 {
	return New[uint32](XRGB8888Packer{}, opt)
}

// sizeOf returns the size of P in bytes.
func sizeOf[P Pixel]() int {
	var z P
	return int(unsafe.Sizeof(z))
}
