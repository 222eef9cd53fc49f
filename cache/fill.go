package cache

import (
	"image"

	"github.com/IvanBrykalov/texcache/lightmap"
	"github.com/IvanBrykalov/texcache/texmgr"
)

// fillDesc is everything one relight needs, gathered once per call so the
// kernel touches only plain slices and ints.
type fillDesc struct {
	// base texture
	tex        []uint8 // RGBA, 4 bytes per texel
	texStride  int     // bytes per row
	andW, andH int
	originU    int
	originV    int

	// lightmap planes, one byte per sample
	lr, lg, lb []uint8
	lw, lh     int
	mipShift   int

	// surface size in texels
	w, h int

	// lighting flags, copied from the manager
	mode         texmgr.Mode
	lightmapOnly bool
	showGrid     bool
	grid         [3]uint8
	// base channel masks applied before lighting (0xff keeps full precision)
	qr, qg, qb uint8
}

// newFillDesc snapshots the surface and manager for one relight.
// It reports false when there is nothing to light with.
func newFillDesc(s Surface, m *texmgr.Manager, bitsR, bitsG, bitsB int) (fillDesc, bool) {
	tex, lm := s.Texture(), s.Lightmap()
	if tex == nil || lm == nil {
		return fillDesc{}, false
	}
	g := s.Geometry()
	andW, andH := tex.Masks()
	r, gp, b := lm.Planes()
	fd := fillDesc{
		tex:          tex.Pix(),
		texStride:    tex.Width() * 4,
		andW:         andW,
		andH:         andH,
		originU:      g.OriginU,
		originV:      g.OriginV,
		lr:           r,
		lg:           gp,
		lb:           b,
		lw:           lm.Width(),
		lh:           lm.Height(),
		mipShift:     g.MipShift,
		w:            g.Width,
		h:            g.Height,
		mode:         m.Mode,
		lightmapOnly: m.LightmapOnly,
		showGrid:     m.ShowGrid,
		grid:         [3]uint8{m.GridColor.R, m.GridColor.G, m.GridColor.B},
		qr:           0xff,
		qg:           0xff,
		qb:           0xff,
	}
	if fd.mode == texmgr.NoColor {
		fd.lg, fd.lb = fd.lr, fd.lr
	}
	if !m.Intermediate24 {
		fd.qr, fd.qg, fd.qb = channelMask(bitsR), channelMask(bitsG), channelMask(bitsB)
	}
	return fd, true
}

// channelMask keeps the top bits of an 8-bit channel.
func channelMask(bits int) uint8 {
	if bits >= 8 || bits <= 0 {
		return 0xff
	}
	return uint8(0xff << (8 - bits))
}

// cellRect converts a texel rectangle into the lightmap cells that cover it.
func (fd *fillDesc) cellRect(r image.Rectangle) image.Rectangle {
	side := 1 << fd.mipShift
	return image.Rect(
		r.Min.X>>fd.mipShift,
		r.Min.Y>>fd.mipShift,
		(r.Max.X+side-1)>>fd.mipShift,
		(r.Max.Y+side-1)>>fd.mipShift,
	)
}

// dirtyTexels converts changed lightmap samples into the texels they
// influence: sample (x, y) is a corner of cells x-1..x and y-1..y.
func dirtyTexels(d lightmap.Dirty, g Geometry) image.Rectangle {
	if d.IsClean() {
		return image.Rectangle{}
	}
	r := d.Rect()
	// Clamp before shifting so "all" rectangles cannot overflow.
	maxX := (g.Width >> g.MipShift) + 2
	maxY := (g.Height >> g.MipShift) + 2
	r = r.Intersect(image.Rect(-1, -1, maxX, maxY))
	if r.Empty() {
		return image.Rectangle{}
	}
	t := image.Rect(
		(r.Min.X-1)<<g.MipShift,
		(r.Min.Y-1)<<g.MipShift,
		r.Max.X<<g.MipShift,
		r.Max.Y<<g.MipShift,
	)
	return t.Intersect(image.Rect(0, 0, g.Width, g.Height))
}
