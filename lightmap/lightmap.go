// Package lightmap holds the per-polygon light samples consumed by the
// texture cache.
//
// A lightmap is three byte planes (R, G, B), one byte per channel per
// sample. One sample sits on each corner of a lightmap cell; a cell covers
// 1<<mipShift base-texture texels in each direction, so a surface of W×H
// texels needs ((W-1)>>shift)+2 by ((H-1)>>shift)+2 samples.
//
// The lightmap keeps a static copy of its samples the first time dynamic
// light is added to it, so ResetDynamic can restore the precomputed state.
// Every change extends the dirty rectangle handed to the cache.
package lightmap

import (
	"image"
)

// Lightmap is a grid of RGB light samples.
// 128 (texmgr.NormalLight) is unit light; values above brighten the texture.
type Lightmap struct {
	w, h    int
	r, g, b []uint8

	// static copies of r, g, b; nil until the first dynamic light.
	static  [3][]uint8
	dynamic bool

	dirty image.Rectangle

	// Mapping places samples in world space for dynamic lights.
	Mapping Mapping
}

// New returns a w×h lightmap with every sample at zero (black).
// The whole lightmap starts dirty.
func New(w, h int) *Lightmap {
	if w <= 0 || h <= 0 {
		panic("lightmap: non-positive size")
	}
	n := w * h
	return &Lightmap{
		w:     w,
		h:     h,
		r:     make([]uint8, n),
		g:     make([]uint8, n),
		b:     make([]uint8, n),
		dirty: image.Rect(0, 0, w, h),
	}
}

// SizeFor returns the lightmap dimensions needed by a surface of w×h texels
// whose cells are 1<<mipShift texels wide.
func SizeFor(w, h, mipShift int) (lw, lh int) {
	return ((w-1)>>mipShift + 2), ((h-1)>>mipShift + 2)
}

// Width returns the number of samples per row.
func (lm *Lightmap) Width() int { return lm.w }

// Height returns the number of rows.
func (lm *Lightmap) Height() int { return lm.h }

// Bounds returns the valid sample rectangle.
func (lm *Lightmap) Bounds() image.Rectangle { return image.Rect(0, 0, lm.w, lm.h) }

// Planes returns the current R, G and B planes, row-major with stride Width.
// Callers must treat them as read-only.
func (lm *Lightmap) Planes() (r, g, b []uint8) { return lm.r, lm.g, lm.b }

// At returns the current sample at (x, y).
func (lm *Lightmap) At(x, y int) (r, g, b uint8) {
	i := y*lm.w + x
	return lm.r[i], lm.g[i], lm.b[i]
}

// Set writes a static sample. Any dynamic light on that sample is lost.
func (lm *Lightmap) Set(x, y int, r, g, b uint8) {
	if x < 0 || y < 0 || x >= lm.w || y >= lm.h {
		return
	}
	i := y*lm.w + x
	lm.r[i], lm.g[i], lm.b[i] = r, g, b
	if lm.static[0] != nil {
		lm.static[0][i], lm.static[1][i], lm.static[2][i] = r, g, b
	}
	lm.MarkDirty(image.Rect(x, y, x+1, y+1))
}

// Fill sets every sample to the same static value.
func (lm *Lightmap) Fill(r, g, b uint8) {
	for i := range lm.r {
		lm.r[i], lm.g[i], lm.b[i] = r, g, b
	}
	if lm.static[0] != nil {
		copy(lm.static[0], lm.r)
		copy(lm.static[1], lm.g)
		copy(lm.static[2], lm.b)
	}
	lm.MarkDirty(lm.Bounds())
}

// MarkDirty extends the dirty rectangle by r (clipped to the lightmap).
func (lm *Lightmap) MarkDirty(r image.Rectangle) {
	r = r.Intersect(lm.Bounds())
	if r.Empty() {
		return
	}
	if lm.dirty.Empty() {
		lm.dirty = r
		return
	}
	lm.dirty = lm.dirty.Union(r)
}

// Dirty returns the pending dirty state without clearing it.
func (lm *Lightmap) Dirty() Dirty { return DirtyRect(lm.dirty) }

// TakeDirty returns the pending dirty state and clears it.
func (lm *Lightmap) TakeDirty() Dirty {
	d := DirtyRect(lm.dirty)
	lm.dirty = image.Rectangle{}
	return d
}
