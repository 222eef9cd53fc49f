package cache

import (
	"image"

	"github.com/IvanBrykalov/texcache/texmgr"
)

// relight lights the texels of r (texel coordinates, clipped to the
// surface) into out, which holds the surface's Width*Height texels.
// It returns the number of lightmap cells processed.
//
// Each lightmap cell spans S×S texels (S = 1<<mipShift) and is lit from its
// four corner samples 00, 10, 01, 11. For texel (x, y) inside the cell
//
//	L = l00*(S-x)*(S-y) + l10*x*(S-y) + l01*(S-x)*y + l11*x*y
//	c = min(255, base*L >> (7 + 2*mipShift))
//
// which is base*l/NormalLight with l the exact bilinear light level. Corner
// samples past the lightmap edge are clamped, base texels wrap.
func relight[P Pixel](fd *fillDesc, pk Packer[P], out []P, r image.Rectangle) int {
	if pk.BytesPerPixel() != sizeOf[P]() {
		return 0
	}
	r = r.Intersect(image.Rect(0, 0, fd.w, fd.h))
	if r.Empty() || len(out) < fd.w*fd.h {
		return 0
	}

	cells := fd.cellRect(r)
	n := 0
	for lv := cells.Min.Y; lv < cells.Max.Y; lv++ {
		for lu := cells.Min.X; lu < cells.Max.X; lu++ {
			lightCell(fd, pk, out, lu, lv, r)
			n++
		}
	}
	return n
}

// corners holds the four corner samples of one cell for one channel.
type corners struct{ c00, c10, c01, c11 int }

func (c corners) flat() bool { return c.c00 == c.c10 && c.c00 == c.c01 && c.c00 == c.c11 }

// lightCell lights the texels of cell (lu, lv) that fall inside clip.
func lightCell[P Pixel](fd *fillDesc, pk Packer[P], out []P, lu, lv int, clip image.Rectangle) {
	side := 1 << fd.mipShift
	x0, y0 := lu<<fd.mipShift, lv<<fd.mipShift
	span := image.Rect(x0, y0, x0+side, y0+side).Intersect(clip)
	if span.Empty() {
		return
	}

	u0, u1 := clampIndex(lu, fd.lw), clampIndex(lu+1, fd.lw)
	v0, v1 := clampIndex(lv, fd.lh), clampIndex(lv+1, fd.lh)
	i00, i10 := v0*fd.lw+u0, v0*fd.lw+u1
	i01, i11 := v1*fd.lw+u0, v1*fd.lw+u1

	cr := corners{int(fd.lr[i00]), int(fd.lr[i10]), int(fd.lr[i01]), int(fd.lr[i11])}
	cg := corners{int(fd.lg[i00]), int(fd.lg[i10]), int(fd.lg[i01]), int(fd.lg[i11])}
	cb := corners{int(fd.lb[i00]), int(fd.lb[i10]), int(fd.lb[i01]), int(fd.lb[i11])}

	if cr.flat() && cg.flat() && cb.flat() {
		lightFlat(fd, pk, out, x0, y0, span, uint8(cr.c00), uint8(cg.c00), uint8(cb.c00))
	} else {
		lightBilinear(fd, pk, out, x0, y0, span, cr, cg, cb)
	}

	if fd.showGrid {
		paintGrid(fd, pk, out, x0, y0, span)
	}
}

// lightFlat is the constant-light fast path: one LUT row per channel and no
// interpolation. Its output equals lightBilinear's for equal corners.
func lightFlat[P Pixel](fd *fillDesc, pk Packer[P], out []P, x0, y0 int, span image.Rectangle, lr, lg, lb uint8) {
	if fd.lightmapOnly {
		px := pk.Pack(lr, lg, lb)
		for y := span.Min.Y; y < span.Max.Y; y++ {
			row := out[y*fd.w : y*fd.w+fd.w]
			for x := span.Min.X; x < span.Max.X; x++ {
				row[x] = px
			}
		}
		return
	}

	rowR, rowG, rowB := texmgr.ScaleRow(lr), texmgr.ScaleRow(lg), texmgr.ScaleRow(lb)
	for y := span.Min.Y; y < span.Max.Y; y++ {
		trow := ((fd.originV + y) & fd.andH) * fd.texStride
		row := out[y*fd.w : y*fd.w+fd.w]
		for x := span.Min.X; x < span.Max.X; x++ {
			t := trow + ((fd.originU+x)&fd.andW)*4
			row[x] = pk.Pack(
				rowR[fd.tex[t+0]&fd.qr],
				rowG[fd.tex[t+1]&fd.qg],
				rowB[fd.tex[t+2]&fd.qb],
			)
		}
	}
}

// lightBilinear is the general path: per-texel bilinear light per channel.
func lightBilinear[P Pixel](fd *fillDesc, pk Packer[P], out []P, x0, y0 int, span image.Rectangle, cr, cg, cb corners) {
	side := 1 << fd.mipShift
	shift := 2 * fd.mipShift
	for y := span.Min.Y; y < span.Max.Y; y++ {
		fy := y - y0
		// Left and right edges of the cell at this row, scaled by S.
		lR, rR := cr.c00*(side-fy)+cr.c01*fy, cr.c10*(side-fy)+cr.c11*fy
		lG, rG := cg.c00*(side-fy)+cg.c01*fy, cg.c10*(side-fy)+cg.c11*fy
		lB, rB := cb.c00*(side-fy)+cb.c01*fy, cb.c10*(side-fy)+cb.c11*fy

		trow := ((fd.originV + y) & fd.andH) * fd.texStride
		row := out[y*fd.w : y*fd.w+fd.w]
		for x := span.Min.X; x < span.Max.X; x++ {
			fx := x - x0
			// Light scaled by S*S.
			LR := lR*(side-fx) + rR*fx
			LG := lG*(side-fx) + rG*fx
			LB := lB*(side-fx) + rB*fx

			if fd.lightmapOnly {
				row[x] = pk.Pack(uint8(LR>>shift), uint8(LG>>shift), uint8(LB>>shift))
				continue
			}
			t := trow + ((fd.originU+x)&fd.andW)*4
			row[x] = pk.Pack(
				scale(int(fd.tex[t+0]&fd.qr), LR, shift),
				scale(int(fd.tex[t+1]&fd.qg), LG, shift),
				scale(int(fd.tex[t+2]&fd.qb), LB, shift),
			)
		}
	}
}

// scale applies light L (scaled by 1<<shift) to channel c.
func scale(c, l, shift int) uint8 {
	v := c * l >> (7 + shift)
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// paintGrid overwrites the top row and left column of a cell (debug).
func paintGrid[P Pixel](fd *fillDesc, pk Packer[P], out []P, x0, y0 int, span image.Rectangle) {
	px := pk.Pack(fd.grid[0], fd.grid[1], fd.grid[2])
	if span.Min.Y == y0 {
		row := out[y0*fd.w : y0*fd.w+fd.w]
		for x := span.Min.X; x < span.Max.X; x++ {
			row[x] = px
		}
	}
	if span.Min.X == x0 {
		for y := span.Min.Y; y < span.Max.Y; y++ {
			out[y*fd.w+x0] = px
		}
	}
}

func clampIndex(i, n int) int {
	if i >= n {
		return n - 1
	}
	if i < 0 {
		return 0
	}
	return i
}
