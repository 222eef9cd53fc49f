package texmgr

import (
	"image/color"
)

// Palette is an 8-bit display palette plus its inverse colormap: a 5:5:5
// RGB cube mapping every 15-bit colour to the nearest palette index.
type Palette struct {
	colors  color.Palette
	inverse [1 << 15]uint8
}

// NewPalette builds the inverse colormap for p (at most 256 colours).
// Distance is squared RGB distance; ties go to the lower index.
func NewPalette(p color.Palette) *Palette {
	if len(p) == 0 || len(p) > 256 {
		panic("texmgr: palette must have 1..256 colours")
	}
	rgb := make([][3]int, len(p))
	for i, c := range p {
		r, g, b, _ := c.RGBA()
		rgb[i] = [3]int{int(r >> 8), int(g >> 8), int(b >> 8)}
	}

	pal := &Palette{colors: p}
	for i := range pal.inverse {
		// Centre of the 5-bit bucket.
		r := (i>>10)&31<<3 | 4
		g := (i>>5)&31<<3 | 4
		b := i&31<<3 | 4
		best, bestD := 0, 1<<30
		for j, c := range rgb {
			dr, dg, db := r-c[0], g-c[1], b-c[2]
			if d := dr*dr + dg*dg + db*db; d < bestD {
				best, bestD = j, d
			}
		}
		pal.inverse[i] = uint8(best)
	}
	return pal
}

// Index returns the palette index closest to (r, g, b).
func (p *Palette) Index(r, g, b uint8) uint8 {
	return p.inverse[int(r>>3)<<10|int(g>>3)<<5|int(b>>3)]
}

// Colors returns the palette colours.
func (p *Palette) Colors() color.Palette { return p.colors }

// Palette332 returns the 256-colour 3-3-2 palette.
func Palette332() color.Palette {
	p := make(color.Palette, 256)
	for i := range p {
		r := i >> 5 & 7
		g := i >> 2 & 7
		b := i & 3
		p[i] = color.RGBA{R: uint8(r * 255 / 7), G: uint8(g * 255 / 7), B: uint8(b * 255 / 3), A: 255}
	}
	return p
}
