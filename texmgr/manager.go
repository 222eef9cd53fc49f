// Package texmgr is the texture-manager side of the software renderer: the
// global lighting flags, the lookup tables the relight kernel uses, the
// 8-bit palette with its inverse colormap, and base-texture preparation.
package texmgr

import (
	"image/color"
)

// NormalLight is the lightmap level that leaves a texel unchanged.
// Levels above it brighten the texture (clipped at 255).
const NormalLight = 128

// Mode selects how lightmap channels are applied.
type Mode int

const (
	// TrueRGB lights each channel with its own lightmap plane.
	TrueRGB Mode = iota
	// NoColor treats the R plane as white light for all three channels.
	NoColor
)

// String returns the flag name used by the bench command.
func (m Mode) String() string {
	switch m {
	case NoColor:
		return "nocolor"
	default:
		return "rgb"
	}
}

// scaleLUT[l][c] = min(255, c*l/NormalLight). 64 KiB, built once.
var scaleLUT [256][256]uint8

func init() {
	for l := 0; l < 256; l++ {
		for c := 0; c < 256; c++ {
			v := c * l >> 7
			if v > 255 {
				v = 255
			}
			scaleLUT[l][c] = uint8(v)
		}
	}
}

// Scale returns channel value c lit by light level l.
func Scale(l, c uint8) uint8 { return scaleLUT[l][c] }

// ScaleRow returns the LUT row for light level l: row[c] == Scale(l, c).
func ScaleRow(l uint8) *[256]uint8 { return &scaleLUT[l] }

// Manager carries the global lighting state shared by every cache.
// The cache reads it on every call, so flags may be toggled between frames.
type Manager struct {
	// Mode selects colored or white lighting.
	Mode Mode
	// Intermediate24 lights 16-bit output at 8 bits per channel and packs at
	// the very end. Without it base texels are first truncated to the
	// output channel depth.
	Intermediate24 bool
	// ShowGrid paints lightmap cell borders with GridColor (debug).
	ShowGrid bool
	// LightmapOnly outputs the light level itself instead of the lit texel (debug).
	LightmapOnly bool
	// GridColor is the debug grid colour.
	GridColor color.RGBA

	pal *Palette
}

// NewManager returns a manager in TrueRGB mode. pal may be nil when no
// 8-bit cache is used; Palette then falls back to a 3-3-2 palette.
func NewManager(pal *Palette) *Manager {
	return &Manager{
		Mode:           TrueRGB,
		Intermediate24: true,
		GridColor:      color.RGBA{R: 255, G: 0, B: 255, A: 255},
		pal:            pal,
	}
}

// Palette returns the 8-bit palette, creating the default on first use.
func (m *Manager) Palette() *Palette {
	if m.pal == nil {
		m.pal = NewPalette(Palette332())
	}
	return m.pal
}
