package lightmap

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// Mapping places lightmap samples in world space: sample (x, y) sits at
// Origin + x*U + y*V. U and V span one lightmap cell each, and their cross
// product is the lit side of the polygon.
type Mapping struct {
	Origin mgl32.Vec3
	U, V   mgl32.Vec3
}

// Position returns the world position of sample (x, y).
func (m Mapping) Position(x, y int) mgl32.Vec3 {
	return m.Origin.Add(m.U.Mul(float32(x))).Add(m.V.Mul(float32(y)))
}

// Normal returns the unit normal of the lit side, or the zero vector for a
// degenerate mapping.
func (m Mapping) Normal() mgl32.Vec3 {
	n := m.U.Cross(m.V)
	if n.Len() == 0 {
		return mgl32.Vec3{}
	}
	return n.Normalize()
}

// PointLight is a dynamic omni light.
type PointLight struct {
	Pos    mgl32.Vec3
	Radius float32
	// Color is the per-channel tint in [0, 1].
	Color mgl32.Vec3
	// Level is the light added at distance zero, in lightmap units
	// (128 adds one unit of light).
	Level float32
}

// AddLight adds l's contribution to every sample it reaches and marks those
// samples dirty. Samples behind the polygon are not lit. The contribution
// falls off linearly with distance and with the cosine of the incidence angle.
// It returns the number of samples that changed.
func (lm *Lightmap) AddLight(l PointLight) int {
	if l.Radius <= 0 || l.Level <= 0 {
		return 0
	}
	lm.snapshot()

	n := lm.Mapping.Normal()
	changed := 0
	var touched image.Rectangle
	for y := 0; y < lm.h; y++ {
		for x := 0; x < lm.w; x++ {
			p := lm.Mapping.Position(x, y)
			toLight := l.Pos.Sub(p)
			dist := toLight.Len()
			if dist >= l.Radius {
				continue
			}
			cos := float32(1)
			if dist > 0 && n.Len() > 0 {
				cos = n.Dot(toLight) / dist
				if cos <= 0 {
					continue
				}
			}
			k := l.Level * (1 - dist/l.Radius) * cos
			i := y*lm.w + x
			dr := addClamp(&lm.r[i], k*l.Color[0])
			dg := addClamp(&lm.g[i], k*l.Color[1])
			db := addClamp(&lm.b[i], k*l.Color[2])
			if dr || dg || db {
				changed++
				touched = touched.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	if changed > 0 {
		lm.dynamic = true
		lm.MarkDirty(touched)
	}
	return changed
}

// ResetDynamic restores the static samples, marking dirty every sample that
// carried dynamic light.
func (lm *Lightmap) ResetDynamic() {
	if !lm.dynamic {
		return
	}
	var touched image.Rectangle
	for i := range lm.r {
		if lm.r[i] == lm.static[0][i] && lm.g[i] == lm.static[1][i] && lm.b[i] == lm.static[2][i] {
			continue
		}
		lm.r[i], lm.g[i], lm.b[i] = lm.static[0][i], lm.static[1][i], lm.static[2][i]
		x, y := i%lm.w, i/lm.w
		touched = touched.Union(image.Rect(x, y, x+1, y+1))
	}
	lm.dynamic = false
	lm.MarkDirty(touched)
}

// HasDynamic reports whether dynamic light is currently applied.
func (lm *Lightmap) HasDynamic() bool { return lm.dynamic }

// snapshot saves the static planes before the first dynamic change.
func (lm *Lightmap) snapshot() {
	if lm.static[0] != nil {
		return
	}
	lm.static[0] = append([]uint8(nil), lm.r...)
	lm.static[1] = append([]uint8(nil), lm.g...)
	lm.static[2] = append([]uint8(nil), lm.b...)
}

// addClamp adds v to *c, saturating at 255, and reports whether *c changed.
func addClamp(c *uint8, v float32) bool {
	if v < 1 {
		return false
	}
	s := int(*c) + int(v)
	if s > 255 {
		s = 255
	}
	if uint8(s) == *c {
		return false
	}
	*c = uint8(s)
	return true
}
