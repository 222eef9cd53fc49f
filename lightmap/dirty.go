package lightmap

import (
	"image"
	"math"
)

// Dirty describes which lightmap cells changed since a surface was last lit.
// The zero value is Clean.
//
// Dirty is a plain value: the lightmap produces it (TakeDirty) and the cache
// consumes it, so the relight decision depends only on what is passed in.
type Dirty struct {
	rect image.Rectangle // lightmap cells; empty means clean
}

// Clean is the state of a lightmap that did not change.
var Clean = Dirty{}

// DirtyRect returns the state for a changed rectangle of cells.
func DirtyRect(r image.Rectangle) Dirty { return Dirty{rect: r.Canon()} }

// All marks every cell of any lightmap as changed.
func All() Dirty {
	return Dirty{rect: image.Rect(0, 0, math.MaxInt32, math.MaxInt32)}
}

// IsClean reports whether nothing changed.
func (d Dirty) IsClean() bool { return d.rect.Empty() }

// Rect returns the changed cells (empty when clean).
func (d Dirty) Rect() image.Rectangle { return d.rect }

// Union merges two states.
func (d Dirty) Union(o Dirty) Dirty {
	switch {
	case d.IsClean():
		return o
	case o.IsClean():
		return d
	}
	return Dirty{rect: d.rect.Union(o.rect)}
}

// Overlaps reports whether any changed cell lies inside r.
func (d Dirty) Overlaps(r image.Rectangle) bool {
	return !d.IsClean() && d.rect.Overlaps(r)
}
