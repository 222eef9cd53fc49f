package lightmap

import (
	"image"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestSizeFor(t *testing.T) {
	t.Parallel()

	// 16 texels at shift 2: 4 cells, 5 corner samples.
	if w, h := SizeFor(16, 8, 2); w != 5 || h != 3 {
		t.Fatalf("SizeFor(16,8,2) = %d,%d want 5,3", w, h)
	}
	// A partial last cell still needs its far corner.
	if w, _ := SizeFor(17, 1, 2); w != 6 {
		t.Fatalf("SizeFor(17,..,2) width = %d want 6", w)
	}
}

func TestLightmap_NewIsDirty(t *testing.T) {
	t.Parallel()

	lm := New(4, 3)
	d := lm.TakeDirty()
	if d.Rect() != image.Rect(0, 0, 4, 3) {
		t.Fatalf("fresh lightmap must be fully dirty, got %v", d.Rect())
	}
	if !lm.TakeDirty().IsClean() {
		t.Fatal("TakeDirty must clear the state")
	}
}

func TestLightmap_SetMarksCell(t *testing.T) {
	t.Parallel()

	lm := New(8, 8)
	lm.TakeDirty()

	lm.Set(2, 3, 10, 20, 30)
	lm.Set(5, 1, 1, 1, 1)
	if r, g, b := lm.At(2, 3); r != 10 || g != 20 || b != 30 {
		t.Fatalf("At(2,3) = %d,%d,%d", r, g, b)
	}
	if got := lm.Dirty().Rect(); got != image.Rect(2, 1, 6, 4) {
		t.Fatalf("dirty rect want (2,1)-(6,4), got %v", got)
	}

	lm.Set(-1, 0, 1, 1, 1) // out of range: ignored
	if got := lm.Dirty().Rect(); got != image.Rect(2, 1, 6, 4) {
		t.Fatalf("out-of-range Set must not grow dirty rect, got %v", got)
	}
}

func TestDirty_UnionAndOverlaps(t *testing.T) {
	t.Parallel()

	if !Clean.IsClean() || Clean.Overlaps(image.Rect(0, 0, 10, 10)) {
		t.Fatal("Clean must be clean and overlap nothing")
	}
	a := DirtyRect(image.Rect(0, 0, 2, 2))
	b := DirtyRect(image.Rect(4, 4, 5, 5))
	u := a.Union(b)
	if u.Rect() != image.Rect(0, 0, 5, 5) {
		t.Fatalf("union = %v", u.Rect())
	}
	if Clean.Union(a) != a || a.Union(Clean) != a {
		t.Fatal("union with Clean must be identity")
	}
	if !a.Overlaps(image.Rect(1, 1, 3, 3)) || a.Overlaps(image.Rect(2, 2, 3, 3)) {
		t.Fatal("overlap uses half-open rectangles")
	}
	if !All().Overlaps(image.Rect(1000, 1000, 1001, 1001)) {
		t.Fatal("All must overlap everything")
	}
}

func flatMapping() Mapping {
	// Samples one world unit apart on the z=0 plane, lit side +z.
	return Mapping{U: mgl32.Vec3{1, 0, 0}, V: mgl32.Vec3{0, 1, 0}}
}

func TestLightmap_AddLightAndReset(t *testing.T) {
	t.Parallel()

	lm := New(9, 9)
	lm.Fill(64, 64, 64)
	lm.Mapping = flatMapping()
	lm.TakeDirty()

	n := lm.AddLight(PointLight{
		Pos:    mgl32.Vec3{4, 4, 1},
		Radius: 3,
		Color:  mgl32.Vec3{1, 0.5, 0},
		Level:  128,
	})
	if n == 0 {
		t.Fatal("light within radius must change samples")
	}
	if !lm.HasDynamic() {
		t.Fatal("HasDynamic must be true after AddLight")
	}
	r, g, b := lm.At(4, 4)
	if r <= 64 || g <= 64 || b != 64 {
		t.Fatalf("centre sample want brighter r,g and unchanged b, got %d,%d,%d", r, g, b)
	}
	if r, _, _ := lm.At(0, 0); r != 64 {
		t.Fatalf("sample outside radius must be untouched, got %d", r)
	}
	d := lm.TakeDirty()
	if !d.Overlaps(image.Rect(4, 4, 5, 5)) || d.Overlaps(image.Rect(0, 0, 1, 1)) {
		t.Fatalf("dirty rect must cover the lit area only, got %v", d.Rect())
	}

	lm.ResetDynamic()
	if r, g, b := lm.At(4, 4); r != 64 || g != 64 || b != 64 {
		t.Fatalf("reset must restore static light, got %d,%d,%d", r, g, b)
	}
	if lm.HasDynamic() {
		t.Fatal("HasDynamic must be false after reset")
	}
	if d := lm.TakeDirty(); !d.Overlaps(image.Rect(4, 4, 5, 5)) {
		t.Fatal("reset must mark restored samples dirty")
	}
}

func TestLightmap_LightBehindPolygon(t *testing.T) {
	t.Parallel()

	lm := New(5, 5)
	lm.Mapping = flatMapping()
	lm.TakeDirty()

	n := lm.AddLight(PointLight{Pos: mgl32.Vec3{2, 2, -1}, Radius: 10, Color: mgl32.Vec3{1, 1, 1}, Level: 200})
	if n != 0 || !lm.TakeDirty().IsClean() {
		t.Fatal("a light behind the lit side must not change anything")
	}
}

func TestLightmap_AddLightSaturates(t *testing.T) {
	t.Parallel()

	lm := New(1, 1)
	lm.Fill(250, 250, 250)
	lm.Mapping = flatMapping()
	lm.AddLight(PointLight{Pos: mgl32.Vec3{0, 0, 0.5}, Radius: 5, Color: mgl32.Vec3{1, 1, 1}, Level: 255})
	if r, _, _ := lm.At(0, 0); r != 255 {
		t.Fatalf("sample must saturate at 255, got %d", r)
	}
}

func TestLightmap_SetAfterDynamicUpdatesStatic(t *testing.T) {
	t.Parallel()

	lm := New(3, 3)
	lm.Mapping = flatMapping()
	lm.AddLight(PointLight{Pos: mgl32.Vec3{1, 1, 1}, Radius: 4, Color: mgl32.Vec3{1, 1, 1}, Level: 100})
	lm.Set(0, 0, 7, 7, 7)
	lm.ResetDynamic()
	if r, _, _ := lm.At(0, 0); r != 7 {
		t.Fatalf("static write during dynamic light must survive reset, got %d", r)
	}
}
