package texmgr

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"golang.org/x/image/bmp"
)

func TestScale(t *testing.T) {
	t.Parallel()

	if got := Scale(NormalLight, 200); got != 200 {
		t.Fatalf("normal light must leave texel unchanged, got %d", got)
	}
	if got := Scale(0, 200); got != 0 {
		t.Fatalf("zero light must be black, got %d", got)
	}
	if got := Scale(64, 200); got != 100 {
		t.Fatalf("half light on 200 want 100, got %d", got)
	}
	if got := Scale(255, 200); got != 255 {
		t.Fatalf("overbright must clip at 255, got %d", got)
	}
	row := ScaleRow(64)
	for c := 0; c < 256; c++ {
		if row[c] != Scale(64, uint8(c)) {
			t.Fatalf("ScaleRow disagrees with Scale at c=%d", c)
		}
	}
}

func TestPalette_IndexFindsExactColours(t *testing.T) {
	t.Parallel()

	p := NewPalette(color.Palette{
		color.RGBA{0, 0, 0, 255},
		color.RGBA{255, 0, 0, 255},
		color.RGBA{0, 255, 0, 255},
		color.RGBA{0, 0, 255, 255},
		color.RGBA{255, 255, 255, 255},
	})
	cases := []struct {
		r, g, b uint8
		want    uint8
	}{
		{0, 0, 0, 0},
		{250, 10, 10, 1},
		{5, 240, 5, 2},
		{0, 0, 200, 3},
		{230, 230, 230, 4},
	}
	for _, c := range cases {
		if got := p.Index(c.r, c.g, c.b); got != c.want {
			t.Fatalf("Index(%d,%d,%d) = %d want %d", c.r, c.g, c.b, got, c.want)
		}
	}
}

func TestPalette332(t *testing.T) {
	t.Parallel()

	pal := Palette332()
	if len(pal) != 256 {
		t.Fatalf("want 256 colours, got %d", len(pal))
	}
	if pal[255] != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("index 255 must be white, got %v", pal[255])
	}
	m := NewManager(nil)
	if got := m.Palette().Index(255, 255, 255); got != 255 {
		t.Fatalf("default manager palette must map white to 255, got %d", got)
	}
}

func TestManagerDefaults(t *testing.T) {
	t.Parallel()

	m := NewManager(nil)
	if m.Mode != TrueRGB || !m.Intermediate24 || m.ShowGrid || m.LightmapOnly {
		t.Fatalf("unexpected defaults: %+v", m)
	}
	if TrueRGB.String() != "rgb" || NoColor.String() != "nocolor" {
		t.Fatal("mode names changed")
	}
}

func TestNewTexture_PowerOfTwoKeepsPixels(t *testing.T) {
	t.Parallel()

	src := image.NewRGBA(image.Rect(0, 0, 4, 2))
	src.Set(3, 1, color.RGBA{1, 2, 3, 255})
	tex, err := NewTexture(src)
	if err != nil {
		t.Fatal(err)
	}
	if tex.Width() != 4 || tex.Height() != 2 || tex.ShiftW() != 2 {
		t.Fatalf("size %dx%d shift %d", tex.Width(), tex.Height(), tex.ShiftW())
	}
	if aw, ah := tex.Masks(); aw != 3 || ah != 1 {
		t.Fatalf("masks %d,%d", aw, ah)
	}
	i := (1*4 + 3) * 4
	if p := tex.Pix()[i : i+3]; p[0] != 1 || p[1] != 2 || p[2] != 3 {
		t.Fatalf("pixel copied wrong: %v", p)
	}
}

func TestNewTexture_ResamplesToPowerOfTwo(t *testing.T) {
	t.Parallel()

	src := image.NewRGBA(image.Rect(0, 0, 5, 3))
	for i := range src.Pix {
		src.Pix[i] = 90
	}
	tex, err := NewTexture(src)
	if err != nil {
		t.Fatal(err)
	}
	if tex.Width() != 8 || tex.Height() != 4 {
		t.Fatalf("want 8x4, got %dx%d", tex.Width(), tex.Height())
	}
	// A flat image stays flat after bilinear resampling.
	if p := tex.Pix()[0]; p != 90 {
		t.Fatalf("resampled value want 90, got %d", p)
	}
}

func TestNewTexture_Empty(t *testing.T) {
	t.Parallel()

	_, err := NewTexture(image.NewRGBA(image.Rectangle{}))
	if !errors.Is(err, ErrEmptyImage) {
		t.Fatalf("want ErrEmptyImage, got %v", err)
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src.Set(1, 1, color.RGBA{10, 20, 30, 255})

	var pngBuf, bmpBuf bytes.Buffer
	if err := png.Encode(&pngBuf, src); err != nil {
		t.Fatal(err)
	}
	if err := bmp.Encode(&bmpBuf, src); err != nil {
		t.Fatal(err)
	}
	for name, buf := range map[string]*bytes.Buffer{"png": &pngBuf, "bmp": &bmpBuf} {
		tex, err := Decode(buf)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		i := (1*2 + 1) * 4
		if p := tex.Pix()[i : i+3]; p[0] != 10 || p[1] != 20 || p[2] != 30 {
			t.Fatalf("%s: pixel %v", name, p)
		}
	}

	if _, err := Decode(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Fatal("garbage must fail to decode")
	}
}

func TestSolid(t *testing.T) {
	t.Parallel()

	tex := Solid(3, 4, 200, 100, 50)
	if tex.Width() != 4 || tex.Height() != 4 {
		t.Fatalf("Solid must round to powers of two, got %dx%d", tex.Width(), tex.Height())
	}
	if p := tex.Pix(); p[0] != 200 || p[1] != 100 || p[2] != 50 || p[3] != 255 {
		t.Fatalf("Solid pixel %v", p[:4])
	}
}
