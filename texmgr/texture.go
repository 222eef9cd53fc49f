package texmgr

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif" // register decoders for Decode
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"

	"github.com/IvanBrykalov/texcache/internal/util"
)

// ErrEmptyImage is returned for images with no pixels.
var ErrEmptyImage = errors.New("texmgr: empty image")

// Texture is a base texture ready for the relight kernel: RGBA pixels with
// power-of-two dimensions, so texel addresses wrap with a bit mask.
type Texture struct {
	img        *image.RGBA
	andW, andH int
	shiftW     int
}

// NewTexture converts img into a base texture. Images whose sides are not
// powers of two are resampled (bilinear) up to the next power of two.
func NewTexture(img image.Image) (*Texture, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, ErrEmptyImage
	}
	w := int(util.NextPow2(uint64(b.Dx())))
	h := int(util.NextPow2(uint64(b.Dy())))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if util.IsPowerOfTwo(uint64(b.Dx())) && util.IsPowerOfTwo(uint64(b.Dy())) {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	} else {
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	}
	return &Texture{
		img:    dst,
		andW:   w - 1,
		andH:   h - 1,
		shiftW: util.Log2(uint64(w)),
	}, nil
}

// Decode reads an image (PNG, JPEG, GIF, BMP or TIFF) and converts it with
// NewTexture.
func Decode(r io.Reader) (*Texture, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("texmgr: decode: %w", err)
	}
	t, err := NewTexture(img)
	if err != nil {
		return nil, fmt.Errorf("texmgr: %s texture: %w", format, err)
	}
	return t, nil
}

// Solid returns a w×h texture filled with one colour. w and h are rounded
// up to powers of two.
func Solid(w, h int, r, g, b uint8) *Texture {
	w = int(util.NextPow2(uint64(w)))
	h = int(util.NextPow2(uint64(h)))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = 255
	}
	return &Texture{img: img, andW: w - 1, andH: h - 1, shiftW: util.Log2(uint64(w))}
}

// Width returns the texture width in texels.
func (t *Texture) Width() int { return t.andW + 1 }

// Height returns the texture height in texels.
func (t *Texture) Height() int { return t.andH + 1 }

// Masks returns the wrap masks (width-1, height-1).
func (t *Texture) Masks() (andW, andH int) { return t.andW, t.andH }

// ShiftW returns log2(width).
func (t *Texture) ShiftW() int { return t.shiftW }

// Pix returns the RGBA bytes, 4 per texel, rows of Width()*4 bytes.
func (t *Texture) Pix() []uint8 { return t.img.Pix }

// Image returns the underlying RGBA image.
func (t *Texture) Image() *image.RGBA { return t.img }
