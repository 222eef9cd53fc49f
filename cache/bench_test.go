package cache

import (
	"image"
	"math/rand"
	"testing"

	"github.com/IvanBrykalov/texcache/lightmap"
	"github.com/IvanBrykalov/texcache/texmgr"
)

// benchSurface returns a 128×128 surface with 16-texel cells. With flat set
// every sample carries the same light, so the kernel takes the LUT path.
func benchSurface(flat bool) *PolyTexture {
	img := image.NewRGBA(image.Rect(0, 0, 128, 128))
	r := rand.New(rand.NewSource(1))
	r.Read(img.Pix)
	tex, _ := texmgr.NewTexture(img)
	s := NewPolyTexture(tex, 128, 128, 4)
	s.Light.Fill(texmgr.NormalLight, texmgr.NormalLight, texmgr.NormalLight)
	if !flat {
		for y := 0; y < s.Light.Height(); y++ {
			for x := 0; x < s.Light.Width(); x++ {
				s.Light.Set(x, y, uint8(r.Intn(256)), uint8(r.Intn(256)), uint8(r.Intn(256)))
			}
		}
	}
	return s
}

// benchmarkRelight relights the whole surface on every iteration.
func benchmarkRelight[P Pixel](b *testing.B, c *Cache[P], flat bool) {
	s := benchSurface(flat)
	c.UseTexture(s, lightmap.Clean)

	b.ReportAllocs()
	b.SetBytes(128 * 128 * int64(sizeOf[P]()))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.UseTexture(s, lightmap.All())
	}
}

func BenchmarkRelight32_Flat(b *testing.B) {
	benchmarkRelight(b, New32(Options{CacheSize: 1 << 16}), true)
}

func BenchmarkRelight32_Bilinear(b *testing.B) {
	benchmarkRelight(b, New32(Options{CacheSize: 1 << 16}), false)
}

func BenchmarkRelight16_Bilinear(b *testing.B) {
	benchmarkRelight(b, New16(Options{CacheSize: 1 << 16}, Format565), false)
}

func BenchmarkRelight8_Bilinear(b *testing.B) {
	benchmarkRelight(b, New8(Options{CacheSize: 1 << 16}), false)
}

// BenchmarkUseTexture_Hit measures the clean-hit path: lookup and promote.
func BenchmarkUseTexture_Hit(b *testing.B) {
	c := New32(Options{CacheSize: 64 * 32 * 32})
	surfs := make([]*PolyTexture, 64)
	tex := texmgr.Solid(32, 32, 1, 2, 3)
	for i := range surfs {
		surfs[i] = NewPolyTexture(tex, 32, 32, 4)
		c.UseTexture(surfs[i], lightmap.Clean)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.UseTexture(surfs[i&63], lightmap.Clean)
	}
}

// BenchmarkUseTexture_Thrash cycles more surfaces than fit, so every call
// evicts and relights.
func BenchmarkUseTexture_Thrash(b *testing.B) {
	c := New32(Options{CacheSize: 8 * 32 * 32})
	surfs := make([]*PolyTexture, 16)
	tex := texmgr.Solid(32, 32, 1, 2, 3)
	for i := range surfs {
		surfs[i] = NewPolyTexture(tex, 32, 32, 4)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.UseTexture(surfs[i&15], lightmap.Clean)
	}
}
