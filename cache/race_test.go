package cache

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/texcache/lightmap"
	"github.com/IvanBrykalov/texcache/texmgr"
)

// One cache per view, all views sharing the base textures and the manager.
// Should pass under `-race`: shared state is read-only during lighting.
func TestRace_IndependentViews(t *testing.T) {
	m := texmgr.NewManager(nil)
	tex := texmgr.Solid(64, 64, 120, 80, 40)

	views := 2 * runtime.GOMAXPROCS(0)
	deadline := time.Now().Add(500 * time.Millisecond)

	g, ctx := errgroup.WithContext(context.Background())
	for v := 0; v < views; v++ {
		v := v
		g.Go(func() error {
			r := rand.New(rand.NewSource(int64(v) * 9973))
			c := New32(Options{CacheSize: 4 * 64 * 64, Manager: m})

			surfs := make([]*PolyTexture, 16)
			for i := range surfs {
				surfs[i] = NewPolyTexture(tex, 64, 64, 4)
				surfs[i].Light.Fill(texmgr.NormalLight, texmgr.NormalLight, texmgr.NormalLight)
			}

			for time.Now().Before(deadline) && ctx.Err() == nil {
				s := surfs[r.Intn(len(surfs))]
				switch r.Intn(10) {
				case 0: // ~10% relight a sample
					s.Light.Set(r.Intn(s.Light.Width()), r.Intn(s.Light.Height()), uint8(r.Intn(256)), 128, 128)
					c.UseTexture(s, s.Light.TakeDirty())
				case 1: // ~10% sub-texture
					c.UseSubTexture(s, r.Intn(64), r.Intn(64), s.Light.TakeDirty())
				default:
					lit, ok := c.UseTexture(s, s.Light.TakeDirty())
					if !ok {
						return fmt.Errorf("view %d: UseTexture failed", v)
					}
					if len(lit.Pix) != 64*64 {
						return fmt.Errorf("view %d: lit len %d", v, len(lit.Pix))
					}
				}
				if c.Bytes() > int64(c.Stats().Capacity) {
					return fmt.Errorf("view %d: %d bytes over capacity", v, c.Bytes())
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}

// Lightmap dirty state must round-trip through a relight: after TakeDirty
// the next call sees a clean lightmap.
func TestRace_TakeDirtyClears(t *testing.T) {
	t.Parallel()

	c := New32(Options{CacheSize: 1024})
	s := solidSurface(8, 8, 3, 1, 1, 1)
	s.Light.Set(1, 1, 0, 0, 0)
	c.UseTexture(s, s.Light.TakeDirty())
	runs := c.Stats().Relights

	if d := s.Light.TakeDirty(); d != lightmap.Clean {
		t.Fatalf("dirty state must be consumed, got %v", d.Rect())
	}
	c.UseTexture(s, s.Light.TakeDirty())
	if c.Stats().Relights != runs {
		t.Fatal("clean lightmap must not relight")
	}
}
