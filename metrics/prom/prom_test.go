package prom

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/IvanBrykalov/texcache/cache"
	"github.com/IvanBrykalov/texcache/lightmap"
	"github.com/IvanBrykalov/texcache/texmgr"
)

func TestAdapter_CountsCacheTraffic(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg, "texcache", "test", prometheus.Labels{"view": "0"})

	c := cache.New32(cache.Options{CacheSize: 2 * 8 * 8, Metrics: m})
	tex := texmgr.Solid(8, 8, 10, 20, 30)
	a := cache.NewPolyTexture(tex, 8, 8, 3)
	b := cache.NewPolyTexture(tex, 8, 8, 3)
	d := cache.NewPolyTexture(tex, 8, 8, 3)

	c.UseTexture(a, lightmap.Clean) // miss
	c.UseTexture(a, lightmap.Clean) // hit
	c.UseTexture(b, lightmap.Clean) // miss
	c.UseTexture(d, lightmap.Clean) // miss, evicts a
	c.Release(b)

	if got := testutil.ToFloat64(m.hits); got != 1 {
		t.Fatalf("hits want 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.misses); got != 3 {
		t.Fatalf("misses want 3, got %v", got)
	}
	if got := testutil.ToFloat64(m.evicts.WithLabelValues("capacity")); got != 1 {
		t.Fatalf("capacity evictions want 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.evicts.WithLabelValues("release")); got != 1 {
		t.Fatalf("release evictions want 1, got %v", got)
	}
	// Three 8×8 surfaces of one cell each.
	if got := testutil.ToFloat64(m.relitCells); got != 3 {
		t.Fatalf("relit cells want 3, got %v", got)
	}
	if got := testutil.ToFloat64(m.sizeEnt); got != 1 {
		t.Fatalf("entries want 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.sizeBytes); got != 8*8*4 {
		t.Fatalf("bytes want 256, got %v", got)
	}

	if n := testutil.CollectAndCount(reg); n != 8 {
		t.Fatalf("want 8 series, got %d", n)
	}
}
