// Package cache keeps lit surface textures for a software rasterizer: base
// texture texels modulated by a bilinearly filtered lightmap, packed into
// 8-bit palette, 16-bit or 32-bit output texels.
//
// Design
//
//   - Storage: lit buffers live in one fixed arena carved by pool.Heap.
//     Entries are slots addressed by index; each surface holds a Handle to
//     its slot. The arena never grows: a miss evicts from the LRU tail until
//     the new buffer fits.
//
//   - Ordering: an intrusive MRU↔LRU list of slot indices. Eviction policy is
//     pluggable via the policy package; LRU is the default, 2Q resists a
//     one-pass sweep over many surfaces.
//
//   - Relighting: the kernel works one lightmap cell at a time. Cells whose
//     four corners carry the same light take a lookup-table path; the rest
//     interpolate per texel. Both paths produce identical texels.
//
//   - Dirty tracking: callers pass a lightmap.Dirty naming the samples that
//     changed. A buffer is split into sub-texture blocks; only blocks touched
//     by dirty samples are relit, and UseSubTexture lights a single block.
//
//   - Metrics: Options.Metrics receives Hit/Miss/Evict/Relight/Size signals.
//     By default NoopMetrics is used; metrics/prom exports them to Prometheus.
//
// Basic usage
//
//	tex, _ := texmgr.NewTexture(img)
//	s := cache.NewPolyTexture(tex, 64, 64, 4)
//	c := cache.New32(cache.Options{CacheSize: 1 << 20})
//	if lit, ok := c.UseTexture(s, s.Light.TakeDirty()); ok {
//	    _ = lit.At(0, 0)
//	}
//
// Using 2Q
//
//	c := cache.New16(cache.Options{
//	    CacheSize: 1 << 20,
//	    Policy:    twoq.New(64, 128),
//	}, cache.Format565)
//
// # Thread-safety
//
// A Cache is driven by one rasterizer and is not safe for concurrent use.
// Independent caches may run on separate goroutines.
package cache
