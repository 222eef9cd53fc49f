package cache

import (
	"log/slog"

	"github.com/IvanBrykalov/texcache/policy"
	"github.com/IvanBrykalov/texcache/texmgr"
)

// EvictReason explains why a lit buffer was released.
type EvictReason int

const (
	// EvictCapacity: removed from the LRU tail to make room in the pool.
	EvictCapacity EvictReason = iota
	// EvictPolicy: removed because the eviction policy proposed it (e.g., 2Q probation).
	EvictPolicy
	// EvictClear: removed by Clear or SetCacheSize.
	EvictClear
	// EvictRelease: the surface was released by its owner.
	EvictRelease
	// EvictResize: the surface geometry changed, so the buffer no longer fits it.
	EvictResize
)

// String returns a stable lowercase name, used as a metrics label.
func (r EvictReason) String() string {
	switch r {
	case EvictPolicy:
		return "policy"
	case EvictClear:
		return "clear"
	case EvictRelease:
		return "release"
	case EvictResize:
		return "resize"
	default:
		return "capacity"
	}
}

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	// Relight reports one kernel run over the given number of lightmap cells.
	Relight(cells int)
	Size(entries int, bytes int64)
}

// Options configures the cache. Zero values are safe except CacheSize;
// defaults are applied in New:
//   - Margin <= 0          => no margin rows
//   - SubTextureSize <= 0  => DefaultSubTextureSize
//   - nil Policy           => LRU
//   - nil Manager          => texmgr.NewManager(nil)
//   - nil Metrics          => NoopMetrics
//   - nil Logger           => discard
type Options struct {
	// CacheSize is the pool size in texels; the arena holds
	// CacheSize*bytes-per-pixel bytes, rounded up to pool.Granularity.
	CacheSize int

	// Margin is the number of blank rows kept above and below every lit
	// buffer, for rasterizers that read past the last row while filtering.
	Margin int

	// SubTextureSize is the side, in texels, of the blocks UseSubTexture
	// lights independently. Rounded up to a power of two and never smaller
	// than one lightmap cell.
	SubTextureSize int

	// Policy is a pluggable eviction policy (LRU/2Q); nil => LRU.
	Policy policy.Policy

	// Manager supplies the lighting flags and lookup tables. It is read on
	// every call, so flag changes apply to the next relight.
	Manager *texmgr.Manager

	// OnEvict is called after a buffer is released; keep it lightweight.
	OnEvict func(s Surface, reason EvictReason)
	Metrics Metrics

	// Logger receives debug and warning records; nil discards them.
	Logger *slog.Logger
}

// DefaultSubTextureSize is the sub-texture block side used when
// Options.SubTextureSize is zero.
const DefaultSubTextureSize = 64
