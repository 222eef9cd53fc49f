// Command bench runs a synthetic fly-through against the texture cache and exposes optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/texcache/cache"
	"github.com/IvanBrykalov/texcache/lightmap"
	pmet "github.com/IvanBrykalov/texcache/metrics/prom"
	"github.com/IvanBrykalov/texcache/policy"
	"github.com/IvanBrykalov/texcache/policy/twoq"
	"github.com/IvanBrykalov/texcache/texmgr"
)

// config is the flag snapshot handed to every view.
type config struct {
	size     int
	depth    int
	format   cache.Format16
	policy   string
	surfaces int
	draws    int
	subPct   int
	zipfS    float64
	zipfV    float64
	seed     int64
}

// totals aggregates the per-view results.
type totals struct {
	frames, draws, failed atomic.Uint64
}

func main() {
	// ---- Flags ----
	var (
		size   = flag.Int("size", 1<<20, "cache size (texels)")
		depth  = flag.Int("depth", 32, "output depth: 8 | 16 | 32")
		f555   = flag.Bool("555", false, "16-bit output as 5-5-5 instead of 5-6-5")
		policy = flag.String("policy", "lru", "eviction policy: lru | 2q")
		views  = flag.Int("views", runtime.GOMAXPROCS(0), "independent views, one cache each")

		duration = flag.Duration("duration", 10*time.Second, "benchmark duration")
		surfaces = flag.Int("surfaces", 2_000, "surfaces in the level")
		draws    = flag.Int("draws", 300, "surfaces drawn per frame")
		subPct   = flag.Int("sub", 10, "percentage of draws that use a single sub-texture [0..100]")
		zipfS    = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (skew of surface visits)")
		zipfV    = flag.Float64("zipf_v", 1.0, "Zipf v")
		seed     = flag.Int64("seed", time.Now().UnixNano(), "random seed")

		mode    = flag.String("mode", "rgb", "lighting mode: rgb | nocolor")
		grid    = flag.Bool("grid", false, "paint lightmap cell borders")
		lmOnly  = flag.Bool("lmonly", false, "output light levels instead of lit texels")
		trunc   = flag.Bool("trunc", false, "truncate base texels to the output depth before lighting")
		texPath = flag.String("texture", "", "base texture image (png, jpeg, gif, bmp, tiff); empty = checkerboard")
		pngPath = flag.String("png", "", "write one lit surface to this PNG file and exit")

		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
		metricsAddr = flag.String("http", ":8080", "serve Prometheus metrics at addr; empty = disabled")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	lvl := slog.LevelInfo
	if *verbose {
		lvl = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))

	// ---- Texture manager ----
	m := texmgr.NewManager(nil)
	switch *mode {
	case "rgb":
		m.Mode = texmgr.TrueRGB
	case "nocolor":
		m.Mode = texmgr.NoColor
	default:
		log.Fatalf("unknown mode: %q (use rgb or nocolor)", *mode)
	}
	m.ShowGrid = *grid
	m.LightmapOnly = *lmOnly
	m.Intermediate24 = !*trunc

	tex, err := loadTexture(*texPath)
	if err != nil {
		log.Fatal(err)
	}

	if *pngPath != "" {
		if err := dumpPNG(*pngPath, tex, m); err != nil {
			log.Fatal(err)
		}
		logger.Info("wrote lit surface", "path", *pngPath)
		return
	}

	switch *depth {
	case 8, 16, 32:
	default:
		log.Fatalf("unknown depth: %d (use 8, 16 or 32)", *depth)
	}
	if *policy != "lru" && *policy != "2q" {
		log.Fatalf("unknown policy: %q (use lru or 2q)", *policy)
	}

	// ---- pprof server (on DefaultServeMux) ----
	if *pprofAddr != "" {
		go func() {
			logger.Info("pprof: serving", "addr", *pprofAddr)
			logger.Error("pprof server stopped", "err", http.ListenAndServe(*pprofAddr, nil))
		}()
	}

	// ---- Prometheus metrics (on DefaultServeMux) ----
	metrics := pmet.New(nil, "texcache", "bench", nil)
	if *metricsAddr != "" {
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			logger.Info("metrics: serving", "addr", *metricsAddr)
			logger.Error("metrics server stopped", "err", http.ListenAndServe(*metricsAddr, nil))
		}()
	}

	cfg := config{
		size:     *size,
		depth:    *depth,
		policy:   *policy,
		surfaces: max(*surfaces, 1),
		draws:    max(*draws, 1),
		subPct:   *subPct,
		zipfS:    *zipfS,
		zipfV:    *zipfV,
		seed:     *seed,
	}
	if *f555 {
		cfg.format = cache.Format555
	}
	viewsN := max(*views, 1)
	if cfg.depth == 8 {
		m.Palette() // build the shared palette before the views start
	}

	// ---- Views ----
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	var tot totals
	stats := make([]cache.Stats, viewsN)
	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	for v := 0; v < viewsN; v++ {
		v := v
		g.Go(func() error {
			opt := cache.Options{
				CacheSize: cfg.size,
				Policy:    newPolicy(cfg),
				Manager:   m,
				Metrics:   metrics,
				Logger:    logger.With("view", v),
			}
			var err error
			switch cfg.depth {
			case 8:
				stats[v], err = runView(ctx, cache.New8(opt), cfg, tex, v, &tot)
			case 16:
				stats[v], err = runView(ctx, cache.New16(opt, cfg.format), cfg, tex, v, &tot)
			default:
				stats[v], err = runView(ctx, cache.New32(opt), cfg, tex, v, &tot)
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
	elapsed := time.Since(start)

	// ---- Report ----
	var sum cache.Stats
	for _, st := range stats {
		sum.Entries += st.Entries
		sum.Bytes += st.Bytes
		sum.Hits += st.Hits
		sum.Misses += st.Misses
		sum.Evictions += st.Evictions
		sum.Relights += st.Relights
		sum.RelitCells += st.RelitCells
	}
	hitRate := 0.0
	if n := sum.Hits + sum.Misses; n > 0 {
		hitRate = float64(sum.Hits) / float64(n) * 100
	}
	frames := tot.frames.Load()

	fmt.Printf("policy=%s size=%d depth=%d views=%d surfaces=%d draws=%d dur=%v seed=%d\n",
		cfg.policy, cfg.size, cfg.depth, viewsN, cfg.surfaces, cfg.draws, elapsed, cfg.seed)
	fmt.Printf("frames=%d (%.1f fps/view)  draws=%d  failed=%d\n",
		frames, float64(frames)/elapsed.Seconds()/float64(viewsN), tot.draws.Load(), tot.failed.Load())
	fmt.Printf("hits=%d  misses=%d  hit-rate=%.2f%%  evictions=%d\n", sum.Hits, sum.Misses, hitRate, sum.Evictions)
	fmt.Printf("relights=%d  relit-cells=%d (%.0f cells/s)\n",
		sum.Relights, sum.RelitCells, float64(sum.RelitCells)/elapsed.Seconds())
	fmt.Printf("resident=%d entries, %d bytes\n", sum.Entries, sum.Bytes)
}

// newPolicy builds one policy per view; 2Q queues are sized from the
// expected number of resident surfaces.
func newPolicy(cfg config) policy.Policy {
	if cfg.policy != "2q" {
		return nil // LRU
	}
	resident := max(cfg.size/(64*64), 4)
	return twoq.New(resident/4, resident/2)
}

// runView drives one cache: every frame a light sweeps the level and a
// Zipf-skewed set of surfaces is drawn.
func runView[P cache.Pixel](ctx context.Context, c *cache.Cache[P], cfg config, tex *texmgr.Texture, view int, tot *totals) (cache.Stats, error) {
	r := rand.New(rand.NewSource(cfg.seed + int64(view)*9973))
	zipf := rand.NewZipf(r, cfg.zipfS, cfg.zipfV, uint64(cfg.surfaces-1))
	if zipf == nil {
		return cache.Stats{}, fmt.Errorf("view %d: invalid zipf parameters s=%v v=%v", view, cfg.zipfS, cfg.zipfV)
	}
	level := buildLevel(r, tex, cfg.surfaces)

	for frame := 0; ctx.Err() == nil; frame++ {
		// The light circles the level once every 240 frames.
		a := float64(frame) * 2 * math.Pi / 240
		light := lightmap.PointLight{
			Pos:    mgl32.Vec3{float32(math.Cos(a)) * 512, float32(math.Sin(a)) * 512, 48},
			Radius: 256,
			Color:  mgl32.Vec3{1, 0.8, 0.6},
			Level:  160,
		}

		for i := 0; i < cfg.draws; i++ {
			s := level[zipf.Uint64()]
			s.Light.ResetDynamic()
			s.Light.AddLight(light)

			var ok bool
			if r.Intn(100) < cfg.subPct {
				_, ok = c.UseSubTexture(s, r.Intn(s.Geom.Width), r.Intn(s.Geom.Height), s.Light.TakeDirty())
			} else {
				_, ok = c.UseTexture(s, s.Light.TakeDirty())
			}
			if !ok {
				tot.failed.Add(1)
			}
		}
		tot.draws.Add(uint64(cfg.draws))
		tot.frames.Add(1)
	}
	if err := c.Dump(os.Stdout); err != nil {
		return cache.Stats{}, err
	}
	return c.Stats(), nil
}

// buildLevel scatters n wall surfaces over a 2048×2048 floor plan, each with
// a baked lightmap gradient.
func buildLevel(r *rand.Rand, tex *texmgr.Texture, n int) []*cache.PolyTexture {
	sides := []int{16, 32, 64, 128}
	level := make([]*cache.PolyTexture, n)
	for i := range level {
		w, h := sides[r.Intn(len(sides))], sides[r.Intn(len(sides))]
		shift := 4
		if w <= 16 || h <= 16 {
			shift = 3
		}
		s := cache.NewPolyTexture(tex, w, h, shift)
		s.Geom.OriginU, s.Geom.OriginV = r.Intn(tex.Width()), r.Intn(tex.Height())

		cell := float32(int(1) << shift)
		s.Light.Mapping = lightmap.Mapping{
			Origin: mgl32.Vec3{float32(r.Intn(2048) - 1024), float32(r.Intn(2048) - 1024), 0},
			U:      mgl32.Vec3{cell, 0, 0},
			V:      mgl32.Vec3{0, cell, 0},
		}
		for y := 0; y < s.Light.Height(); y++ {
			for x := 0; x < s.Light.Width(); x++ {
				l := uint8(64 + (x+y)*8%128)
				s.Light.Set(x, y, l, l, l)
			}
		}
		level[i] = s
	}
	return level
}

// loadTexture decodes path, or builds a checkerboard when path is empty.
func loadTexture(path string) (*texmgr.Texture, error) {
	if path == "" {
		img := image.NewRGBA(image.Rect(0, 0, 64, 64))
		for y := 0; y < 64; y++ {
			for x := 0; x < 64; x++ {
				i := img.PixOffset(x, y)
				v := uint8(96)
				if (x/8+y/8)%2 == 0 {
					v = 200
				}
				img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = v, v/2+64, 255-v, 255
			}
		}
		return texmgr.NewTexture(img)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return texmgr.Decode(f)
}

// dumpPNG lights one 128×128 surface under a centred light and writes it.
func dumpPNG(path string, tex *texmgr.Texture, m *texmgr.Manager) error {
	c := cache.New32(cache.Options{CacheSize: 128 * 128, Manager: m})
	s := cache.NewPolyTexture(tex, 128, 128, 4)
	s.Light.Mapping = lightmap.Mapping{U: mgl32.Vec3{16, 0, 0}, V: mgl32.Vec3{0, 16, 0}}
	s.Light.Fill(64, 64, 64)
	s.Light.AddLight(lightmap.PointLight{
		Pos:    mgl32.Vec3{64, 64, 24},
		Radius: 96,
		Color:  mgl32.Vec3{1, 0.9, 0.7},
		Level:  192,
	})

	lit, ok := c.UseTexture(s, s.Light.TakeDirty())
	if !ok {
		return fmt.Errorf("surface did not fit the cache")
	}
	img := image.NewRGBA(image.Rect(0, 0, lit.Width, lit.Height))
	for y := 0; y < lit.Height; y++ {
		for x := 0; x < lit.Width; x++ {
			px := lit.At(x, y)
			i := img.PixOffset(x, y)
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = uint8(px>>16), uint8(px>>8), uint8(px), 255
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
