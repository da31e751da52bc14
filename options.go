package membench

import (
	"unsafe"

	"github.com/hupe1980/membench/internal/arena"
)

// CacheController flushes memory out of the cache hierarchy.
//
// The default controller uses CLFLUSH and MFENCE on amd64 and is a no-op
// elsewhere. Set MEMBENCH_CACHECTL=generic to force the no-op controller.
type CacheController interface {
	// EvictRange flushes the lines covering n bytes at p, stride bytes apart.
	EvictRange(p unsafe.Pointer, n, stride int)
	// Fence orders the flushes before later memory accesses.
	Fence()
}

type options struct {
	smallSize        int
	largeSize        int
	logger           *Logger
	metricsCollector MetricsCollector
	cache            CacheController
}

func defaultOptions() options {
	return options{
		smallSize:        arena.DefaultSmallSize,
		largeSize:        arena.DefaultLargeSize,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
}

// Option configures an Env.
type Option func(*options)

// WithSmallArenaSize sets the capacity of the arena serving AlignedPointer
// and MisalignedPointer. Non-positive values keep the default (100 MiB).
func WithSmallArenaSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.smallSize = n
		}
	}
}

// WithLargeArenaSize sets the capacity of the arena serving ShuffledRegion.
// Non-positive values keep the default (200 MiB).
func WithLargeArenaSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.largeSize = n
		}
	}
}

// WithLogger configures the logger. Pass nil to disable logging.
//
// Example:
//
//	env := membench.New(membench.WithLogger(membench.NewTextLogger(slog.LevelDebug)))
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &membench.BasicMetricsCollector{}
//	env := membench.New(membench.WithMetricsCollector(metrics))
//	// ... run benchmarks ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithCacheController replaces the controller that evicts freshly built
// regions. Nil selects the platform default.
func WithCacheController(c CacheController) Option {
	return func(o *options) {
		o.cache = c
	}
}

type regionOptions struct {
	seed   uint64
	chains int
}

// RegionOption configures a single ShuffledRegion call.
type RegionOption func(*regionOptions)

// WithSeed sets the shuffle seed. Zero selects the fixed default seed (123).
func WithSeed(seed uint64) RegionOption {
	return func(o *regionOptions) {
		o.seed = seed
	}
}

// WithChains sets how many of a slot's forward pointers are linked.
// Values are clamped to [1, chase.NextsPerLine]; zero links all of them.
func WithChains(n int) RegionOption {
	return func(o *regionOptions) {
		o.chains = n
	}
}
