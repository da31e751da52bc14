package membench

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unsafe"

	"github.com/hupe1980/membench/chase"
	"github.com/hupe1980/membench/internal/arena"
	"github.com/hupe1980/membench/internal/region"
)

// LineSize is the cache line size the slot layout is built for.
const LineSize = chase.LineSize

// DefaultSeed is the shuffle seed used when WithSeed is not given.
const DefaultSeed = region.DefaultSeed

// Sentinel is the byte every slot holds before linking. Fields beyond the
// linked chains keep it.
const Sentinel = region.Sentinel

// Env owns a pair of process-lifetime arenas: a small one for aligned and
// misaligned pointers and a large one for shuffled regions. Neither is
// mapped until first used, and neither is ever unmapped.
//
// Pointer requests are safe for concurrent use. ShuffledRegion calls are
// serialized; every call overwrites the region returned by the previous one.
type Env struct {
	small   *arena.Lazy
	large   *arena.Lazy
	builder *region.Builder

	logger  *Logger
	metrics MetricsCollector
	cache   CacheController
	permute func(n int, seed uint64) []int

	mu sync.Mutex
}

// New returns an isolated environment with its own arenas.
func New(optFns ...Option) *Env {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}

	e := &Env{
		logger:  o.logger,
		metrics: o.metricsCollector,
		cache:   o.cache,
	}
	e.small = arena.New(arena.Small, o.smallSize, arena.WithInitHook(e.onArenaInit))
	e.large = arena.New(arena.Large, o.largeSize, arena.WithInitHook(e.onArenaInit))
	e.builder = region.NewBuilder(e.large)

	if err := checkLineSize(); err != nil {
		e.logger.Warn("cache line size mismatch; regions will not match hardware lines", "error", err)
	}
	return e
}

var defaultEnv = sync.OnceValue(func() *Env { return New() })

// Default returns the process-wide environment used by the package-level
// functions.
func Default() *Env {
	return defaultEnv()
}

func (e *Env) onArenaInit(s arena.Stats, err error) {
	e.metrics.RecordArenaInit(s.Kind.String(), s.Capacity, s.InitDuration, err)
	e.logger.WithArena(s.Kind.String()).LogArenaInit(context.Background(), s.Capacity, s.AdviceErr, s.InitDuration, err)
}

// AlignedPointer returns a pointer into the small arena that is a multiple
// of alignment and has size bytes of room behind it. alignment must be a
// power of two no larger than 2 MiB.
//
// Every call may return the same memory; the arena is shared.
func (e *Env) AlignedPointer(alignment, size int) (unsafe.Pointer, error) {
	p, err := e.small.Aligned(alignment, size)
	return e.pointerResult("aligned pointer", p, alignment, size, 0, err)
}

// MisalignedPointer returns AlignedPointer(alignment, size) moved by offset
// bytes. offset may be negative; the arena keeps a 2 MiB margin on each side.
func (e *Env) MisalignedPointer(alignment, size, offset int) (unsafe.Pointer, error) {
	p, err := e.small.Misaligned(alignment, size, offset)
	return e.pointerResult("misaligned pointer", p, alignment, size, offset, err)
}

func (e *Env) pointerResult(op string, p unsafe.Pointer, alignment, size, offset int, err error) (unsafe.Pointer, error) {
	err = e.translate(op, e.small, err)
	e.metrics.RecordPointerRequest(alignment, size, err)
	if err != nil {
		e.logger.WithSize(size).LogPointerRequest(context.Background(), alignment, offset, err)
		return nil, err
	}
	return p, nil
}

// ShuffledRegion builds a pointer-chasing region of size bytes starting
// offset bytes into the large arena. Following Nexts[0] from First visits
// every slot exactly once, in an order fixed by the seed, before returning
// to First. The region is evicted from the cache before it is returned.
//
// size must be a positive multiple of LineSize and offset a non-negative
// multiple of the pointer size. The previous region of this Env becomes
// stale.
//
// ShuffledRegion panics with *InvariantError if the built structure is not
// a single cycle.
func (e *Env) ShuffledRegion(size, offset int, optFns ...RegionOption) (*chase.Region, error) {
	var ro regionOptions
	for _, fn := range optFns {
		fn(&ro)
	}
	opts := region.Options{
		Seed:    ro.seed,
		Chains:  ro.chains,
		Permute: e.permute,
	}
	if e.cache != nil {
		opts.Cache = e.cache
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	r, err := e.build(size, offset, opts)
	d := time.Since(start)

	err = e.translate("shuffled region", e.large, err)
	e.metrics.RecordRegionBuild(size, d, err)
	seed := ro.seed
	if seed == 0 {
		seed = DefaultSeed
	}
	e.logger.LogRegionBuild(context.Background(), size, offset, seed, d, err)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (e *Env) build(size, offset int, opts region.Options) (r *chase.Region, err error) {
	defer func() {
		if v := recover(); v != nil {
			var ce *region.CycleError
			if verr, ok := v.(error); ok && errors.As(verr, &ce) {
				panic(&InvariantError{Op: "shuffled region", cause: ce})
			}
			panic(v)
		}
	}()
	return e.builder.Build(size, offset, opts)
}

func (e *Env) translate(op string, a *arena.Lazy, err error) error {
	return translateError(op, allocationError(a.Kind(), a.Capacity(), err))
}

// ArenaStats reports the state of one arena.
type ArenaStats struct {
	Kind            string
	Capacity        int
	Initialized     bool
	HugePageAdvised bool
	InitDuration    time.Duration
	Requests        uint64
	Failures        uint64
}

// Stats reports the state of both arenas. It does not map them.
func (e *Env) Stats() (small, large ArenaStats) {
	return arenaStats(e.small.Stats()), arenaStats(e.large.Stats())
}

func arenaStats(s arena.Stats) ArenaStats {
	return ArenaStats{
		Kind:            s.Kind.String(),
		Capacity:        s.Capacity,
		Initialized:     s.Initialized,
		HugePageAdvised: s.HugePageAdvised,
		InitDuration:    s.InitDuration,
		Requests:        s.Requests,
		Failures:        s.Failures,
	}
}

func (e *Env) String() string {
	return fmt.Sprintf("Env{small: %s, large: %s}", e.small, e.large)
}

// MustAlignedPointer is like AlignedPointer but panics on error.
func (e *Env) MustAlignedPointer(alignment, size int) unsafe.Pointer {
	p, err := e.AlignedPointer(alignment, size)
	if err != nil {
		panic(err)
	}
	return p
}

// MustMisalignedPointer is like MisalignedPointer but panics on error.
func (e *Env) MustMisalignedPointer(alignment, size, offset int) unsafe.Pointer {
	p, err := e.MisalignedPointer(alignment, size, offset)
	if err != nil {
		panic(err)
	}
	return p
}

// MustShuffledRegion is like ShuffledRegion but panics on error.
func (e *Env) MustShuffledRegion(size, offset int, optFns ...RegionOption) *chase.Region {
	r, err := e.ShuffledRegion(size, offset, optFns...)
	if err != nil {
		panic(err)
	}
	return r
}

// AlignedPointer calls Default().AlignedPointer.
func AlignedPointer(alignment, size int) (unsafe.Pointer, error) {
	return Default().AlignedPointer(alignment, size)
}

// MisalignedPointer calls Default().MisalignedPointer.
func MisalignedPointer(alignment, size, offset int) (unsafe.Pointer, error) {
	return Default().MisalignedPointer(alignment, size, offset)
}

// ShuffledRegion calls Default().ShuffledRegion.
func ShuffledRegion(size, offset int, optFns ...RegionOption) (*chase.Region, error) {
	return Default().ShuffledRegion(size, offset, optFns...)
}

// MustAlignedPointer calls Default().MustAlignedPointer.
func MustAlignedPointer(alignment, size int) unsafe.Pointer {
	return Default().MustAlignedPointer(alignment, size)
}

// MustMisalignedPointer calls Default().MustMisalignedPointer.
func MustMisalignedPointer(alignment, size, offset int) unsafe.Pointer {
	return Default().MustMisalignedPointer(alignment, size, offset)
}

// MustShuffledRegion calls Default().MustShuffledRegion.
func MustShuffledRegion(size, offset int, optFns ...RegionOption) *chase.Region {
	return Default().MustShuffledRegion(size, offset, optFns...)
}

// AlwaysZero returns 0 in a way the compiler cannot see through. Adding it
// to an address or index inside a timed loop keeps the load from being
// hoisted or folded.
//
//go:noinline
func AlwaysZero() int {
	return alwaysZero
}

var alwaysZero int
