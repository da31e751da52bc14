package region

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"unsafe"

	"github.com/hupe1980/membench/chase"
	"github.com/hupe1980/membench/internal/arena"
	"github.com/hupe1980/membench/internal/cachectl"
	"github.com/hupe1980/membench/internal/hugepage"
	"github.com/hupe1980/membench/internal/mem"
)

const (
	// DefaultSeed is the fixed shuffle seed. A fixed seed keeps the visit
	// order, and so the results, identical across runs.
	DefaultSeed uint64 = 123

	// Sentinel is the byte every slot is filled with before linking.
	Sentinel byte = 0xFF

	// pcgStream is the second PCG seed word.
	pcgStream uint64 = 0x9e3779b97f4a7c15
)

var (
	// ErrInvalidSize is returned for non-positive sizes or negative offsets.
	ErrInvalidSize = errors.New("region: invalid size")
	// ErrSizeNotLineMultiple is returned when size is not a multiple of chase.LineSize.
	ErrSizeNotLineMultiple = errors.New("region: size is not a multiple of the cache line size")
	// ErrMisalignedOffset is returned when offset is not a multiple of the pointer size.
	ErrMisalignedOffset = errors.New("region: offset is not pointer aligned")
)

// CycleError reports a constructed cycle that does not cover every slot.
// It signals a construction bug and is raised as a panic.
type CycleError struct {
	Lines  int
	Length int
	Closed bool
}

func (e *CycleError) Error() string {
	if !e.Closed {
		return fmt.Sprintf("region: cycle over %d slots did not close", e.Lines)
	}
	return fmt.Sprintf("region: cycle length %d, want %d", e.Length, e.Lines)
}

// Evictor flushes a built region out of the cache hierarchy.
// cachectl.Controller implements it.
type Evictor interface {
	EvictRange(p unsafe.Pointer, n, stride int)
	Fence()
}

// Options configures a Builder.
type Options struct {
	// Seed is the shuffle seed. Zero selects DefaultSeed.
	Seed uint64
	// Chains is the number of leading Nexts fields linked per slot.
	// Zero selects chase.NextsPerLine.
	Chains int
	// Cache evicts the built region. Nil selects cachectl.Default().
	Cache Evictor
	// Permute returns the slot visit order. Nil selects Permutation.
	Permute func(n int, seed uint64) []int
}

// Builder builds shuffled regions in one arena.
//
// A Builder is not safe for concurrent use: every region shares the arena.
type Builder struct {
	arena *arena.Lazy
}

// NewBuilder returns a builder over a.
func NewBuilder(a *arena.Lazy) *Builder {
	return &Builder{arena: a}
}

// Arena returns the arena the builder carves regions from.
func (b *Builder) Arena() *arena.Lazy {
	return b.arena
}

// Validate checks size and offset without touching the arena.
func (b *Builder) Validate(size, offset int) error {
	switch {
	case size <= 0 || offset < 0:
		return fmt.Errorf("%w: size %d offset %d", ErrInvalidSize, size, offset)
	case size%chase.LineSize != 0:
		return fmt.Errorf("%w: %d %% %d = %d", ErrSizeNotLineMultiple, size, chase.LineSize, size%chase.LineSize)
	case offset%int(unsafe.Sizeof(uintptr(0))) != 0:
		return fmt.Errorf("%w: %d", ErrMisalignedOffset, offset)
	case size > b.arena.Capacity() || offset > b.arena.Capacity()-size:
		return fmt.Errorf("%w: size %d + offset %d > capacity %d", arena.ErrTooLarge, size, offset, b.arena.Capacity())
	}
	return nil
}

// Build constructs a shuffled region of size bytes starting offset bytes
// into the arena. It panics with *CycleError if the constructed cycle does
// not cover every slot.
func (b *Builder) Build(size, offset int, opts Options) (*chase.Region, error) {
	if err := b.Validate(size, offset); err != nil {
		return nil, err
	}

	buf, err := b.arena.Slice(offset, size)
	if err != nil {
		return nil, err
	}

	seed := opts.Seed
	if seed == 0 {
		seed = DefaultSeed
	}
	chains := opts.Chains
	if chains == 0 {
		chains = chase.NextsPerLine
	}
	chains = chase.ClampChains(chains)
	var cache Evictor = cachectl.Default()
	if opts.Cache != nil {
		cache = opts.Cache
	}
	permute := Permutation
	if opts.Permute != nil {
		permute = opts.Permute
	}

	lines := size / chase.LineSize

	hugepage.Fill(buf, Sentinel)

	r := &chase.Region{
		Size:   size,
		First:  (*chase.Line)(unsafe.Pointer(&buf[0])), //nolint:gosec // off-heap slot array
		Lines:  lines,
		Offset: offset,
		Seed:   seed,
		Chains: chains,
	}

	perm := permute(lines, seed)
	p := r.Line(perm[0])
	for _, idx := range perm[1:] {
		next := r.Line(idx)
		p.SetNexts(next, chains)
		p = next
	}
	p.SetNexts(r.Line(perm[0]), chains)

	if n, ok := chase.CycleLengthMax(r.First, lines); !ok || n != lines {
		panic(&CycleError{Lines: lines, Length: n, Closed: ok})
	}

	start, n := lineSpan(unsafe.Pointer(r.First), size) //nolint:gosec // off-heap slot array
	cache.EvictRange(start, n, chase.LineSize)
	cache.Fence()

	return r, nil
}

// lineSpan returns the line-aligned start and length covering [p, p+n).
func lineSpan(p unsafe.Pointer, n int) (unsafe.Pointer, int) {
	addr := uintptr(p)
	if mem.IsAligned(addr, chase.LineSize) {
		return p, n
	}
	lead := int(addr & (chase.LineSize - 1))
	return unsafe.Add(p, -lead), int(mem.AlignUp(uintptr(lead+n), chase.LineSize))
}

// Permutation returns the slot visit order for n slots under seed.
func Permutation(n int, seed uint64) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	rng := rand.New(rand.NewPCG(seed, pcgStream)) //nolint:gosec // deterministic layout, not security
	rng.Shuffle(n, func(i, j int) {
		perm[i], perm[j] = perm[j], perm[i]
	})
	return perm
}
