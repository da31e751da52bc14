package arena

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/hupe1980/membench/internal/conv"
	"github.com/hupe1980/membench/internal/hugepage"
	"github.com/hupe1980/membench/internal/mem"
)

// Kind distinguishes the arenas of an environment.
type Kind uint8

const (
	// Small serves aligned and misaligned pointer requests.
	Small Kind = iota
	// Large serves shuffled regions.
	Large
)

// String returns the arena kind name.
func (k Kind) String() string {
	switch k {
	case Small:
		return "small"
	case Large:
		return "large"
	default:
		return "unknown"
	}
}

const (
	// DefaultSmallSize is the default capacity of the small arena (100 MiB).
	DefaultSmallSize = 100 * 1024 * 1024
	// DefaultLargeSize is the default capacity of the large arena (200 MiB).
	DefaultLargeSize = 200 * 1024 * 1024
	// MaxAlignment is the largest alignment Aligned accepts.
	MaxAlignment = hugepage.Size
)

var (
	// ErrInvalidAlignment is returned when an alignment is not a positive power of two.
	ErrInvalidAlignment = errors.New("arena: alignment must be a positive power of two")
	// ErrAlignmentTooLarge is returned when an alignment exceeds MaxAlignment.
	ErrAlignmentTooLarge = errors.New("arena: alignment exceeds huge page size")
	// ErrInvalidSize is returned for negative sizes or offsets.
	ErrInvalidSize = errors.New("arena: invalid size")
	// ErrTooLarge is returned when a request does not fit the arena capacity.
	ErrTooLarge = errors.New("arena: request exceeds arena capacity")
	// ErrOutOfBounds is returned when a misaligned pointer leaves the mapped window.
	ErrOutOfBounds = errors.New("arena: pointer outside mapped window")
)

// Allocator creates the backing block of an arena.
type Allocator func(size int) (*hugepage.Block, error)

// InitHook is called once, right after the arena tried to map its block.
type InitHook func(stats Stats, err error)

// Option is a configuration option for Lazy.
type Option func(*Lazy)

// WithAllocator replaces hugepage.Allocate.
func WithAllocator(alloc Allocator) Option {
	return func(l *Lazy) {
		if alloc != nil {
			l.alloc = alloc
		}
	}
}

// WithInitHook registers a callback for the one-time initialisation.
func WithInitHook(hook InitHook) Option {
	return func(l *Lazy) {
		l.onInit = hook
	}
}

// Stats tracks arena usage.
type Stats struct {
	Kind            Kind
	Capacity        int
	Initialized     bool
	HugePageAdvised bool
	AdviceErr       error // why the huge page hint was refused, if it was
	InitDuration    time.Duration
	Requests        uint64 // Historical: successful requests
	Failures        uint64 // Historical: rejected requests
}

type atomicStats struct {
	Requests atomic.Uint64
	Failures atomic.Uint64
}

// Lazy is a huge-page-backed block created on first use and kept for the
// lifetime of the process.
type Lazy struct {
	kind     Kind
	capacity int
	alloc    Allocator
	onInit   InitHook

	once        sync.Once
	initialized atomic.Bool
	block       *hugepage.Block
	err         error
	initDur     time.Duration

	stats atomicStats
}

// New returns an arena of the given capacity. No memory is mapped until the
// first request.
func New(kind Kind, capacity int, opts ...Option) *Lazy {
	l := &Lazy{
		kind:     kind,
		capacity: capacity,
		alloc:    hugepage.Allocate,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Kind returns the arena kind.
func (l *Lazy) Kind() Kind {
	return l.kind
}

// Capacity returns the arena capacity in bytes.
func (l *Lazy) Capacity() int {
	return l.capacity
}

// Initialized reports whether the one-time mapping has happened.
func (l *Lazy) Initialized() bool {
	return l.initialized.Load()
}

// Block returns the backing block, mapping it on the first call. A failed
// mapping is remembered and returned on every later call.
func (l *Lazy) Block() (*hugepage.Block, error) {
	l.once.Do(l.init)
	return l.block, l.err
}

func (l *Lazy) init() {
	start := time.Now()
	b, err := l.alloc(l.capacity)
	switch {
	case err != nil:
	case b == nil:
		err = fmt.Errorf("%w: allocator returned no block", hugepage.ErrMapFailed)
	case b.Size() < l.capacity:
		err = fmt.Errorf("%w: block has %d bytes, want %d", ErrTooLarge, b.Size(), l.capacity)
	}
	if err != nil {
		b = nil
	}
	l.block, l.err = b, err
	l.initDur = time.Since(start)
	l.initialized.Store(true)

	if l.onInit != nil {
		l.onInit(l.Stats(), err)
	}
}

// Aligned returns the first address in the arena that is a multiple of
// alignment and has size bytes of room behind it.
func (l *Lazy) Aligned(alignment, size int) (unsafe.Pointer, error) {
	p, _, err := l.aligned(alignment, size)
	if err != nil {
		l.stats.Failures.Add(1)
		return nil, err
	}
	l.stats.Requests.Add(1)
	return p, nil
}

// Misaligned returns Aligned(alignment, size) moved by offset bytes, which
// may be negative. The n bytes at the result must stay inside the block's
// mapped window.
func (l *Lazy) Misaligned(alignment, size, offset int) (unsafe.Pointer, error) {
	p, b, err := l.aligned(alignment, size)
	if err == nil {
		var addr uintptr
		addr, err = conv.AddOffset(uintptr(p), offset)
		if err != nil {
			err = fmt.Errorf("%w: %w", ErrOutOfBounds, err)
		} else if !b.Contains(addr, size) {
			err = fmt.Errorf("%w: offset %d with size %d", ErrOutOfBounds, offset, size)
		}
	}
	if err != nil {
		l.stats.Failures.Add(1)
		return nil, err
	}
	l.stats.Requests.Add(1)
	return unsafe.Add(p, offset), nil //nolint:gosec // checked against the mapped window
}

func (l *Lazy) aligned(alignment, size int) (unsafe.Pointer, *hugepage.Block, error) {
	if size < 0 {
		return nil, nil, fmt.Errorf("%w: size %d", ErrInvalidSize, size)
	}
	if size > l.capacity {
		return nil, nil, fmt.Errorf("%w: size %d, capacity %d", ErrTooLarge, size, l.capacity)
	}
	if !mem.IsPow2(alignment) {
		return nil, nil, fmt.Errorf("%w: %d", ErrInvalidAlignment, alignment)
	}
	if alignment > MaxAlignment {
		return nil, nil, fmt.Errorf("%w: %d > %d", ErrAlignmentTooLarge, alignment, MaxAlignment)
	}

	b, err := l.Block()
	if err != nil {
		return nil, nil, err
	}

	pad, err := mem.AlignOffset(b.Base(), b.Size(), alignment, size)
	if err != nil {
		if errors.Is(err, mem.ErrInsufficientSpace) {
			return nil, nil, fmt.Errorf("%w: %w", ErrTooLarge, err)
		}
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidAlignment, err)
	}
	data := b.Bytes()
	return unsafe.Add(unsafe.Pointer(&data[0]), pad), b, nil //nolint:gosec // pad+size <= len(data)
}

// Slice returns size bytes starting offset bytes into the arena.
func (l *Lazy) Slice(offset, size int) ([]byte, error) {
	var err error
	switch {
	case offset < 0 || size < 0:
		err = fmt.Errorf("%w: offset %d size %d", ErrInvalidSize, offset, size)
	case size > l.capacity || offset > l.capacity-size:
		err = fmt.Errorf("%w: offset %d + size %d > capacity %d", ErrTooLarge, offset, size, l.capacity)
	}
	if err != nil {
		l.stats.Failures.Add(1)
		return nil, err
	}

	b, err := l.Block()
	if err != nil {
		l.stats.Failures.Add(1)
		return nil, err
	}
	l.stats.Requests.Add(1)
	return b.Bytes()[offset : offset+size : offset+size], nil
}

// Stats returns the current arena statistics.
func (l *Lazy) Stats() Stats {
	s := Stats{
		Kind:     l.kind,
		Capacity: l.capacity,
		Requests: l.stats.Requests.Load(),
		Failures: l.stats.Failures.Load(),
	}
	if l.initialized.Load() {
		s.Initialized = true
		s.InitDuration = l.initDur
		if l.block != nil {
			s.HugePageAdvised = l.block.HugePageAdvised()
			s.AdviceErr = l.block.AdviceErr()
		}
	}
	return s
}

func (l *Lazy) String() string {
	s := l.Stats()
	return fmt.Sprintf(
		"Arena{kind: %s, capacity: %.2f MB, initialized: %v, hugepages: %v, requests: %d, failures: %d}",
		s.Kind,
		float64(s.Capacity)/(1024*1024),
		s.Initialized,
		s.HugePageAdvised,
		s.Requests,
		s.Failures,
	)
}
