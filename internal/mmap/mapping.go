package mmap

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// Mapping is a private, read-write, zero-filled anonymous mapping.
type Mapping struct {
	buf      []byte
	released atomic.Bool
	release  func([]byte) error
}

// MapAnon maps size bytes of anonymous memory. The start is page aligned.
func MapAnon(size int) (*Mapping, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	buf, release, err := osMapAnon(size)
	if err != nil {
		return nil, err
	}
	return &Mapping{buf: buf, release: release}, nil
}

// Close returns the memory to the operating system. Later calls are no-ops.
func (m *Mapping) Close() error {
	if m.released.Swap(true) || m.release == nil {
		return nil
	}
	return m.release(m.buf)
}

// Bytes returns the whole mapping, or nil after Close.
func (m *Mapping) Bytes() []byte {
	if m.released.Load() {
		return nil
	}
	return m.buf
}

// Size returns the mapped length in bytes.
func (m *Mapping) Size() int {
	return len(m.buf)
}

// Addr returns the start address of the mapping, or 0 after Close.
func (m *Mapping) Addr() uintptr {
	if m.released.Load() {
		return 0
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(m.buf))) //nolint:gosec // off-heap address
}

// Advise applies pattern to the whole mapping.
func (m *Mapping) Advise(pattern AccessPattern) error {
	return m.advise(0, len(m.buf), pattern)
}

func (m *Mapping) advise(off, n int, pattern AccessPattern) error {
	if m.released.Load() {
		return ErrClosed
	}
	return osAdvise(m.buf[off:off+n], pattern)
}

// Span is a window of a Mapping. The Mapping keeps ownership; a Span is
// invalid once the Mapping is closed.
type Span struct {
	m   *Mapping
	off int
	n   int
}

// Span returns the n bytes starting off bytes into the mapping.
func (m *Mapping) Span(off, n int) (Span, error) {
	switch {
	case m.released.Load():
		return Span{}, ErrClosed
	case off < 0 || n < 0 || off > len(m.buf)-n:
		return Span{}, fmt.Errorf("%w: [%d, %d+%d) of %d", ErrOutOfBounds, off, off, n, len(m.buf))
	}
	return Span{m: m, off: off, n: n}, nil
}

// Offset returns the start of the span within its mapping.
func (s Span) Offset() int { return s.off }

// Len returns the span length in bytes.
func (s Span) Len() int { return s.n }

// Bytes returns the span's memory, capacity-limited to the span, or nil
// after the mapping was closed.
func (s Span) Bytes() []byte {
	b := s.m.Bytes()
	if b == nil {
		return nil
	}
	return b[s.off : s.off+s.n : s.off+s.n]
}

// Advise applies pattern to the pages of the span.
func (s Span) Advise(pattern AccessPattern) error {
	return s.m.advise(s.off, s.n, pattern)
}
