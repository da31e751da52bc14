package hugepage

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/hupe1980/membench/internal/conv"
	"github.com/hupe1980/membench/internal/mem"
	"github.com/hupe1980/membench/internal/mmap"
)

// Size is the transparent huge page size the blocks are aligned to.
const Size = 2 * 1024 * 1024

// Margin is the amount of valid memory kept before and after the data.
const Margin = Size

const touchFill = 1

var (
	// ErrInvalidSize is returned when a non-positive size is requested.
	ErrInvalidSize = errors.New("hugepage: size must be positive")
	// ErrMapFailed is returned when the underlying mapping cannot be created.
	ErrMapFailed = errors.New("hugepage: mapping failed")
)

// Block is a 2 MiB aligned, physically backed memory block.
//
// Blocks are normally held for the lifetime of the process.
type Block struct {
	mapping *mmap.Mapping
	data    []byte
	window  []byte
	advised bool
	advice  error
}

// Allocate returns a block with at least size usable bytes, aligned to Size,
// advised for huge pages and fully touched.
func Allocate(size int) (*Block, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	// One huge page of slack for alignment plus a margin on each side.
	total := size + Size + 2*Margin
	if total < size {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	m, err := mmap.MapAnon(total)
	if err != nil {
		return nil, fmt.Errorf("%w: %d bytes: %w", ErrMapFailed, total, err)
	}

	// The hint must precede the first write: pages faulted in as 4 KiB are
	// not reliably collapsed later.
	adviceErr := m.Advise(mmap.AccessHugePage)

	start := mem.AlignUp(m.Addr(), Size) + Margin
	lead, err := conv.UintptrToInt(start - m.Addr())
	if err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("%w: %w", ErrMapFailed, err)
	}
	lo := lead - Margin

	win, err := m.Span(lo, Margin+size+Margin)
	if err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("%w: window: %w", ErrMapFailed, err)
	}

	// Best-effort prefault; the explicit touch below is what guarantees backing.
	_ = win.Advise(mmap.AccessPopulateWrite)

	window := win.Bytes()
	b := &Block{
		mapping: m,
		window:  window,
		data:    window[Margin : Margin+size : Margin+size],
		advised: adviceErr == nil,
		advice:  adviceErr,
	}
	touch(window)
	return b, nil
}

// touch writes every byte of buf with a non-zero value and then zero.
func touch(buf []byte) {
	Fill(buf, touchFill)
	clear(buf)
}

// Fill sets every byte of buf to v, doubling the written prefix with copy.
func Fill(buf []byte, v byte) {
	if len(buf) == 0 {
		return
	}
	buf[0] = v
	for n := 1; n < len(buf); n *= 2 {
		copy(buf[n:], buf[:n])
	}
}

// Bytes returns the aligned data area.
func (b *Block) Bytes() []byte {
	return b.data
}

// Size returns the number of usable data bytes.
func (b *Block) Size() int {
	return len(b.data)
}

// Base returns the address of the first data byte. It is a multiple of Size.
func (b *Block) Base() uintptr {
	return uintptr(unsafe.Pointer(&b.data[0])) //nolint:gosec // off-heap address arithmetic
}

// Window returns the data area together with its leading and trailing margins.
func (b *Block) Window() []byte {
	return b.window
}

// Contains reports whether the n bytes starting at addr lie within the window.
func (b *Block) Contains(addr uintptr, n int) bool {
	if n < 0 {
		return false
	}
	lo := uintptr(unsafe.Pointer(&b.window[0])) //nolint:gosec // off-heap address arithmetic
	hi := lo + uintptr(len(b.window))
	return addr >= lo && addr <= hi && uintptr(n) <= hi-addr
}

// HugePageAdvised reports whether the kernel accepted the huge page hint.
func (b *Block) HugePageAdvised() bool {
	return b.advised
}

// AdviceErr returns the error from the huge page hint, if any.
func (b *Block) AdviceErr() error {
	return b.advice
}
