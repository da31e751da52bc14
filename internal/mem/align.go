package mem

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAlignment is returned when an alignment is not a positive power of two.
	ErrInvalidAlignment = errors.New("mem: alignment must be a positive power of two")
	// ErrInsufficientSpace is returned when the aligned request does not fit.
	ErrInsufficientSpace = errors.New("mem: insufficient space for aligned request")
)

// IsPow2 reports whether n is a positive power of two.
func IsPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// AlignUp rounds v up to the next multiple of alignment.
// alignment must be a power of two.
func AlignUp(v, alignment uintptr) uintptr {
	mask := alignment - 1
	return (v + mask) &^ mask
}

// IsAligned reports whether addr is a multiple of alignment.
// alignment must be a power of two.
func IsAligned(addr, alignment uintptr) bool {
	return addr&(alignment-1) == 0
}

// AlignOffset returns the number of bytes between base and the first address
// >= base that is a multiple of alignment, provided size bytes starting at
// that address fit within space bytes starting at base.
func AlignOffset(base uintptr, space, alignment, size int) (int, error) {
	if !IsPow2(alignment) {
		return 0, fmt.Errorf("%w: %d", ErrInvalidAlignment, alignment)
	}
	if space < 0 || size < 0 {
		return 0, fmt.Errorf("%w: space=%d size=%d", ErrInsufficientSpace, space, size)
	}

	a := uintptr(alignment)
	aligned := AlignUp(base, a)
	if aligned < base {
		return 0, fmt.Errorf("%w: aligning %#x to %d wraps", ErrInsufficientSpace, base, alignment)
	}

	// padding < alignment, which is an int, so the conversion is exact.
	padding := int(aligned - base)
	if space-padding < size {
		return 0, fmt.Errorf("%w: need %d+%d bytes, have %d", ErrInsufficientSpace, padding, size, space)
	}
	return padding, nil
}
