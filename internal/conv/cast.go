package conv

import (
	"fmt"
	"math"
)

// UintptrToInt converts uintptr to int safely.
func UintptrToInt(v uintptr) (int, error) {
	if uint64(v) > uint64(math.MaxInt) {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to int (too large)", v)
	}
	return int(v), nil
}

// AddOffset returns addr+off for a signed byte offset.
// It fails if the result would wrap around the address space.
func AddOffset(addr uintptr, off int) (uintptr, error) {
	if off >= 0 {
		d := uintptr(off)
		if addr+d < addr {
			return 0, fmt.Errorf("address overflow: %#x + %d", addr, off)
		}
		return addr + d, nil
	}
	// -off overflows for math.MinInt, so negate in uint64.
	d := uintptr(uint64(^off) + 1)
	if d > addr {
		return 0, fmt.Errorf("address underflow: %#x - %d", addr, d)
	}
	return addr - d, nil
}
