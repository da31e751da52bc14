package cachectl

import (
	"errors"
	"fmt"

	"github.com/klauspost/cpuid/v2"
)

// ErrLineSizeMismatch is returned when the hardware cache line differs from
// the size the slot layout was compiled for.
var ErrLineSizeMismatch = errors.New("cachectl: cache line size mismatch")

// Info describes the CPU's cache hierarchy as far as it can be detected.
// Unknown values are zero.
type Info struct {
	Brand      string
	Vendor     string
	LineSize   int
	L1D        int
	L2         int
	L3         int
	Physical   int
	Logical    int
	ISA        ISA
	Overridden bool
}

// Detect returns the CPU cache information.
func Detect() Info {
	c := cpuid.CPU
	return Info{
		Brand:      c.BrandName,
		Vendor:     c.VendorString,
		LineSize:   c.CacheLine,
		L1D:        positive(c.Cache.L1D),
		L2:         positive(c.Cache.L2),
		L3:         positive(c.Cache.L3),
		Physical:   c.PhysicalCores,
		Logical:    c.LogicalCores,
		ISA:        activeISA,
		Overridden: hasOverride,
	}
}

func positive(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// DetectedLineSize returns the hardware cache line size, or 0 if unknown.
func DetectedLineSize() int {
	return positive(cpuid.CPU.CacheLine)
}

// ValidateLineSize checks want against the detected hardware line size.
// An undetectable line size is not an error.
func ValidateLineSize(want int) error {
	return validateLineSize(DetectedLineSize(), want)
}

func validateLineSize(got, want int) error {
	if got == 0 || got == want {
		return nil
	}
	return fmt.Errorf("%w: hardware %d bytes, compiled for %d", ErrLineSizeMismatch, got, want)
}
