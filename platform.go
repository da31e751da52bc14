package membench

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pbnjay/memory"

	"github.com/hupe1980/membench/internal/cachectl"
	"github.com/hupe1980/membench/internal/hugepage"
)

// PlatformInfo describes the memory-relevant properties of the host.
// Values that cannot be detected are zero.
type PlatformInfo struct {
	OS            string
	Arch          string
	CPU           string
	Vendor        string
	PhysicalCores int
	LogicalCores  int

	// LineSize is the detected hardware cache line size.
	LineSize int
	// LineSizeErr is non-nil when LineSize is known and differs from the
	// compiled LineSize constant.
	LineSizeErr error
	L1D         int
	L2          int
	L3          int

	// CacheControl names the active cache controller ("clflush" or "generic").
	CacheControl string
	// CacheControlOverridden reports whether MEMBENCH_CACHECTL selected it.
	CacheControlOverridden bool

	HugePageSize int
	// THPMode is the transparent huge page policy, or "unsupported".
	THPMode string

	TotalMemory uint64
	FreeMemory  uint64
}

// Platform returns the host report.
func Platform() PlatformInfo {
	cpu := cachectl.Detect()
	return PlatformInfo{
		OS:                     runtime.GOOS,
		Arch:                   runtime.GOARCH,
		CPU:                    cpu.Brand,
		Vendor:                 cpu.Vendor,
		PhysicalCores:          cpu.Physical,
		LogicalCores:           cpu.Logical,
		LineSize:               cpu.LineSize,
		LineSizeErr:            checkLineSize(),
		L1D:                    cpu.L1D,
		L2:                     cpu.L2,
		L3:                     cpu.L3,
		CacheControl:           cpu.ISA.String(),
		CacheControlOverridden: cpu.Overridden,
		HugePageSize:           hugepage.Size,
		THPMode:                hugepage.THPMode(),
		TotalMemory:            memory.TotalMemory(),
		FreeMemory:             memory.FreeMemory(),
	}
}

// CheckLineSize returns a *ConfigError wrapping ErrLineSizeMismatch when the
// detected cache line differs from LineSize. An undetectable line size is
// not an error.
func CheckLineSize() error {
	return checkLineSize()
}

func checkLineSize() error {
	return translateError("line size", cachectl.ValidateLineSize(LineSize))
}

func (p PlatformInfo) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "cpu:           %s (%s, %d cores / %d threads)\n", orUnknown(p.CPU), p.Arch, p.PhysicalCores, p.LogicalCores)
	fmt.Fprintf(&sb, "os:            %s\n", p.OS)
	fmt.Fprintf(&sb, "cache line:    %d bytes", p.LineSize)
	if p.LineSizeErr != nil {
		fmt.Fprintf(&sb, " (mismatch: built for %d)", LineSize)
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "caches:        L1d %s, L2 %s, L3 %s\n", sizeOrUnknown(p.L1D), sizeOrUnknown(p.L2), sizeOrUnknown(p.L3))
	fmt.Fprintf(&sb, "cache control: %s", p.CacheControl)
	if p.CacheControlOverridden {
		sb.WriteString(" (overridden)")
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "huge pages:    %s, thp %s\n", humanize.IBytes(uint64(p.HugePageSize)), p.THPMode)
	fmt.Fprintf(&sb, "memory:        %s total, %s free\n", humanize.IBytes(p.TotalMemory), humanize.IBytes(p.FreeMemory))
	return sb.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func sizeOrUnknown(n int) string {
	if n <= 0 {
		return "unknown"
	}
	return humanize.IBytes(uint64(n))
}
