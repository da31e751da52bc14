package cachectl

import (
	"os"
	"strings"
	"sync/atomic"
	"unsafe"
)

// ISA identifies the cache control implementation.
type ISA uint8

const (
	// Generic cannot evict; the fence is an atomic read-modify-write.
	Generic ISA = iota
	// CLFLUSH uses the x86 CLFLUSH and MFENCE instructions.
	CLFLUSH
)

// String returns the string representation of an ISA.
func (i ISA) String() string {
	switch i {
	case Generic:
		return "generic"
	case CLFLUSH:
		return "clflush"
	default:
		return "unknown"
	}
}

// ParseISA parses a string into an ISA value.
func ParseISA(s string) (ISA, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "generic":
		return Generic, true
	case "clflush":
		return CLFLUSH, true
	default:
		return Generic, false
	}
}

// EnvOverride names the environment variable that forces an ISA.
const EnvOverride = "MEMBENCH_CACHECTL"

// Controller evicts cache lines and fences memory.
type Controller interface {
	// Evict removes the line containing p from every cache level.
	Evict(p unsafe.Pointer)
	// EvictRange evicts every line in [p, p+n), stepping by stride bytes.
	EvictRange(p unsafe.Pointer, n, stride int)
	// Fence orders all preceding loads, stores and evictions.
	Fence()
	// ISA reports the implementation.
	ISA() ISA
}

// Detected once in the platform init; read-only afterwards.
var (
	activeISA   ISA
	hasOverride bool
	hasCLFLUSH  bool
)

func initCapabilities() {
	activeISA, hasOverride = selectISA(os.Getenv(EnvOverride), hasCLFLUSH)
}

// selectISA picks the best available ISA. A recognised override wins when
// the hardware supports it; an unsupported one falls back to detection but
// still counts as overridden.
func selectISA(override string, clflush bool) (isa ISA, overridden bool) {
	best := Generic
	if clflush {
		best = CLFLUSH
	}
	if override == "" {
		return best, false
	}
	want, ok := ParseISA(override)
	if !ok {
		return best, false
	}
	if want == CLFLUSH && !clflush {
		return best, true
	}
	return want, true
}

// ActiveISA returns the ISA Default uses.
func ActiveISA() ISA {
	return activeISA
}

// IsOverridden returns true if MEMBENCH_CACHECTL was set to a known value.
func IsOverridden() bool {
	return hasOverride
}

// HasCLFLUSH reports whether the CPU can evict lines explicitly.
func HasCLFLUSH() bool {
	return hasCLFLUSH
}

// Default returns the controller for the active ISA.
func Default() Controller {
	if activeISA == CLFLUSH {
		return newFlushController()
	}
	return GenericController{}
}

// GenericController is the portable fallback. It cannot evict.
type GenericController struct{}

var fenceWord atomic.Uint64

// Evict implements Controller. It is a no-op.
func (GenericController) Evict(unsafe.Pointer) {}

// EvictRange implements Controller. It is a no-op.
func (GenericController) EvictRange(unsafe.Pointer, int, int) {}

// Fence implements Controller.
func (GenericController) Fence() {
	fenceWord.Add(1)
}

// ISA implements Controller.
func (GenericController) ISA() ISA {
	return Generic
}
