//go:build amd64 && !noasm

package cachectl

import (
	"unsafe"

	"golang.org/x/sys/cpu"
)

func init() {
	// CLFLUSH is part of SSE2, which every x86-64 CPU implements.
	hasCLFLUSH = cpu.X86.HasSSE2
	initCapabilities()
}

//go:noescape
func clflush(addr unsafe.Pointer)

//go:noescape
func clflushRange(addr unsafe.Pointer, n, stride int64)

func mfence()

type flushController struct{}

func newFlushController() Controller {
	return flushController{}
}

// Evict implements Controller.
func (flushController) Evict(p unsafe.Pointer) {
	clflush(p)
}

// EvictRange implements Controller.
func (flushController) EvictRange(p unsafe.Pointer, n, stride int) {
	if n <= 0 || stride <= 0 {
		return
	}
	lines := (n + stride - 1) / stride
	clflushRange(p, int64(lines), int64(stride))
}

// Fence implements Controller.
func (flushController) Fence() {
	mfence()
}

// ISA implements Controller.
func (flushController) ISA() ISA {
	return CLFLUSH
}
