// Package cachectl evicts memory from the CPU caches and orders memory
// accesses.
//
// # Supported Platforms
//
//   - x86-64: CLFLUSH per cache line and MFENCE
//   - everything else: eviction is a no-op, the fence is an atomic
//     read-modify-write
//
// Runtime CPU feature detection selects the implementation. Build with
// -tags noasm to force the generic fallback, or set MEMBENCH_CACHECTL to
// "generic" or "clflush" to override the selection at startup.
//
// # Usage
//
//	c := cachectl.Default()
//	c.EvictRange(unsafe.Pointer(&buf[0]), len(buf), 64)
//	c.Fence()
package cachectl
