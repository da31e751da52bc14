// Package arena provides the process-lifetime, huge-page-backed arenas that
// benchmarks carve pointers and regions from.
//
// # Lifetime
//
// A Lazy arena maps its block on first use, exactly once, and never unmaps
// it. Reusing one block across every request keeps page-fault and TLB
// warm-up out of repeated measurements and guarantees that every benchmark
// in a process sees the same huge page backing.
//
// # Alignment
//
// Aligned returns the first address in the block satisfying a power-of-two
// alignment of at most MaxAlignment. Since the block itself is aligned to
// MaxAlignment that is always the block base; the arithmetic is still
// performed and bounds-checked so the contract does not depend on it.
//
// # Concurrency
//
// Initialisation is guarded by sync.Once. Requests after initialisation only
// read arena state and bump atomic counters.
package arena
