// Package membench provides the memory fixtures for low-level memory
// microbenchmarks: pointer-chasing latency, cache effects and alignment
// sensitivity.
//
// Memory comes from two process-lifetime arenas. Each is backed by
// anonymous memory advised for transparent huge pages, aligned to 2 MiB and
// touched in full before first use, so page faults and TLB warm-up stay out
// of the timed loops. The arenas are mapped on first use and never
// unmapped.
//
// # Aligned and Misaligned Pointers
//
//	p := membench.MustAlignedPointer(64, 4096)       // p % 64 == 0
//	q := membench.MustMisalignedPointer(64, 4096, 3) // q == p + 3
//
// All pointer requests share the small arena (100 MiB by default), so two
// calls may return the same memory.
//
// # Shuffled Regions
//
// A shuffled region is an array of cache-line slots (see package chase)
// linked into a single random cycle. Chasing it defeats hardware
// prefetching, so each step costs one dependent load at the latency of
// whatever cache level the region fits in:
//
//	func BenchmarkChase(b *testing.B) {
//	    r := membench.MustShuffledRegion(32*1024, 0)
//	    b.ResetTimer()
//	    p := r.Chase(b.N)
//	    _ = p
//	}
//
// The slot order is a pure function of the seed (default 123), so results
// are comparable across runs. A region is evicted from the cache before it
// is returned. Every region of an Env overwrites the previous one.
//
// # Environments
//
// Package-level functions use Default, a process-wide Env with the default
// arena sizes. New builds an isolated Env with its own arenas:
//
//	env := membench.New(
//	    membench.WithLargeArenaSize(1<<30),
//	    membench.WithLogger(membench.NewTextLogger(slog.LevelDebug)),
//	)
//
// # Errors
//
// Requests the caller can fix return a *ConfigError matching one of the
// Err* sentinels with errors.Is. A failed arena mapping returns an
// *AllocationError from every request. A region that fails its
// single-cycle self-check panics with *InvariantError.
//
// # Platform Support
//
// Cache line eviction uses CLFLUSH on amd64. Elsewhere, or with
// MEMBENCH_CACHECTL=generic, regions are not evicted. Huge page advice is
// Linux only; other platforms get ordinary pages. Platform reports what
// was detected.
package membench
