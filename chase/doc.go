// Package chase defines the cache-line slot used by pointer-chasing
// benchmarks, the descriptor of a built shuffled region, and the diagnostics
// that verify a region forms a single cycle.
//
// # Pointer Chasing
//
// Every slot holds forward pointers to another slot. Following Nexts[0] from
// Region.First performs a chain of dependent loads; each address is known
// only after the previous load completes, so hardware prefetchers cannot
// hide memory latency:
//
//	r, _ := membench.ShuffledRegion(64<<20, 0)
//	end := r.Chase(b.N)
//
// # Layout
//
// A Line is exactly LineSize bytes. The slot count of a region is
// Size / LineSize and slots are laid out contiguously from First.
package chase
