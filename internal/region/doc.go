// Package region builds shuffled pointer-chasing regions inside a large
// arena.
//
// A build fills the region with a sentinel, links the slots in the order of a
// seeded Fisher-Yates permutation into one cycle covering every slot,
// verifies the cycle length, then evicts the region from the caches so the
// first timed access pays full memory latency.
package region
