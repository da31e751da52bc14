// Package hugepage allocates 2 MiB aligned blocks with a transparent huge
// page hint and forces physical backing of every page before returning.
//
// # Backing
//
// A freshly mapped anonymous page is not backed by memory until it is
// written. Read-mostly benchmarks over untouched memory therefore measure
// the shared zero page instead of real memory latency. Allocate writes the
// whole window twice: first with a non-zero fill, then with zero, so that no
// allocate-then-zero pattern can be turned into a lazily backed allocation.
//
// # Layout
//
//	mapping:  [slack][margin 2MiB][data (size, 2MiB aligned)][margin >= 2MiB]
//	window:          [margin 2MiB][data                     ][margin 2MiB   ]
//
// The margins are valid, touched memory so that deliberately misaligned
// accesses slightly before or after the data stay inside the mapping.
package hugepage
