// Package mem provides bounds-checked alignment arithmetic on integer
// addresses.
//
// # Alignment
//
// AlignOffset computes the padding from a base address to the first address
// that is a multiple of a power-of-two alignment, and verifies that the
// requested number of bytes still fits in the remaining space. Nothing here
// dereferences memory; callers turn the result into a pointer only after the
// check succeeds.
package mem
