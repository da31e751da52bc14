// Package conv provides checked conversions between Go's int and address
// arithmetic types.
//
// Byte counts arrive as int from callers; addresses are uintptr. Converting
// between them must never wrap silently, because a wrapped address would
// point outside the arena instead of failing the request.
package conv
