package mmap

import "errors"

// AccessPattern provides hints to the kernel about how the memory will be used.
type AccessPattern int

const (
	// AccessDefault is the default access pattern (no specific advice).
	AccessDefault AccessPattern = iota
	// AccessRandom expects data to be accessed randomly.
	AccessRandom
	// AccessWillNeed expects data to be accessed in the near future.
	AccessWillNeed
	// AccessHugePage asks for transparent huge page backing.
	AccessHugePage
	// AccessPopulateWrite asks the kernel to prefault the pages writable.
	AccessPopulateWrite
)

// String returns the name of the access pattern.
func (p AccessPattern) String() string {
	switch p {
	case AccessDefault:
		return "default"
	case AccessRandom:
		return "random"
	case AccessWillNeed:
		return "willneed"
	case AccessHugePage:
		return "hugepage"
	case AccessPopulateWrite:
		return "populate-write"
	default:
		return "unknown"
	}
}

var (
	// ErrClosed is returned when attempting to access a closed mapping.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned when the requested size is not positive.
	ErrInvalidSize = errors.New("mmap: invalid size")
	// ErrOutOfBounds is returned when attempting to access a region outside the mapping.
	ErrOutOfBounds = errors.New("mmap: out of bounds")
	// ErrUnsupported is returned when an advice is not available on this platform.
	ErrUnsupported = errors.New("mmap: advice unsupported on this platform")
)
