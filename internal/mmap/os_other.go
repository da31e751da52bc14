//go:build !unix && !windows

package mmap

// osMapAnon falls back to the Go heap where no mapping primitive exists.
// The memory is still never freed while the Mapping is reachable.
func osMapAnon(size int) ([]byte, func([]byte) error, error) {
	return make([]byte, size), func([]byte) error { return nil }, nil
}

func osAdvise(data []byte, pattern AccessPattern) error {
	switch pattern {
	case AccessHugePage, AccessPopulateWrite:
		return ErrUnsupported
	default:
		_ = data
		return nil
	}
}
