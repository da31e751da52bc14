//go:build unix

package mmap

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

var unixAdvice = map[AccessPattern]int{
	AccessDefault:       unix.MADV_NORMAL,
	AccessRandom:        unix.MADV_RANDOM,
	AccessWillNeed:      unix.MADV_WILLNEED,
	AccessHugePage:      hugePageAdvice,
	AccessPopulateWrite: populateWriteAdvice,
}

func osMapAnon(size int) ([]byte, func([]byte) error, error) {
	buf, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, fmt.Errorf("mmap %d bytes: %w", size, err)
	}
	return buf, unix.Munmap, nil
}

// osAdvise reports ErrUnsupported for the huge page and populate hints when
// the platform or kernel lacks them. EINVAL for the plain hints is dropped:
// they are advisory and fail on ranges that are not page aligned.
func osAdvise(buf []byte, pattern AccessPattern) error {
	advice, ok := unixAdvice[pattern]
	if !ok {
		advice = unix.MADV_NORMAL
	}
	strict := pattern == AccessHugePage || pattern == AccessPopulateWrite
	if advice < 0 {
		return fmt.Errorf("%w: %s", ErrUnsupported, pattern)
	}
	if len(buf) == 0 {
		return nil
	}

	err := unix.Madvise(buf, advice)
	if err == nil {
		return nil
	}
	if errors.Is(err, unix.EINVAL) {
		if strict {
			return fmt.Errorf("%w: %s: %w", ErrUnsupported, pattern, err)
		}
		return nil
	}
	return fmt.Errorf("madvise %s: %w", pattern, err)
}
