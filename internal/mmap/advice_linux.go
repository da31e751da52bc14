//go:build linux

package mmap

import "golang.org/x/sys/unix"

// MADV_POPULATE_WRITE was added in Linux 5.14.
// On older kernels, madvise returns EINVAL.
const populateWriteAdvice = unix.MADV_POPULATE_WRITE

const hugePageAdvice = unix.MADV_HUGEPAGE
