//go:build unix && !linux

package mmap

const (
	populateWriteAdvice = -1
	hugePageAdvice      = -1
)
