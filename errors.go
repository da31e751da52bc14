package membench

import (
	"errors"
	"fmt"

	"github.com/hupe1980/membench/internal/arena"
	"github.com/hupe1980/membench/internal/cachectl"
	"github.com/hupe1980/membench/internal/hugepage"
	"github.com/hupe1980/membench/internal/mem"
	"github.com/hupe1980/membench/internal/region"
)

var (
	// ErrInvalidAlignment is returned when an alignment is not a power of two
	// or exceeds the huge page size.
	ErrInvalidAlignment = errors.New("alignment must be a power of two no larger than 2 MiB")
	// ErrInvalidSize is returned for non-positive region sizes and negative
	// pointer sizes or offsets.
	ErrInvalidSize = errors.New("invalid size")
	// ErrTooLarge is returned when a request does not fit its arena.
	ErrTooLarge = errors.New("request exceeds arena capacity")
	// ErrSizeNotLineMultiple is returned when a region size is not a multiple of LineSize.
	ErrSizeNotLineMultiple = errors.New("region size must be a multiple of the cache line size")
	// ErrMisalignedOffset is returned when a region offset is not pointer aligned.
	ErrMisalignedOffset = errors.New("region offset must be a multiple of the pointer size")
	// ErrOutOfBounds is returned when a misaligned pointer leaves the mapped window.
	ErrOutOfBounds = errors.New("pointer outside the mapped window")
	// ErrLineSizeMismatch is returned when the hardware cache line is not LineSize bytes.
	ErrLineSizeMismatch = errors.New("hardware cache line size does not match LineSize")
)

// ConfigError reports a request the caller can fix.
//
// errors.Is matches both Kind (one of the Err* sentinels) and the
// underlying package error.
type ConfigError struct {
	Op    string
	Kind  error
	cause error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.cause)
}

func (e *ConfigError) Unwrap() []error { return []error{e.Kind, e.cause} }

// AllocationError reports that an arena could not be mapped.
//
// Arenas are created once; a failed arena returns the same AllocationError
// from every later request.
type AllocationError struct {
	Arena    string
	Capacity int
	cause    error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("%s arena: allocating %d bytes: %v", e.Arena, e.Capacity, e.cause)
}

func (e *AllocationError) Unwrap() error { return e.cause }

// InvariantError is the panic value raised when a built region violates
// its single-cycle invariant. It indicates a bug, not a bad request.
type InvariantError struct {
	Op    string
	cause error
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: invariant violated: %v", e.Op, e.cause)
}

func (e *InvariantError) Unwrap() error { return e.cause }

func translateError(op string, err error) error {
	if err == nil {
		return nil
	}

	var ce *ConfigError
	if errors.As(err, &ce) {
		return err
	}
	var ae *AllocationError
	if errors.As(err, &ae) {
		return err
	}

	kind := configKind(err)
	if kind == nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return &ConfigError{Op: op, Kind: kind, cause: err}
}

func configKind(err error) error {
	switch {
	case errors.Is(err, region.ErrSizeNotLineMultiple):
		return ErrSizeNotLineMultiple
	case errors.Is(err, region.ErrMisalignedOffset):
		return ErrMisalignedOffset
	case errors.Is(err, arena.ErrOutOfBounds):
		return ErrOutOfBounds
	case errors.Is(err, arena.ErrInvalidAlignment),
		errors.Is(err, arena.ErrAlignmentTooLarge),
		errors.Is(err, mem.ErrInvalidAlignment):
		return ErrInvalidAlignment
	case errors.Is(err, arena.ErrTooLarge),
		errors.Is(err, mem.ErrInsufficientSpace):
		return ErrTooLarge
	case errors.Is(err, arena.ErrInvalidSize),
		errors.Is(err, region.ErrInvalidSize):
		return ErrInvalidSize
	case errors.Is(err, cachectl.ErrLineSizeMismatch):
		return ErrLineSizeMismatch
	}
	return nil
}

// allocationError wraps an arena's one-time mapping failure.
func allocationError(kind arena.Kind, capacity int, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, hugepage.ErrMapFailed) || errors.Is(err, hugepage.ErrInvalidSize) {
		return &AllocationError{Arena: kind.String(), Capacity: capacity, cause: err}
	}
	return err
}
