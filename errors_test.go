package membench

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/membench/internal/arena"
	"github.com/hupe1980/membench/internal/cachectl"
	"github.com/hupe1980/membench/internal/hugepage"
	"github.com/hupe1980/membench/internal/mem"
	"github.com/hupe1980/membench/internal/region"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		err  error
		want error
	}{
		{arena.ErrInvalidAlignment, ErrInvalidAlignment},
		{arena.ErrAlignmentTooLarge, ErrInvalidAlignment},
		{mem.ErrInvalidAlignment, ErrInvalidAlignment},
		{arena.ErrTooLarge, ErrTooLarge},
		{mem.ErrInsufficientSpace, ErrTooLarge},
		{arena.ErrInvalidSize, ErrInvalidSize},
		{region.ErrInvalidSize, ErrInvalidSize},
		{arena.ErrOutOfBounds, ErrOutOfBounds},
		{region.ErrSizeNotLineMultiple, ErrSizeNotLineMultiple},
		{region.ErrMisalignedOffset, ErrMisalignedOffset},
		{cachectl.ErrLineSizeMismatch, ErrLineSizeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			wrapped := fmt.Errorf("%w: detail", tt.err)
			err := translateError("op", wrapped)

			var ce *ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, "op", ce.Op)
			assert.Equal(t, tt.want, ce.Kind)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, "op: "+wrapped.Error(), err.Error())

			assert.Same(t, ce, translateError("again", err))
		})
	}
}

func TestTranslateError_Passthrough(t *testing.T) {
	assert.NoError(t, translateError("op", nil))

	other := errors.New("boom")
	err := translateError("op", other)
	assert.ErrorIs(t, err, other)
	assert.EqualError(t, err, "op: boom")

	var ce *ConfigError
	assert.False(t, errors.As(err, &ce))
}

func TestAllocationError(t *testing.T) {
	cause := fmt.Errorf("%w: 1024 bytes: %w", hugepage.ErrMapFailed, errors.New("cannot allocate memory"))

	err := translateError("op", allocationError(arena.Large, 1024, cause))

	var ae *AllocationError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "large", ae.Arena)
	assert.Equal(t, 1024, ae.Capacity)
	assert.ErrorIs(t, err, hugepage.ErrMapFailed)
	assert.Contains(t, err.Error(), "large arena: allocating 1024 bytes")

	assert.NoError(t, allocationError(arena.Small, 1, nil))
	assert.Equal(t, arena.ErrTooLarge, allocationError(arena.Small, 1, arena.ErrTooLarge))
}

func TestEnv_AllocationFailureIsSticky(t *testing.T) {
	env := newTestEnv()
	env.small = arena.New(arena.Small, testArenaSize,
		arena.WithAllocator(func(size int) (*hugepage.Block, error) {
			return nil, fmt.Errorf("%w: %d bytes: out of memory", hugepage.ErrMapFailed, size)
		}),
		arena.WithInitHook(env.onArenaInit),
	)

	_, first := env.AlignedPointer(64, 64)
	_, second := env.AlignedPointer(64, 64)

	var ae *AllocationError
	require.ErrorAs(t, first, &ae)
	require.ErrorAs(t, second, &ae)
	assert.Equal(t, first.Error(), second.Error())
}

func TestInvariantError(t *testing.T) {
	cause := &region.CycleError{Lines: 4, Length: 3, Closed: true}
	err := &InvariantError{Op: "shuffled region", cause: cause}

	assert.Equal(t, "shuffled region: invariant violated: region: cycle length 3, want 4", err.Error())

	var ce *region.CycleError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 4, ce.Lines)
}

func TestEnv_ShuffledRegionPanicsOnBrokenCycle(t *testing.T) {
	env := newTestEnv()
	env.permute = func(int, uint64) []int { return []int{0, 1, 0, 2} }

	const want = "shuffled region: invariant violated: region: cycle length 2, want 4"
	assert.PanicsWithError(t, want, func() {
		_, _ = env.ShuffledRegion(4*LineSize, 0)
	})

	var recovered any
	func() {
		defer func() { recovered = recover() }()
		_, _ = env.ShuffledRegion(4*LineSize, 0)
	}()

	err, ok := recovered.(error)
	require.True(t, ok)
	var ie *InvariantError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "shuffled region", ie.Op)
	var ce *region.CycleError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 4, ce.Lines)
	assert.Equal(t, 2, ce.Length)

	env.permute = nil
	r, err := env.ShuffledRegion(4*LineSize, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, r.Lines)
}
