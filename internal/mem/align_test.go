package mem

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPow2(t *testing.T) {
	for _, n := range []int{1, 2, 4, 64, 4096, 2 << 20} {
		assert.True(t, IsPow2(n), "%d", n)
	}
	for _, n := range []int{0, -1, -4, 3, 6, 100, 4097} {
		assert.False(t, IsPow2(n), "%d", n)
	}
}

func TestAlignUp(t *testing.T) {
	assert.Equal(t, uintptr(0), AlignUp(0, 64))
	assert.Equal(t, uintptr(64), AlignUp(1, 64))
	assert.Equal(t, uintptr(64), AlignUp(64, 64))
	assert.Equal(t, uintptr(128), AlignUp(65, 64))
	assert.Equal(t, uintptr(0x200000), AlignUp(0x1000, 0x200000))

	assert.True(t, IsAligned(0x200000, 0x200000))
	assert.False(t, IsAligned(0x200040, 0x200000))
	assert.True(t, IsAligned(0x200040, 64))
}

func TestAlignOffset(t *testing.T) {
	tests := []struct {
		base      uintptr
		space     int
		alignment int
		size      int
		want      int
	}{
		{base: 0x1000, space: 4096, alignment: 64, size: 4096, want: 0},
		{base: 0x1001, space: 4096, alignment: 64, size: 100, want: 63},
		{base: 0x1001, space: 4096, alignment: 1, size: 4096, want: 0},
		{base: 0x1010, space: 4096, alignment: 4096, size: 0, want: 4096 - 0x10},
		{base: 0x1040, space: 128, alignment: 128, size: 64, want: 64},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%#x/%d/%d", tt.base, tt.alignment, tt.size), func(t *testing.T) {
			got, err := AlignOffset(tt.base, tt.space, tt.alignment, tt.size)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, IsAligned(tt.base+uintptr(got), uintptr(tt.alignment)))
		})
	}
}

func TestAlignOffset_Errors(t *testing.T) {
	_, err := AlignOffset(0x1000, 4096, 3, 8)
	assert.ErrorIs(t, err, ErrInvalidAlignment)

	_, err = AlignOffset(0x1000, 4096, 0, 8)
	assert.ErrorIs(t, err, ErrInvalidAlignment)

	_, err = AlignOffset(0x1000, 4096, 64, 4097)
	assert.ErrorIs(t, err, ErrInsufficientSpace)

	// Padding eats into the space.
	_, err = AlignOffset(0x1001, 4096, 64, 4096)
	assert.ErrorIs(t, err, ErrInsufficientSpace)

	_, err = AlignOffset(0x1000, -1, 64, 0)
	assert.ErrorIs(t, err, ErrInsufficientSpace)

	_, err = AlignOffset(^uintptr(0)-3, 4096, 64, 1)
	assert.ErrorIs(t, err, ErrInsufficientSpace)
}
