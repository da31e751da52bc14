package hugepage

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocate(t *testing.T) {
	size := 3*Size + 4096
	b, err := Allocate(size)
	require.NoError(t, err)

	assert.Equal(t, size, b.Size())
	assert.Len(t, b.Bytes(), size)
	assert.Zero(t, b.Base()%Size, "data must be huge page aligned")
	assert.Len(t, b.Window(), size+2*Margin)

	// Touched then zeroed.
	for i := 0; i < size; i += 4096 {
		require.Equal(t, byte(0), b.Bytes()[i], "offset %d", i)
	}
	for i := 0; i < len(b.Window()); i += 4096 {
		require.Equal(t, byte(0), b.Window()[i], "window offset %d", i)
	}

	if !b.HugePageAdvised() {
		t.Logf("huge page advice not applied: %v", b.AdviceErr())
	}
}

func TestAllocate_InvalidSize(t *testing.T) {
	_, err := Allocate(0)
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = Allocate(-5)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestBlock_Contains(t *testing.T) {
	b, err := Allocate(Size)
	require.NoError(t, err)

	base := b.Base()
	assert.True(t, b.Contains(base, Size))
	assert.True(t, b.Contains(base-Margin, Margin))
	assert.True(t, b.Contains(base+Size, Margin))
	assert.True(t, b.Contains(base-Margin, Size+2*Margin))

	assert.False(t, b.Contains(base-Margin-1, 1))
	assert.False(t, b.Contains(base+Size+Margin, 1))
	assert.False(t, b.Contains(base, Size+Margin+1))
	assert.False(t, b.Contains(base, -1))

	win := uintptr(unsafe.Pointer(&b.Window()[0]))
	assert.Equal(t, base-Margin, win)
}

func TestBlock_Fill(t *testing.T) {
	b, err := Allocate(8192)
	require.NoError(t, err)

	Fill(b.Bytes(), 0xFF)
	for i, v := range b.Bytes() {
		if v != 0xFF {
			t.Fatalf("byte %d = %#x", i, v)
		}
	}
	// Margins untouched by Fill.
	assert.Equal(t, byte(0), b.Window()[Margin-1])
	assert.Equal(t, byte(0), b.Window()[Margin+8192])
}

func TestFill_Lengths(t *testing.T) {
	for _, n := range []int{0, 1, 2, 3, 7, 64, 65, 1000} {
		buf := make([]byte, n)
		Fill(buf, 9)
		for i, v := range buf {
			require.Equal(t, byte(9), v, "len %d index %d", n, i)
		}
	}
}

func TestTHPMode(t *testing.T) {
	if THPMode() == "unsupported" {
		t.Skip("transparent huge pages are Linux only")
	}
	t.Logf("THP mode: %s", THPMode())
}
