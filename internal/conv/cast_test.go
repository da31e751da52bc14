package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUintptrToInt(t *testing.T) {
	got, err := UintptrToInt(123)
	require.NoError(t, err)
	assert.Equal(t, 123, got)

	got, err = UintptrToInt(uintptr(math.MaxInt))
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, got)

	_, err = UintptrToInt(^uintptr(0))
	assert.Error(t, err)
}

func TestAddOffset(t *testing.T) {
	tests := []struct {
		name    string
		addr    uintptr
		off     int
		want    uintptr
		wantErr bool
	}{
		{name: "zero", addr: 0x1000, off: 0, want: 0x1000},
		{name: "positive", addr: 0x1000, off: 3, want: 0x1003},
		{name: "negative", addr: 0x1000, off: -1, want: 0x0fff},
		{name: "down to zero", addr: 0x1000, off: -0x1000, want: 0},
		{name: "underflow", addr: 0x10, off: -0x11, wantErr: true},
		{name: "min int", addr: 0x10, off: math.MinInt, wantErr: true},
		{name: "overflow", addr: ^uintptr(0), off: 1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AddOffset(tt.addr, tt.off)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
