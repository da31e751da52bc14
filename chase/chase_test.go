package chase

import (
	"math/rand/v2"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRegion links lines[perm[i]] -> lines[perm[i+1]] in a Go-heap slice.
func newRegion(t *testing.T, perm []int, chains int) (*Region, []Line) {
	t.Helper()
	lines := make([]Line, len(perm))
	for i := range perm {
		next := &lines[perm[(i+1)%len(perm)]]
		lines[perm[i]].SetNexts(next, chains)
	}
	return &Region{
		Size:   len(lines) * LineSize,
		First:  &lines[0],
		Lines:  len(lines),
		Chains: chains,
	}, lines
}

func TestLineSize(t *testing.T) {
	assert.Equal(t, uintptr(LineSize), unsafe.Sizeof(Line{}))
	assert.Equal(t, LineSize, NextsPerLine*int(unsafe.Sizeof(uintptr(0))))
}

func TestSetNexts(t *testing.T) {
	var a, b Line
	a.SetNexts(&b, 1)
	assert.Same(t, &b, a.Nexts[0])
	assert.Nil(t, a.Nexts[1])

	a.SetNexts(&b, NextsPerLine+5)
	for i := range a.Nexts {
		assert.Same(t, &b, a.Nexts[i])
	}

	assert.Equal(t, 1, ClampChains(0))
	assert.Equal(t, 1, ClampChains(-3))
	assert.Equal(t, 3, ClampChains(3))
	assert.Equal(t, NextsPerLine, ClampChains(100))
}

func TestCycleLength(t *testing.T) {
	perm := rand.New(rand.NewPCG(1, 2)).Perm(100)
	r, _ := newRegion(t, perm, 1)

	assert.Equal(t, 100, CycleLength(r.First))

	n, ok := CycleLengthMax(r.First, 100)
	assert.True(t, ok)
	assert.Equal(t, 100, n)

	_, ok = CycleLengthMax(r.First, 99)
	assert.False(t, ok)
}

func TestCycleLength_SelfLoop(t *testing.T) {
	var l Line
	l.SetNexts(&l, 1)
	assert.Equal(t, 1, CycleLength(&l))
}

func TestCycleLengthMax_Broken(t *testing.T) {
	lines := make([]Line, 4)
	// 0 -> 1 -> 2 -> 3 -> 1: a rho shape that never returns to 0.
	lines[0].SetNexts(&lines[1], 1)
	lines[1].SetNexts(&lines[2], 1)
	lines[2].SetNexts(&lines[3], 1)
	lines[3].SetNexts(&lines[1], 1)

	_, ok := CycleLengthMax(&lines[0], 16)
	assert.False(t, ok)

	// nil link
	var lone Line
	n, ok := CycleLengthMax(&lone, 16)
	assert.False(t, ok)
	assert.Equal(t, 1, n)

	r := &Region{Size: 4 * LineSize, First: &lines[0], Lines: 4, Chains: 1}
	_, err := r.Order()
	assert.ErrorIs(t, err, ErrNotACycle)
	assert.Error(t, r.Verify())
}

func TestRegion_Order(t *testing.T) {
	perm := rand.New(rand.NewPCG(7, 7)).Perm(100)
	r, _ := newRegion(t, perm, 1)

	order, err := r.Order()
	require.NoError(t, err)
	require.Len(t, order, 100)
	assert.Equal(t, 0, order[0], "traversal starts at slot 0")
	require.NoError(t, VerifyPermutation(order, 100))
	require.NoError(t, r.Verify())

	// The traversal follows the permutation, rotated to start at slot 0.
	start := 0
	for i, v := range perm {
		if v == 0 {
			start = i
		}
	}
	for i := range order {
		assert.Equal(t, perm[(start+i)%len(perm)], order[i])
	}
}

func TestRegion_Order_OutOfRegion(t *testing.T) {
	lines := make([]Line, 3)
	var outside Line
	lines[0].SetNexts(&lines[1], 1)
	lines[1].SetNexts(&outside, 1)
	r := &Region{Size: 3 * LineSize, First: &lines[0], Lines: 3, Chains: 1}

	_, err := r.Order()
	assert.ErrorIs(t, err, ErrOutOfRegion)
}

func TestRegion_Order_SubCycle(t *testing.T) {
	lines := make([]Line, 4)
	// Two disjoint cycles: 0 <-> 1 and 2 <-> 3.
	lines[0].SetNexts(&lines[1], 1)
	lines[1].SetNexts(&lines[0], 1)
	lines[2].SetNexts(&lines[3], 1)
	lines[3].SetNexts(&lines[2], 1)
	r := &Region{Size: 4 * LineSize, First: &lines[0], Lines: 4, Chains: 1}

	order, err := r.Order()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, order)
	assert.ErrorIs(t, r.Verify(), ErrNotPermutation)
}

func TestRegion_IndexAndLine(t *testing.T) {
	r, lines := newRegion(t, []int{0, 1, 2, 3}, 1)

	for i := range lines {
		assert.Same(t, &lines[i], r.Line(i))
		idx, ok := r.Index(&lines[i])
		assert.True(t, ok)
		assert.Equal(t, i, idx)
	}

	var other Line
	_, ok := r.Index(&other)
	assert.False(t, ok)
	_, ok = r.Index(nil)
	assert.False(t, ok)

	mid := (*Line)(unsafe.Add(unsafe.Pointer(&lines[1]), 8))
	_, ok = r.Index(mid)
	assert.False(t, ok)
}

func TestRegion_Chase(t *testing.T) {
	perm := []int{0, 3, 1, 2}
	r, lines := newRegion(t, perm, 1)

	assert.Same(t, &lines[0], r.Chase(0))
	assert.Same(t, &lines[3], r.Chase(1))
	assert.Same(t, &lines[1], r.Chase(2))
	assert.Same(t, &lines[2], r.Chase(3))
	assert.Same(t, &lines[0], r.Chase(4))
}

func TestRegion_CheckSentinel(t *testing.T) {
	words := make([]uint64, 8*NextsPerLine)
	for i := range words {
		words[i] = ^uint64(0)
	}
	raw := unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), len(words)*8)
	r := &Region{
		Size:   len(raw),
		First:  (*Line)(unsafe.Pointer(&words[0])),
		Lines:  len(raw) / LineSize,
		Chains: 2,
	}
	for i := 0; i < r.Lines; i++ {
		r.Line(i).SetNexts(r.Line((i+1)%r.Lines), 2)
	}
	require.NoError(t, r.CheckSentinel(0xFF))
	require.NoError(t, r.Verify())
	assert.Len(t, r.Bytes(), len(raw))

	raw[5*LineSize+40] = 0
	err := r.CheckSentinel(0xFF)
	assert.ErrorIs(t, err, ErrSentinel)
	assert.Contains(t, err.Error(), "slot 5 byte 40")
}

func TestVerifyPermutation(t *testing.T) {
	assert.NoError(t, VerifyPermutation([]int{2, 0, 1}, 3))
	assert.NoError(t, VerifyPermutation(nil, 0))
	assert.ErrorIs(t, VerifyPermutation([]int{0, 1}, 3), ErrNotPermutation)
	assert.ErrorIs(t, VerifyPermutation([]int{0, 1, 1}, 3), ErrNotPermutation)
	assert.ErrorIs(t, VerifyPermutation([]int{0, 1, 3}, 3), ErrNotPermutation)
	assert.ErrorIs(t, VerifyPermutation([]int{0, -1, 2}, 3), ErrNotPermutation)
}
