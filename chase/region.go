package chase

import (
	"errors"
	"fmt"
	"unsafe"
)

var (
	// ErrNotACycle is returned when Nexts[0] does not lead back to the first slot.
	ErrNotACycle = errors.New("chase: traversal does not close a single cycle")
	// ErrOutOfRegion is returned when a link points outside the region's slots.
	ErrOutOfRegion = errors.New("chase: link points outside the region")
	// ErrNotPermutation is returned when a traversal is not a permutation of the slots.
	ErrNotPermutation = errors.New("chase: traversal is not a permutation")
	// ErrSentinel is returned when an unlinked byte lost its sentinel value.
	ErrSentinel = errors.New("chase: sentinel overwritten")
)

// Region describes a built pointer-chasing structure.
//
// First points into a process-lifetime arena. Building another region in the
// same arena overwrites the slots; the old descriptor is then stale.
type Region struct {
	// Size is the region size in bytes.
	Size int
	// First is slot 0 of the slot array.
	First *Line
	// Lines is the slot count, Size / LineSize.
	Lines int
	// Offset is the byte offset of First within the arena.
	Offset int
	// Seed is the shuffle seed the permutation was built with.
	Seed uint64
	// Chains is the number of leading Nexts fields that were linked.
	Chains int
}

// Line returns slot i.
func (r *Region) Line(i int) *Line {
	return (*Line)(unsafe.Add(unsafe.Pointer(r.First), i*LineSize)) //nolint:gosec // slots are contiguous
}

// Index returns the slot index of l, or false if l is not a slot of r.
func (r *Region) Index(l *Line) (int, bool) {
	if l == nil || r.First == nil {
		return 0, false
	}
	base := uintptr(unsafe.Pointer(r.First)) //nolint:gosec // address comparison only
	addr := uintptr(unsafe.Pointer(l))       //nolint:gosec // address comparison only
	if addr < base {
		return 0, false
	}
	d := addr - base
	if d%LineSize != 0 || d/LineSize >= uintptr(r.Lines) {
		return 0, false
	}
	return int(d / LineSize), true
}

// Bytes returns the raw bytes of the region.
func (r *Region) Bytes() []byte {
	if r.First == nil || r.Size == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(r.First)), r.Size) //nolint:gosec // region is Size bytes
}

// Chase follows Nexts[0] steps times from First and returns the final slot.
func (r *Region) Chase(steps int) *Line {
	p := r.First
	for i := 0; i < steps; i++ {
		p = p.Nexts[0]
	}
	return p
}

// Order returns the slot indices visited from First along Nexts[0], ending
// just before First is revisited.
func (r *Region) Order() ([]int, error) {
	if r.Lines <= 0 || r.First == nil {
		return nil, nil
	}
	order := make([]int, 0, r.Lines)
	p := r.First
	for step := 0; step < r.Lines; step++ {
		idx, ok := r.Index(p)
		if !ok {
			return order, fmt.Errorf("%w: step %d at %p", ErrOutOfRegion, step, p)
		}
		order = append(order, idx)
		p = p.Nexts[0]
		if p == r.First {
			return order, nil
		}
	}
	return order, fmt.Errorf("%w: first slot not revisited after %d steps", ErrNotACycle, r.Lines)
}

// Verify checks that Nexts[0] forms a single cycle over every slot.
func (r *Region) Verify() error {
	order, err := r.Order()
	if err != nil {
		return err
	}
	return VerifyPermutation(order, r.Lines)
}

// CheckSentinel checks that every byte of each slot past the linked Nexts
// fields still holds pattern.
func (r *Region) CheckSentinel(pattern byte) error {
	chains := ClampChains(r.Chains)
	from := chains * int(ptrSize)
	b := r.Bytes()
	for line := 0; line < r.Lines; line++ {
		slot := b[line*LineSize : (line+1)*LineSize]
		for i := from; i < LineSize; i++ {
			if slot[i] != pattern {
				return fmt.Errorf("%w: slot %d byte %d is %#x, want %#x", ErrSentinel, line, i, slot[i], pattern)
			}
		}
	}
	return nil
}
