package chase

import "unsafe"

// LineSize is the cache line size the slot layout is built for.
const LineSize = 64

const ptrSize = unsafe.Sizeof(uintptr(0))

// NextsPerLine is the number of forward pointers in a Line.
const NextsPerLine = int(LineSize / ptrSize)

// Line is one cache-line sized slot. Several forward pointers allow
// independent chains to be chased in parallel through the same lines.
type Line struct {
	Nexts [NextsPerLine]*Line
}

// Both constants overflow at compile time unless sizeof(Line) == LineSize.
var (
	_ [LineSize - unsafe.Sizeof(Line{})]struct{}
	_ [unsafe.Sizeof(Line{}) - LineSize]struct{}
)

// SetNexts points the first chains forward pointers at next.
// chains is clamped to [1, NextsPerLine].
func (l *Line) SetNexts(next *Line, chains int) {
	chains = ClampChains(chains)
	for i := 0; i < chains; i++ {
		l.Nexts[i] = next
	}
}

// ClampChains limits a chain count to [1, NextsPerLine].
func ClampChains(chains int) int {
	if chains < 1 {
		return 1
	}
	if chains > NextsPerLine {
		return NextsPerLine
	}
	return chains
}

// CycleLength follows Nexts[0] from start until it returns to start and
// returns the number of steps. It does not terminate if start is not on a
// cycle; use CycleLengthMax for untrusted structures.
func CycleLength(start *Line) int {
	p := start
	n := 0
	for {
		p = p.Nexts[0]
		n++
		if p == start {
			return n
		}
	}
}

// CycleLengthMax is CycleLength bounded to max steps. It reports false if
// start was not revisited within max steps or a nil link was reached.
func CycleLengthMax(start *Line, max int) (int, bool) {
	p := start
	for n := 1; n <= max; n++ {
		p = p.Nexts[0]
		if p == nil {
			return n, false
		}
		if p == start {
			return n, true
		}
	}
	return max, false
}
