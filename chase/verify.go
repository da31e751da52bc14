package chase

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

// VerifyPermutation checks that order contains every value in [0, n)
// exactly once.
func VerifyPermutation(order []int, n int) error {
	if len(order) != n {
		return fmt.Errorf("%w: %d entries, want %d", ErrNotPermutation, len(order), n)
	}
	if uint64(n) > math.MaxUint32 {
		return fmt.Errorf("%w: %d slots exceed the verifier range", ErrNotPermutation, n)
	}
	seen := roaring.New()
	for i, idx := range order {
		if idx < 0 || idx >= n {
			return fmt.Errorf("%w: entry %d is %d, outside [0, %d)", ErrNotPermutation, i, idx, n)
		}
		if !seen.CheckedAdd(uint32(idx)) {
			return fmt.Errorf("%w: slot %d repeated at entry %d", ErrNotPermutation, idx, i)
		}
	}
	return nil
}
