package staking

import (
	"math/bits"

	"github.com/shieldnet/shield-node/internal/checked"
)

// bitsMul64 and bitsDiv64 back mulDivChecked's a*b/d with a 128-bit
// intermediate, since no available dependency offers a 128-bit checked
// mul/div primitive; math/bits is the standard library's own idiomatic
// home for this exact operation.
func bitsMul64(a, b uint64) (hi, lo uint64) {
	return bits.Mul64(a, b)
}

func bitsDiv64(hi, lo, d uint64) (quo, rem uint64, err error) {
	if d == 0 {
		return 0, 0, checked.ErrOverflow
	}
	if hi >= d {
		// Quotient would not fit in 64 bits.
		return 0, 0, checked.ErrOverflow
	}
	quo, rem = bits.Div64(hi, lo, d)
	return quo, rem, nil
}
