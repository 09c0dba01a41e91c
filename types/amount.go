// Package types provides common value types used across Vesting.
package types

import (
	"fmt"
	"math/bits"
	"strconv"
)

// Amount represents a quantity of escrowed value in the token's smallest
// indivisible unit. All arithmetic is unsigned-integer-only — no floating
// point — and every addition is overflow-checked.
type Amount uint64

// MaxAmount is the largest representable Amount.
const MaxAmount = Amount(^uint64(0))

// CheckedAdd returns a+b and reports whether the addition stayed within
// the numeric range. On overflow the returned Amount is zero.
func (a Amount) CheckedAdd(b Amount) (Amount, bool) {
	sum, carry := bits.Add64(uint64(a), uint64(b), 0)
	if carry != 0 {
		return 0, false
	}
	return Amount(sum), true
}

// Sub subtracts b from a. Panics if b > a; callers are expected to have
// established a >= b (the engine only subtracts previously accumulated
// amounts).
func (a Amount) Sub(b Amount) Amount {
	if b > a {
		panic(fmt.Sprintf("types: amount underflow: %d - %d", a, b))
	}
	return a - b
}

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool { return a == 0 }

// String returns the decimal representation.
func (a Amount) String() string { return strconv.FormatUint(uint64(a), 10) }

// SumChecked computes the overflow-checked sum of the given amounts.
// It reports false as soon as the running total would overflow.
func SumChecked(values ...Amount) (Amount, bool) {
	var total Amount
	for _, v := range values {
		next, ok := total.CheckedAdd(v)
		if !ok {
			return 0, false
		}
		total = next
	}
	return total, true
}
