// Package calculator implements the pure money math of the settlement core:
// equal per-member shares and the derived settled/outstanding/remaining state.
// Everything here is decimal arithmetic; binary floating point would drift off
// the half-up-to-cent rounding contract.
package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// EqualShare computes the per-head share of total split among memberCount
// members, rounded half-up to the cent.
//
// The rounded shares may overshoot the total by up to memberCount-1 cents
// (e.g. 100.00 / 3 = 33.34 each, 100.02 across three members). The remainder
// is not redistributed; callers that care compare ShareTotal against the
// bill total.
func EqualShare(total decimal.Decimal, memberCount int) (decimal.Decimal, error) {
	if memberCount <= 0 {
		return decimal.Zero, fmt.Errorf("must have at least one member")
	}
	if total.IsNegative() {
		return decimal.Zero, fmt.Errorf("total cannot be negative")
	}

	// Round is half away from zero, which for non-negative money is half-up.
	return total.Div(decimal.NewFromInt(int64(memberCount))).Round(2), nil
}

// SumAmounts returns the exact sum of the given amounts.
func SumAmounts(amounts []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(a)
	}
	return sum
}
