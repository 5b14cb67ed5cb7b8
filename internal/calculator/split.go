package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	cent = decimal.New(1, -2)

	// SplitTolerance is how far custom splits may drift from the expense total.
	SplitTolerance = decimal.New(5, -3)
)

// EqualSplit divides total into n shares rounded down to cents and hands the
// leftover cents to the first shares, so the shares always sum to total exactly.
// Any sub-cent residue (totals with more than two decimals) goes to the first share.
func EqualSplit(total decimal.Decimal, n int) ([]decimal.Decimal, error) {
	if n <= 0 {
		return nil, fmt.Errorf("must have at least one member")
	}
	if !total.IsPositive() {
		return nil, fmt.Errorf("total must be positive")
	}

	count := decimal.NewFromInt(int64(n))
	base := total.Div(count).Truncate(2)
	shares := make([]decimal.Decimal, n)
	for i := range shares {
		shares[i] = base
	}

	remainder := total.Sub(base.Mul(count))
	for i := 0; remainder.GreaterThanOrEqual(cent); i = (i + 1) % n {
		shares[i] = shares[i].Add(cent)
		remainder = remainder.Sub(cent)
	}
	if !remainder.IsZero() {
		shares[0] = shares[0].Add(remainder)
	}
	return shares, nil
}

// SplitsMatch reports whether the custom split amounts sum to total within SplitTolerance.
func SplitsMatch(total decimal.Decimal, amounts []decimal.Decimal) bool {
	return Sum(amounts).Sub(total).Abs().LessThanOrEqual(SplitTolerance)
}

// Sum adds up amounts.
func Sum(amounts []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(a)
	}
	return sum
}

// Round rounds to cents. Only used when rendering values.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
