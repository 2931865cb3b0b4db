package fees

import (
	"math"

	"github.com/cockroachdb/apd/v3"
)

// RoundHalfUp rounds a monetary value to the nearest whole currency unit,
// with exact halves rounding away from zero. This is the club's single
// rounding policy: each fee component is rounded on its own and the rounded
// components are then summed (round-then-sum). Callers must never sum raw
// components and round the total; borderline inputs near a .5 boundary
// produce different totals under the two orders.
func RoundHalfUp(value float64) (int64, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, ErrNonFiniteAmount
	}

	var d apd.Decimal
	if _, err := d.SetFloat64(value); err != nil {
		return 0, err
	}

	ctx := apd.BaseContext.WithPrecision(34)
	ctx.Rounding = apd.RoundHalfUp

	var rounded apd.Decimal
	if _, err := ctx.Quantize(&rounded, &d, 0); err != nil {
		return 0, err
	}
	return rounded.Int64()
}
