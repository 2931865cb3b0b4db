package fees

import "math"

// NominalMatchTimeUnits is the fixed denominator for the per-unit cost rate:
// the nominal playable time units of one match. It is deliberately not the
// sum of actual attendance, so the rate stays stable regardless of turnout
// and attendance edits never retroactively change everyone's rate.
const NominalMatchTimeUnits = 90

// ComputeCoefficient derives the per-time-unit cost rate for a match from
// its field and water totals. Negative totals are a caller validation
// failure, not a silent clamp.
func ComputeCoefficient(fieldFeeTotal, waterFeeTotal float64) (float64, error) {
	if math.IsNaN(fieldFeeTotal) || math.IsInf(fieldFeeTotal, 0) ||
		math.IsNaN(waterFeeTotal) || math.IsInf(waterFeeTotal, 0) {
		return 0, ErrNonFiniteCost
	}
	if fieldFeeTotal < 0 || waterFeeTotal < 0 {
		return 0, ErrNegativeCost
	}
	return (fieldFeeTotal + waterFeeTotal) / NominalMatchTimeUnits, nil
}
