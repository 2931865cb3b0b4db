package fees

import (
	"math"

	attendance "clubledger/internal/attendance/domain"
)

// Rates are the per-match applicable rates: video recording cost per full
// attendance, and the flat late-arrival penalty.
type Rates struct {
	VideoFee float64
	LateFee  float64
}

// Validate rejects non-finite or negative rates.
func (r Rates) Validate() error {
	if math.IsNaN(r.VideoFee) || math.IsInf(r.VideoFee, 0) || r.VideoFee < 0 {
		return &InvalidRateError{Name: "video", Value: r.VideoFee}
	}
	if math.IsNaN(r.LateFee) || math.IsInf(r.LateFee, 0) || r.LateFee < 0 {
		return &InvalidRateError{Name: "late", Value: r.LateFee}
	}
	return nil
}

// Result is one player's computed settlement for one match. Rounded
// components are whole currency units; the result is always replaced as a
// unit, never patched field by field.
type Result struct {
	PlayerID  string
	MatchID   string
	TotalTime float64
	FieldFee  int64
	LateFee   int64
	VideoFee  int64
	TotalFee  int64
}

// ComputePlayerFee computes one player's fee breakdown. scheduledCells is
// the number of sub-interval cells actually scheduled for the match; it is
// the denominator of the video fee share.
//
// Each component is rounded independently with RoundHalfUp and the total is
// the sum of the rounded components.
func ComputePlayerFee(playerID, matchID string, record attendance.Record, coefficient float64, rates Rates, scheduledCells int) (Result, error) {
	if playerID == "" {
		return Result{}, ErrEmptyPlayerID
	}
	if matchID == "" {
		return Result{}, ErrEmptyMatchID
	}
	if math.IsNaN(coefficient) || math.IsInf(coefficient, 0) || coefficient < 0 {
		return Result{}, &InvalidRateError{Name: "coefficient", Value: coefficient}
	}
	if err := rates.Validate(); err != nil {
		return Result{}, err
	}
	if scheduledCells <= 0 {
		return Result{}, ErrInvalidScheduledCells
	}
	if err := record.Validate(); err != nil {
		return Result{}, err
	}

	totalTime := record.TotalTime()

	fieldFee, err := RoundHalfUp(totalTime * coefficient)
	if err != nil {
		return Result{}, err
	}

	videoFee, err := RoundHalfUp(totalTime / float64(scheduledCells) * rates.VideoFee)
	if err != nil {
		return Result{}, err
	}

	var lateFee int64
	if record.IsLateArrival() {
		lateFee, err = RoundHalfUp(rates.LateFee)
		if err != nil {
			return Result{}, err
		}
	}

	return Result{
		PlayerID:  playerID,
		MatchID:   matchID,
		TotalTime: totalTime,
		FieldFee:  fieldFee,
		LateFee:   lateFee,
		VideoFee:  videoFee,
		TotalFee:  fieldFee + lateFee + videoFee,
	}, nil
}
