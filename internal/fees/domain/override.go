package fees

import "time"

// Override is a manually entered final fee that supersedes the computed
// total for one (player, match) pair. The computed baseline is retained
// unmodified so the correction stays auditable; at most one override is
// active per pair.
type Override struct {
	PlayerID  string
	MatchID   string
	Amount    float64
	Note      string
	CreatedBy string
	CreatedAt time.Time
}

// Validate enforces the audit requirement: every manual correction carries
// a justification note.
func (o Override) Validate() error {
	if o.PlayerID == "" {
		return ErrEmptyPlayerID
	}
	if o.MatchID == "" {
		return ErrEmptyMatchID
	}
	if o.Note == "" {
		return ErrMissingOverrideNote
	}
	return nil
}

// FinalFee reconciles a computed result with an optional override: the
// override amount wins when present, otherwise the computed total stands.
// Removing an override reverts to the computed value without recomputation.
func FinalFee(computed Result, override *Override) float64 {
	if override != nil {
		return override.Amount
	}
	return float64(computed.TotalFee)
}
