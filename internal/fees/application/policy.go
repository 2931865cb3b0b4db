package application

import (
	"errors"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	attendance "clubledger/internal/attendance/domain"
)

// Policy holds the club-level fee policy knobs that sit outside match data:
// display currency, the default video-fee denominator, and the rate
// fallbacks used when no persisted setting exists.
type Policy struct {
	Currency       string  `yaml:"currency"`
	ScheduledCells int     `yaml:"scheduled_cells"`
	VideoFeeRate   float64 `yaml:"video_fee_rate"`
	LateFeeRate    float64 `yaml:"late_fee_rate"`
}

// LoadPolicy loads the fee policy from yaml (FEE_POLICY_CONFIG) or env.
func LoadPolicy() (Policy, error) {
	policy := Policy{
		Currency:       getenvDefault("FEE_CURRENCY", "CNY"),
		ScheduledCells: getenvIntDefault("FEE_SCHEDULED_CELLS", attendance.CellCount),
		VideoFeeRate:   getenvFloatDefault("VIDEO_FEE_RATE", 2),
		LateFeeRate:    getenvFloatDefault("LATE_FEE_RATE", 10),
	}

	if path := os.Getenv("FEE_POLICY_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return policy, err
		}
		if err := yaml.Unmarshal(data, &policy); err != nil {
			return policy, err
		}
	}

	if policy.ScheduledCells <= 0 {
		return policy, errors.New("fee policy: scheduled cells must be positive")
	}
	if policy.VideoFeeRate < 0 || policy.LateFeeRate < 0 {
		return policy, errors.New("fee policy: negative rate")
	}
	return policy, nil
}

func getenvDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvFloatDefault(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
