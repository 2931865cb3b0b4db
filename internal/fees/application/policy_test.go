package application

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPolicy_Defaults(t *testing.T) {
	t.Setenv("FEE_POLICY_CONFIG", "")
	t.Setenv("FEE_CURRENCY", "")
	t.Setenv("VIDEO_FEE_RATE", "")
	t.Setenv("LATE_FEE_RATE", "")
	t.Setenv("FEE_SCHEDULED_CELLS", "")

	policy, err := LoadPolicy()
	if err != nil {
		t.Fatalf("load policy: %v", err)
	}
	if policy.VideoFeeRate != 2 || policy.LateFeeRate != 10 {
		t.Fatalf("default rates mismatch: %+v", policy)
	}
	if policy.ScheduledCells != 9 {
		t.Fatalf("default scheduled cells mismatch: %+v", policy)
	}
}

func TestLoadPolicy_YAMLOverridesEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	content := []byte("currency: EUR\nscheduled_cells: 3\nvideo_fee_rate: 2.5\nlate_fee_rate: 5\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write policy file: %v", err)
	}
	t.Setenv("FEE_POLICY_CONFIG", path)
	t.Setenv("VIDEO_FEE_RATE", "99")

	policy, err := LoadPolicy()
	if err != nil {
		t.Fatalf("load policy: %v", err)
	}
	if policy.Currency != "EUR" || policy.ScheduledCells != 3 || policy.VideoFeeRate != 2.5 || policy.LateFeeRate != 5 {
		t.Fatalf("yaml policy mismatch: %+v", policy)
	}
}

func TestLoadPolicy_RejectsNegativeRates(t *testing.T) {
	t.Setenv("FEE_POLICY_CONFIG", "")
	t.Setenv("LATE_FEE_RATE", "-1")
	if _, err := LoadPolicy(); err == nil {
		t.Fatal("expected error for negative late fee rate")
	}
}
