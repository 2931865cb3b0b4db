package roster

import "testing"

func TestResultFromScore(t *testing.T) {
	cases := []struct {
		goalsFor, goalsAgainst int
		want                   Result
	}{
		{3, 1, ResultWin},
		{2, 2, ResultDraw},
		{0, 4, ResultLoss},
	}
	for _, tc := range cases {
		if got := ResultFromScore(tc.goalsFor, tc.goalsAgainst); got != tc.want {
			t.Fatalf("result for %d-%d: got=%s want=%s", tc.goalsFor, tc.goalsAgainst, got, tc.want)
		}
	}
}
