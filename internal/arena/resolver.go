package arena

import "time"

// Verdict is the outcome of comparing two final results.
type Verdict struct {
	WinnerID string `json:"winner_id,omitempty"`
	Draw     bool   `json:"draw"`
	// DecidedBy names the first metric in the tie-break chain that differed.
	DecidedBy string `json:"decided_by"`
}

// Resolve deterministically picks a winner from two final results. Each
// metric is consulted only when every earlier one compares exactly equal:
// test case score, AI quality score, complexity score, then the earlier
// submission timestamp; if all four tie the match is a draw.
//
// The order of the two arguments never changes the outcome.
func Resolve(playerA string, resultA EvaluationResult, tsA time.Time, playerB string, resultB EvaluationResult, tsB time.Time) Verdict {
	if resultA.TestCaseScore != resultB.TestCaseScore {
		return pick(playerA, playerB, resultA.TestCaseScore > resultB.TestCaseScore, "test_case_score")
	}
	if resultA.AIQualityScore != resultB.AIQualityScore {
		return pick(playerA, playerB, resultA.AIQualityScore > resultB.AIQualityScore, "ai_quality_score")
	}
	if resultA.ComplexityScore != resultB.ComplexityScore {
		return pick(playerA, playerB, resultA.ComplexityScore > resultB.ComplexityScore, "complexity_score")
	}
	if !tsA.Equal(tsB) {
		return pick(playerA, playerB, tsA.Before(tsB), "submission_time")
	}
	return Verdict{Draw: true, DecidedBy: "draw"}
}

func pick(playerA, playerB string, aWins bool, metric string) Verdict {
	if aWins {
		return Verdict{WinnerID: playerA, DecidedBy: metric}
	}
	return Verdict{WinnerID: playerB, DecidedBy: metric}
}
