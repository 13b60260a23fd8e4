package pipeline

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/codeclash/arena/internal/arena"
	"github.com/codeclash/arena/internal/challenge"
	"github.com/codeclash/arena/internal/executor"
	"github.com/codeclash/arena/internal/metrics"
	"github.com/codeclash/arena/internal/scoring"
)

// Pipeline drives a submission through execution and AI scoring.
type Pipeline struct {
	executor executor.Executor
	scorer   scoring.Scorer
	metrics  metrics.Metrics
}

// New creates a new Pipeline.
func New(exec executor.Executor, scorer scoring.Scorer, metrics metrics.Metrics) *Pipeline {
	return &Pipeline{
		executor: exec,
		scorer:   scorer,
		metrics:  metrics,
	}
}

var _ Evaluator = (*Pipeline)(nil)

// Evaluate runs all three metrics for a submission. Quality and complexity
// are always computed, even when no test case passes: the tie-break chain
// and code review both need them. An external failure degrades the affected
// metric to zero rather than failing the evaluation; the result then carries
// an error status. Re-evaluating an unchanged submission yields the same
// result as long as the external scorers are deterministic for equal inputs.
func (p *Pipeline) Evaluate(ctx context.Context, sub *arena.CodeSubmission, ch *challenge.Challenge) arena.EvaluationResult {
	result := arena.EvaluationResult{
		Status:     arena.EvalStatusOK,
		TotalCases: ch.TotalCases(),
	}

	caseResults, err := p.executor.Execute(ctx, sub.Code, sub.Language, ch.TestCases)
	if err != nil {
		log.Error("Executor failed, degrading test case score to zero", "error", err, "submissionID", sub.ID)
		p.metrics.IncEvaluationErrors()
		result.Status = arena.EvalStatusError
	} else {
		for _, cr := range caseResults {
			if cr.Passed {
				result.PassedCases++
			}
		}
		if result.TotalCases > 0 {
			result.TestCaseScore = 100 * float64(result.PassedCases) / float64(result.TotalCases)
		}
	}

	if quality, err := p.scorer.ScoreQuality(ctx, sub.Code); err != nil {
		log.Error("Quality scorer failed, degrading score to zero", "error", err, "submissionID", sub.ID)
		p.metrics.IncEvaluationErrors()
	} else {
		result.AIQualityScore = clamp(quality)
	}

	if complexity, err := p.scorer.ScoreComplexity(ctx, sub.Code); err != nil {
		log.Error("Complexity scorer failed, degrading score to zero", "error", err, "submissionID", sub.ID)
		p.metrics.IncEvaluationErrors()
	} else {
		result.ComplexityScore = clamp(complexity)
	}

	log.Debug("Evaluated submission", "submissionID", sub.ID, "status", result.Status,
		"testCaseScore", result.TestCaseScore, "quality", result.AIQualityScore, "complexity", result.ComplexityScore)
	return result
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
