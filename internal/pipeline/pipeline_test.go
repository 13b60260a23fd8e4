package pipeline

import (
	"context"
	"testing"

	"github.com/codeclash/arena/internal/arena"
	"github.com/codeclash/arena/internal/challenge"
	"github.com/codeclash/arena/internal/executor"
	"github.com/codeclash/arena/internal/metrics"
	"github.com/codeclash/arena/internal/scoring"
	"github.com/stretchr/testify/assert"
)

func testSubmission() *arena.CodeSubmission {
	return &arena.CodeSubmission{ID: "sub-1", PlayerID: "alice", Code: "print(1)", Language: "python"}
}

func fourCaseChallenge() *challenge.Challenge {
	return &challenge.Challenge{
		ID: "challenge-1",
		TestCases: []challenge.TestCase{
			{Input: "1", Expected: "1"},
			{Input: "2", Expected: "2"},
			{Input: "3", Expected: "3"},
			{Input: "4", Expected: "4", Hidden: true},
		},
	}
}

func TestEvaluate(t *testing.T) {
	t.Run("should score the passed case fraction on a 0-100 scale", func(t *testing.T) {
		exec := executor.NewMock()
		exec.ExecuteFunc = func(ctx context.Context, code, language string, cases []challenge.TestCase) ([]executor.CaseResult, error) {
			return []executor.CaseResult{{Passed: true}, {Passed: true}, {Passed: true}, {Passed: false}}, nil
		}
		scorer := scoring.NewMock()
		scorer.ScoreQualityFunc = func(ctx context.Context, code string) (float64, error) { return 80, nil }
		scorer.ScoreComplexityFunc = func(ctx context.Context, code string) (float64, error) { return 65, nil }

		p := New(exec, scorer, metrics.NewMock())
		result := p.Evaluate(context.Background(), testSubmission(), fourCaseChallenge())

		assert.Equal(t, arena.EvalStatusOK, result.Status)
		assert.Equal(t, 3, result.PassedCases)
		assert.Equal(t, 4, result.TotalCases)
		assert.InDelta(t, 75.0, result.TestCaseScore, 1e-9)
		assert.Equal(t, 80.0, result.AIQualityScore)
		assert.Equal(t, 65.0, result.ComplexityScore)
	})

	t.Run("should degrade an executor failure to an error result with zero score", func(t *testing.T) {
		exec := executor.NewMock()
		exec.ExecuteFunc = func(ctx context.Context, code, language string, cases []challenge.TestCase) ([]executor.CaseResult, error) {
			return nil, arena.ErrExecutionTimeout
		}
		scorer := scoring.NewMock()
		scorer.ScoreQualityFunc = func(ctx context.Context, code string) (float64, error) { return 40, nil }
		m := metrics.NewMock()

		p := New(exec, scorer, m)
		result := p.Evaluate(context.Background(), testSubmission(), fourCaseChallenge())

		assert.Equal(t, arena.EvalStatusError, result.Status)
		assert.Equal(t, 0.0, result.TestCaseScore)
		// Quality and complexity still land for review and tie-breaking.
		assert.Equal(t, 40.0, result.AIQualityScore)
		assert.Equal(t, 1, m.EvaluationErrors())
	})

	t.Run("should degrade scorer failures to zero without failing the result", func(t *testing.T) {
		exec := executor.NewMock()
		scorer := scoring.NewMock()
		scorer.ScoreQualityFunc = func(ctx context.Context, code string) (float64, error) { return 0, arena.ErrScorerUnavailable }
		scorer.ScoreComplexityFunc = func(ctx context.Context, code string) (float64, error) { return 0, arena.ErrScorerUnavailable }
		m := metrics.NewMock()

		p := New(exec, scorer, m)
		result := p.Evaluate(context.Background(), testSubmission(), fourCaseChallenge())

		assert.Equal(t, arena.EvalStatusOK, result.Status)
		assert.Equal(t, 0.0, result.AIQualityScore)
		assert.Equal(t, 0.0, result.ComplexityScore)
		assert.Equal(t, 2, m.EvaluationErrors())
	})

	t.Run("should clamp out-of-range scorer values", func(t *testing.T) {
		exec := executor.NewMock()
		scorer := scoring.NewMock()
		scorer.ScoreQualityFunc = func(ctx context.Context, code string) (float64, error) { return 140, nil }
		scorer.ScoreComplexityFunc = func(ctx context.Context, code string) (float64, error) { return -5, nil }

		p := New(exec, scorer, metrics.NewMock())
		result := p.Evaluate(context.Background(), testSubmission(), fourCaseChallenge())

		assert.Equal(t, 100.0, result.AIQualityScore)
		assert.Equal(t, 0.0, result.ComplexityScore)
	})
}
