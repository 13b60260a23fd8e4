package pipeline

import (
	"context"

	"github.com/codeclash/arena/internal/arena"
	"github.com/codeclash/arena/internal/challenge"
)

// Evaluator defines the interface for driving one submission through the
// evaluation pipeline. This allows for mock implementations to be used in
// tests.
type Evaluator interface {
	Evaluate(ctx context.Context, sub *arena.CodeSubmission, ch *challenge.Challenge) arena.EvaluationResult
}
