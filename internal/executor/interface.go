package executor

import (
	"context"

	"github.com/codeclash/arena/internal/challenge"
)

// Executor defines the interface for running code against test cases in the
// external sandbox. This allows for mock implementations to be used in tests.
type Executor interface {
	Execute(ctx context.Context, code, language string, testCases []challenge.TestCase) ([]CaseResult, error)
}
