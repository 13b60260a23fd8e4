package scoring

import "context"

// Scorer defines the interface for the external AI code scoring models.
// Both scores are on a 0-100 scale. This allows for mock implementations to
// be used in tests.
type Scorer interface {
	ScoreQuality(ctx context.Context, code string) (float64, error)
	ScoreComplexity(ctx context.Context, code string) (float64, error)
}
