package integrity

import "context"

// FeatureSource defines the interface for the external models feeding the
// integrity analysis. Each score is on a 0-100 scale; a source failure is
// returned as an error and consumed as a zero score. This allows for mock
// implementations to be used in tests.
type FeatureSource interface {
	StylometryDeviation(ctx context.Context, playerID, code string) (float64, error)
	LLMProbability(ctx context.Context, code string) (float64, error)
	BehavioralAnomaly(ctx context.Context, playerID string, meta SubmissionMeta) (float64, error)
}
