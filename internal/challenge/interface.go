package challenge

import "context"

// GeneratorClient defines the interface for fetching generated challenges.
// This allows for mock implementations to be used in tests.
type GeneratorClient interface {
	GenerateChallenge(ctx context.Context, difficulty string) (*Challenge, error)
}
