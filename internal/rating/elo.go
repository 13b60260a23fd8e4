package rating

import "math"

// KFactor controls how far a single match can move a rating.
const KFactor = 32

// ExpectedScore returns the expected outcome for a player rated `rating`
// against an opponent rated `opponent`, in [0,1].
func ExpectedScore(rating, opponent int) float64 {
	return 1 / (1 + math.Pow(10, float64(opponent-rating)/400))
}

// Next returns the player's new rating given their actual score for the
// match: 1 for a win, 0.5 for a draw, 0 for a loss.
func Next(rating, opponent int, score float64) int {
	return rating + int(math.Round(KFactor*(score-ExpectedScore(rating, opponent))))
}
