package integrity

// Aggregation weights and policy thresholds. Stylometry and LLM likeness
// dominate; behavioral drift is a weaker corroborating signal.
const (
	weightStylometry = 0.4
	weightLLM        = 0.4
	weightBehavioral = 0.2

	softFlagThreshold = 70
	hardFlagThreshold = 85
)

// Analyze combines the three feature scores into an overall cheat
// probability and a policy action. It is stateless and must be invoked
// exactly once per match on each player's final submission, after both
// final results are known. The overall probability is monotonically
// non-decreasing in each input.
func Analyze(signals Signals) (float64, Action) {
	overall := weightStylometry*signals.Stylometry +
		weightLLM*signals.LLMProbability +
		weightBehavioral*signals.Behavioral
	if overall < 0 {
		overall = 0
	}
	if overall > 100 {
		overall = 100
	}

	switch {
	case overall >= hardFlagThreshold:
		return overall, ActionHardFlag
	case overall >= softFlagThreshold:
		return overall, ActionSoftFlag
	default:
		return overall, ActionNone
	}
}
