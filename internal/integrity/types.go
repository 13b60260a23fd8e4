package integrity

import "net/http"

// APIClient talks to the external integrity feature models.
type APIClient struct {
	httpClient *http.Client
	BaseURL    string
}

// Action is the policy outcome of an integrity analysis.
type Action string

const (
	ActionNone     Action = "none"
	ActionSoftFlag Action = "soft_flag"
	ActionHardFlag Action = "hard_flag"
)

// Signals holds the three raw feature scores for one final submission,
// each on a 0-100 scale and independently sourced.
type Signals struct {
	Stylometry     float64 `json:"stylometry_score"`
	LLMProbability float64 `json:"llm_probability_score"`
	Behavioral     float64 `json:"behavioral_anomaly_score"`
}

// SubmissionMeta is the behavioral footprint handed to the anomaly model.
type SubmissionMeta struct {
	MatchID         string  `json:"match_id"`
	SubmissionCount int     `json:"submission_count"`
	FirstSubmitSecs float64 `json:"first_submit_secs"`
	FinalSubmitSecs float64 `json:"final_submit_secs"`
	CodeLength      int     `json:"code_length"`
}
