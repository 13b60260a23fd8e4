package executor

import "net/http"

// APIClient talks to the external isolated code execution service.
type APIClient struct {
	httpClient *http.Client
	BaseURL    string
}

// CaseResult is the outcome of running one test case.
type CaseResult struct {
	Passed bool   `json:"passed"`
	Output string `json:"output"`
	TimeMs int64  `json:"time_ms"`
}
