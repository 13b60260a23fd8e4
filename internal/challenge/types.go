package challenge

import (
	"net/http"
)

// APIClient talks to the external challenge generator service.
type APIClient struct {
	httpClient *http.Client
	BaseURL    string
}

// TestCase is one test case of a challenge. Hidden cases are never shown to
// players but count toward the test case score.
type TestCase struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
	Hidden   bool   `json:"hidden"`
}

// Challenge is the document handed to both players of a match.
type Challenge struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Prompt           string     `json:"prompt"`
	Difficulty       string     `json:"difficulty"`
	TestCases        []TestCase `json:"test_cases"`
	TimeLimitSeconds int        `json:"time_limit_seconds"`
}

// TotalCases returns the total test case count, hidden cases included.
func (c *Challenge) TotalCases() int {
	return len(c.TestCases)
}
