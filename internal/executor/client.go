package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/codeclash/arena/internal/arena"
	"github.com/codeclash/arena/internal/challenge"
)

// NewClient creates a new executor client.
func NewClient(baseURL string) Executor {
	return &APIClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		BaseURL:    baseURL,
	}
}

// Ensure APIClient implements the Executor interface.
var _ Executor = (*APIClient)(nil)

type executeRequest struct {
	Code      string               `json:"code"`
	Language  string               `json:"language"`
	TestCases []challenge.TestCase `json:"test_cases"`
}

type executeResponse struct {
	Results []CaseResult `json:"results"`
	Error   string       `json:"error,omitempty"`
}

// Execute runs the code against the given test cases in the external sandbox
// and returns one result per case. Timeouts map to ErrExecutionTimeout, any
// other failure to ErrExecutionError.
func (c *APIClient) Execute(ctx context.Context, code, language string, testCases []challenge.TestCase) ([]CaseResult, error) {
	payload, err := json.Marshal(executeRequest{Code: code, Language: language, TestCases: testCases})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal execute request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/execute", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", arena.ErrExecutionTimeout, err)
		}
		return nil, fmt.Errorf("%w: %s", arena.ErrExecutionError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusGatewayTimeout {
		return nil, fmt.Errorf("%w: executor returned status %d", arena.ErrExecutionTimeout, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: executor returned status %d", arena.ErrExecutionError, resp.StatusCode)
	}

	var body executeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: failed to decode executor response: %s", arena.ErrExecutionError, err)
	}
	if body.Error != "" {
		return nil, fmt.Errorf("%w: %s", arena.ErrExecutionError, body.Error)
	}

	log.Debug("Executed submission", "language", language, "cases", len(body.Results))
	return body.Results, nil
}
