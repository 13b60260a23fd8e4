package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/codeclash/arena/internal/arena"
)

// APIClient talks to the external AI scoring service.
type APIClient struct {
	httpClient *http.Client
	BaseURL    string
}

// NewClient creates a new scorer client.
func NewClient(baseURL string) Scorer {
	return &APIClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		BaseURL:    baseURL,
	}
}

// Ensure APIClient implements the Scorer interface.
var _ Scorer = (*APIClient)(nil)

type scoreRequest struct {
	Code string `json:"code"`
}

type scoreResponse struct {
	Score float64 `json:"score"`
}

// ScoreQuality returns the AI quality score for the code.
func (c *APIClient) ScoreQuality(ctx context.Context, code string) (float64, error) {
	return c.score(ctx, "/v1/score/quality", code)
}

// ScoreComplexity returns the complexity score for the code.
func (c *APIClient) ScoreComplexity(ctx context.Context, code string) (float64, error) {
	return c.score(ctx, "/v1/score/complexity", code)
}

func (c *APIClient) score(ctx context.Context, endpoint, code string) (float64, error) {
	payload, err := json.Marshal(scoreRequest{Code: code})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal score request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", arena.ErrScorerUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: scorer returned status %d", arena.ErrScorerUnavailable, resp.StatusCode)
	}

	var body scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("%w: failed to decode scorer response: %s", arena.ErrScorerUnavailable, err)
	}

	log.Debug("Scored submission", "endpoint", endpoint, "score", body.Score)
	return body.Score, nil
}
