package integrity

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

// NewClient creates a new integrity feature source client.
func NewClient(baseURL string) FeatureSource {
	return &APIClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		BaseURL:    baseURL,
	}
}

// Ensure APIClient implements the FeatureSource interface.
var _ FeatureSource = (*APIClient)(nil)

type scoreResponse struct {
	Score float64 `json:"score"`
}

// StylometryDeviation scores how far the code deviates from the player's
// historical style profile.
func (c *APIClient) StylometryDeviation(ctx context.Context, playerID, code string) (float64, error) {
	return c.score(ctx, "/v1/stylometry", map[string]string{"player_id": playerID, "code": code})
}

// LLMProbability scores how likely the code is machine-generated.
func (c *APIClient) LLMProbability(ctx context.Context, code string) (float64, error) {
	return c.score(ctx, "/v1/llm-probability", map[string]string{"code": code})
}

// BehavioralAnomaly scores the submission pattern against the player's
// historical behavior.
func (c *APIClient) BehavioralAnomaly(ctx context.Context, playerID string, meta SubmissionMeta) (float64, error) {
	return c.score(ctx, "/v1/behavioral", map[string]any{"player_id": playerID, "meta": meta})
}

func (c *APIClient) score(ctx context.Context, endpoint string, payload any) (float64, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal integrity request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+endpoint, bytes.NewReader(body))
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
		return 0, fmt.Errorf("%w: integrity model returned status %d", arena.ErrScorerUnavailable, resp.StatusCode)
	}

	var out scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("%w: failed to decode integrity response: %s", arena.ErrScorerUnavailable, err)
	}

	log.Debug("Fetched integrity feature", "endpoint", endpoint, "score", out.Score)
	return out.Score, nil
}
