package challenge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
)

// NewClient creates a new challenge generator client.
func NewClient(baseURL string) GeneratorClient {
	return &APIClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		BaseURL:    baseURL,
	}
}

// Ensure APIClient implements the GeneratorClient interface.
var _ GeneratorClient = (*APIClient)(nil)

// GenerateChallenge requests a fresh challenge from the generator service.
func (c *APIClient) GenerateChallenge(ctx context.Context, difficulty string) (*Challenge, error) {
	endpoint := fmt.Sprintf("%s/v1/challenges?difficulty=%s", c.BaseURL, url.QueryEscape(difficulty))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	log.Debug("Requesting challenge from generator", "difficulty", difficulty)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching challenge from generator: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("generator returned status %d: %s", resp.StatusCode, string(body))
	}

	var ch Challenge
	if err := json.NewDecoder(resp.Body).Decode(&ch); err != nil {
		return nil, fmt.Errorf("failed to decode challenge: %w", err)
	}

	log.Info("Fetched challenge", "challengeID", ch.ID, "cases", ch.TotalCases())
	return &ch, nil
}
