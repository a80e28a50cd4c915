package textlookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Lookup is the free-text extract contract the enrichment engine
// consumes.
type Lookup interface {
	Extract(ctx context.Context, title string) (string, error)
}

// Client fetches short descriptive extracts from a wiki-style summary
// API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Extract returns the summary extract for a title, or "" when the title
// is unknown. Only transport and protocol failures are errors.
func (c *Client) Extract(ctx context.Context, title string) (string, error) {
	reqURL := fmt.Sprintf("%s/page/summary/%s", c.baseURL, url.PathEscape(title))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create summary request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Failed to reach text lookup service", zap.Error(err))
		return "", fmt.Errorf("failed to reach text lookup service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("text lookup service returned status: %d", resp.StatusCode)
	}

	var response struct {
		Extract string `json:"extract"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode summary response: %w", err)
	}
	return response.Extract, nil
}
