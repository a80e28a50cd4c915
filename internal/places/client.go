package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Candidate is one resolved place from the lookup service, with its
// entity type tags.
type Candidate struct {
	Name  string   `json:"name"`
	Types []string `json:"types"`
}

// Lookup is the canonicalization contract the validator consumes.
type Lookup interface {
	Resolve(ctx context.Context, name string) (*Candidate, error)
}

// Place types that qualify as an actual city or region. Establishments,
// POIs and districts do not.
var localityTypes = map[string]bool{
	"locality":                    true,
	"administrative_area_level_1": true,
	"administrative_area_level_2": true,
	"region":                      true,
}

// IsLocality reports whether any of the candidate's type tags marks it
// as a city/town-level entity.
func (c *Candidate) IsLocality() bool {
	for _, t := range c.Types {
		if localityTypes[t] {
			return true
		}
	}
	return false
}

// Client queries the place-resolution service for canonical city names.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL, apiKey string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Resolve returns the top-ranked candidate for a name, or nil when the
// service knows no such place.
func (c *Client) Resolve(ctx context.Context, name string) (*Candidate, error) {
	reqURL := fmt.Sprintf("%s/v1/places?query=%s", c.baseURL, url.QueryEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create places request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Failed to reach places service", zap.Error(err))
		return nil, fmt.Errorf("failed to reach places service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places service returned status: %d", resp.StatusCode)
	}

	var response struct {
		Candidates []Candidate `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode places response: %w", err)
	}
	if len(response.Candidates) == 0 {
		return nil, nil
	}

	// Only the top-ranked candidate is used.
	top := response.Candidates[0]
	return &top, nil
}
