package legacyapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"aircatalog/internal/models"

	"go.uber.org/zap"
)

const pageLimit = 100

// Client for the legacy mock city API. Requests carry a bearer token
// obtained from a login call; the token is refreshed when it expires or
// the API answers 401.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	logger     *zap.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
	now         func() time.Time
}

func NewClient(baseURL, username, password string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:  baseURL,
		username: username,
		password: password,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
		now:    time.Now,
	}
}

func (c *Client) Name() string { return string(models.SourceLegacyAPI) }

func (c *Client) login(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	body, err := json.Marshal(map[string]string{
		"username": c.username,
		"password": c.password,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to login to legacy api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("legacy api login returned status: %d", resp.StatusCode)
	}

	var response struct {
		Token     string `json:"token"`
		ExpiresIn int64  `json:"expiresIn"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode login response: %w", err)
	}

	c.token = response.Token
	// Renew a little early so in-flight requests don't race the expiry.
	c.tokenExpiry = c.now().Add(time.Duration(response.ExpiresIn)*time.Second - 30*time.Second)
	c.logger.Debug("Obtained legacy api token", zap.Time("expiry", c.tokenExpiry))
	return c.token, nil
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// Fetch walks every page of the legacy API for the country and returns
// the normalized raw records. Rows arrive with inconsistent field names;
// NormalizeRaw maps the aliases at this boundary.
func (c *Client) Fetch(ctx context.Context, countryCode string) ([]models.RawRecord, error) {
	var records []models.RawRecord

	for page := 1; ; page++ {
		rows, totalPages, err := c.fetchPage(ctx, countryCode, page)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			records = append(records, models.NormalizeRaw(row, models.SourceLegacyAPI))
		}
		if len(rows) == 0 || page >= totalPages {
			break
		}
	}

	c.logger.Info("Fetched records from legacy api",
		zap.String("country", countryCode),
		zap.Int("count", len(records)))
	return records, nil
}

func (c *Client) fetchPage(ctx context.Context, countryCode string, page int) ([]map[string]any, int, error) {
	rows, totalPages, status, err := c.doPage(ctx, countryCode, page)
	if status == http.StatusUnauthorized {
		// Token expired server-side; refresh once and retry.
		c.invalidateToken()
		rows, totalPages, status, err = c.doPage(ctx, countryCode, page)
	}
	if err != nil {
		return nil, 0, err
	}
	if status != http.StatusOK {
		return nil, 0, fmt.Errorf("legacy api returned status: %d", status)
	}
	return rows, totalPages, nil
}

func (c *Client) doPage(ctx context.Context, countryCode string, page int) ([]map[string]any, int, int, error) {
	token, err := c.login(ctx)
	if err != nil {
		return nil, 0, 0, err
	}

	reqURL := fmt.Sprintf("%s/cities?country=%s&page=%d&limit=%d",
		c.baseURL, url.QueryEscape(countryCode), page, pageLimit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to create legacy api request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to reach legacy api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, resp.StatusCode, nil
	}

	var response struct {
		Cities     []map[string]any `json:"cities"`
		TotalPages int              `json:"totalPages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, 0, 0, fmt.Errorf("failed to decode legacy api response: %w", err)
	}
	return response.Cities, response.TotalPages, http.StatusOK, nil
}
