package liveapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"aircatalog/internal/aqi"
	"aircatalog/internal/models"

	"go.uber.org/zap"
)

// StatusError reports a non-2xx response from the live API. Callers can
// distinguish it from transport errors when deciding whether to fall
// through to the next source.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("live api returned status: %d", e.Code)
}

// Client for the live air-quality measurement API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new live API client. apiKey may be empty; the
// header is only sent when set.
func NewClient(baseURL, apiKey string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

func (c *Client) Name() string { return string(models.SourceLiveAPI) }

type location struct {
	Name        string `json:"name"`
	Country     string `json:"country"`
	Coordinates *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"coordinates"`
	Sensors []sensor `json:"sensors"`
}

type sensor struct {
	Parameter struct {
		Name string `json:"name"`
	} `json:"parameter"`
	Latest *struct {
		Value float64 `json:"value"`
	} `json:"latest"`
}

// Fetch queries one bounded page of locations for the country and
// transforms them into raw records. A sensor without a current
// measurement contributes the parameter's default value.
func (c *Client) Fetch(ctx context.Context, countryCode string) ([]models.RawRecord, error) {
	reqURL := fmt.Sprintf("%s/v3/locations?country=%s&limit=1000", c.baseURL, url.QueryEscape(countryCode))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create live api request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to reach live api", zap.Error(err))
		return nil, fmt.Errorf("failed to reach live api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Live api returned non-OK status", zap.Int("status", resp.StatusCode))
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var response struct {
		Results []location `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode live api response: %w", err)
	}

	records := make([]models.RawRecord, 0, len(response.Results))
	for _, loc := range response.Results {
		value, ok := pollutionFromSensors(loc.Sensors)
		if !ok {
			continue
		}
		record := models.RawRecord{
			Name:         loc.Name,
			Country:      countryCode,
			Pollution:    value,
			HasName:      loc.Name != "",
			HasCountry:   true,
			HasPollution: true,
			Source:       models.SourceLiveAPI,
		}
		if loc.Coordinates != nil {
			lat, lon := loc.Coordinates.Latitude, loc.Coordinates.Longitude
			record.Lat, record.Lon = &lat, &lon
		}
		records = append(records, record)
	}

	c.logger.Info("Fetched locations from live api",
		zap.String("country", countryCode),
		zap.Int("count", len(records)))
	return records, nil
}

// pollutionFromSensors derives the pollution figure from a location's
// sensors: PM10 preferred, then PM2.5 scaled by the conversion factor.
// A sensor with no current measurement uses its parameter default.
func pollutionFromSensors(sensors []sensor) (float64, bool) {
	read := func(param string) (float64, bool) {
		for _, s := range sensors {
			if s.Parameter.Name != param {
				continue
			}
			if s.Latest != nil {
				return s.Latest.Value, true
			}
			return aqi.DefaultValue(param), true
		}
		return 0, false
	}

	if v, ok := read(aqi.ParamPM10); ok {
		return v, true
	}
	if v, ok := read(aqi.ParamPM25); ok {
		return v * aqi.PM25ToPM10Factor, true
	}
	return 0, false
}
