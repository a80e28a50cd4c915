package models

import "strings"

// SourceTag identifies which upstream provider a record came from.
type SourceTag string

const (
	SourceHistoricalStore SourceTag = "historical_store"
	SourceLiveAPI         SourceTag = "live_api"
	SourceLegacyAPI       SourceTag = "legacy_api"
)

// RawRecord is the normalized shape of an upstream row before validation.
// Upstream payloads use inconsistent field names; NormalizeRaw maps all
// known aliases into this one shape so later stages never see aliases.
type RawRecord struct {
	Name         string
	Country      string
	Pollution    float64
	HasName      bool
	HasCountry   bool
	HasPollution bool
	Lat          *float64
	Lon          *float64
	Source       SourceTag
}

var (
	nameAliases      = []string{"city", "name", "cityName"}
	countryAliases   = []string{"country", "countryCode", "nation"}
	pollutionAliases = []string{"aqi", "pollution", "airQualityIndex"}
)

// NormalizeRaw maps a loosely-typed upstream row into a RawRecord.
// Unknown fields are ignored; missing fields leave the corresponding
// Has* flag false for the validator's presence check.
func NormalizeRaw(row map[string]any, source SourceTag) RawRecord {
	raw := RawRecord{Source: source}

	for _, key := range nameAliases {
		if v, ok := row[key].(string); ok && v != "" {
			raw.Name = v
			raw.HasName = true
			break
		}
	}
	for _, key := range countryAliases {
		if v, ok := row[key].(string); ok && v != "" {
			raw.Country = v
			raw.HasCountry = true
			break
		}
	}
	for _, key := range pollutionAliases {
		if v, ok := asFloat(row[key]); ok {
			raw.Pollution = v
			raw.HasPollution = true
			break
		}
	}

	if v, ok := asFloat(row["lat"]); ok {
		raw.Lat = &v
	}
	if v, ok := asFloat(row["lon"]); ok {
		raw.Lon = &v
	}

	return raw
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// CityRecord is the pipeline-internal value object. Each stage consumes
// its input slice and produces a new one; records are never shared.
type CityRecord struct {
	RawName        string    `json:"-"`
	CanonicalName  string    `json:"name"`
	Country        string    `json:"country"`
	CountryName    string    `json:"country_name,omitempty"`
	PollutionValue float64   `json:"pollution"`
	AQILevel       string    `json:"aqi_level,omitempty"`
	Lat            *float64  `json:"lat,omitempty"`
	Lon            *float64  `json:"lon,omitempty"`
	Source         SourceTag `json:"source"`
	Description    string    `json:"description,omitempty"`
}

// DedupeKey is the identity a city record carries through duplicate
// resolution and reputation checks.
func (c CityRecord) DedupeKey() string {
	return strings.ToLower(c.CanonicalName) + "_" + c.Country
}
