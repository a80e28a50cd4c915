package validator

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode"

	"aircatalog/internal/cache"
	"aircatalog/internal/metrics"
	"aircatalog/internal/models"
	"aircatalog/internal/places"

	"go.uber.org/zap"
)

// RejectReason classifies why a raw record was dropped.
type RejectReason string

const (
	ReasonMissingFields    RejectReason = "missing_fields"
	ReasonInvalidName      RejectReason = "invalid_name"
	ReasonInvalidCityType  RejectReason = "invalid_city_type"
	ReasonInvalidCountry   RejectReason = "invalid_country"
	ReasonInvalidPollution RejectReason = "invalid_pollution"
)

// RejectError carries the classification for a dropped record.
type RejectError struct {
	Reason RejectReason
	Detail string
}

func (e *RejectError) Error() string {
	if e.Detail == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

func reject(reason RejectReason, detail string) error {
	metrics.RecordsRejected.WithLabelValues(string(reason)).Inc()
	return &RejectError{Reason: reason, Detail: detail}
}

const (
	minNameLength = 2
	maxNameLength = 100
)

// Validator qualifies raw records and canonicalizes their names through
// the places lookup. Lookup results, positive and negative, are cached
// since name mappings are stable.
type Validator struct {
	lookup    places.Lookup
	cache     *cache.Namespace
	countries *models.CountrySet
	logger    *zap.Logger
}

// canonResult is the cached outcome of one canonicalization lookup.
type canonResult struct {
	CanonicalName string
	IsLocality    bool
	Found         bool
}

func New(lookup places.Lookup, validationCache *cache.Namespace, countries *models.CountrySet, logger *zap.Logger) *Validator {
	return &Validator{
		lookup:    lookup,
		cache:     validationCache,
		countries: countries,
		logger:    logger,
	}
}

// Validate runs the check sequence over one raw record; the first
// failure wins. On success the returned CityRecord carries the
// canonicalized name and the resolved country code.
func (v *Validator) Validate(ctx context.Context, raw models.RawRecord) (models.CityRecord, error) {
	if !raw.HasName || !raw.HasCountry || !raw.HasPollution {
		return models.CityRecord{}, reject(ReasonMissingFields, "")
	}

	name := strings.TrimSpace(raw.Name)
	if err := checkNameShape(name); err != nil {
		return models.CityRecord{}, err
	}

	canonical, err := v.canonicalize(ctx, name)
	if err != nil {
		return models.CityRecord{}, err
	}

	country, ok := v.countries.Resolve(raw.Country)
	if !ok {
		return models.CityRecord{}, reject(ReasonInvalidCountry, raw.Country)
	}

	if math.IsNaN(raw.Pollution) || math.IsInf(raw.Pollution, 0) ||
		raw.Pollution < 0 || raw.Pollution > 1000 {
		return models.CityRecord{}, reject(ReasonInvalidPollution, fmt.Sprintf("%v", raw.Pollution))
	}

	return models.CityRecord{
		RawName:        name,
		CanonicalName:  canonical,
		Country:        country.Code,
		CountryName:    country.Name,
		PollutionValue: raw.Pollution,
		Lat:            raw.Lat,
		Lon:            raw.Lon,
		Source:         raw.Source,
	}, nil
}

// checkNameShape is the cheap pre-filter: length bounds and at least one
// letter, so numeric-only or symbol-only names never reach the lookup.
func checkNameShape(name string) error {
	runes := []rune(name)
	if len(runes) < minNameLength || len(runes) > maxNameLength {
		return reject(ReasonInvalidName, name)
	}
	for _, r := range runes {
		if unicode.IsLetter(r) {
			return nil
		}
	}
	return reject(ReasonInvalidName, name)
}

// canonicalize resolves a name through the places lookup. Lookup
// outages fail open: the original name is accepted unmodified rather
// than blocking the pipeline. A resolved non-locality entity is a
// rejection.
func (v *Validator) canonicalize(ctx context.Context, name string) (string, error) {
	key := strings.ToLower(name)
	if cached, ok := v.cache.Get(key); ok {
		result := cached.(canonResult)
		if result.Found && !result.IsLocality {
			return "", reject(ReasonInvalidCityType, name)
		}
		if result.Found {
			return result.CanonicalName, nil
		}
		return name, nil
	}

	candidate, err := v.lookup.Resolve(ctx, name)
	if err != nil {
		// Fail open: an unavailable lookup must not block valid cities.
		v.logger.Warn("Canonicalization lookup failed, accepting name as-is",
			zap.String("name", name), zap.Error(err))
		return name, nil
	}

	result := canonResult{}
	if candidate != nil {
		result = canonResult{
			CanonicalName: candidate.Name,
			IsLocality:    candidate.IsLocality(),
			Found:         true,
		}
	}
	v.cache.Set(key, result)

	if result.Found && !result.IsLocality {
		return "", reject(ReasonInvalidCityType, name)
	}
	if result.Found {
		return result.CanonicalName, nil
	}
	return name, nil
}
