package validator

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"aircatalog/internal/cache"
	"aircatalog/internal/models"
	"aircatalog/internal/places"

	"go.uber.org/zap"
)

type fakeLookup struct {
	candidates map[string]*places.Candidate
	err        error
	calls      int
}

func (f *fakeLookup) Resolve(_ context.Context, name string) (*places.Candidate, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.candidates[strings.ToLower(name)], nil
}

func newTestValidator(lookup places.Lookup) *Validator {
	countries := models.NewCountrySet([]models.Country{
		{Code: "PL", Name: "Poland"},
		{Code: "DE", Name: "Germany"},
	})
	ns := cache.NewNamespace(cache.New(), "validation", time.Minute)
	return New(lookup, ns, countries, zap.NewNop())
}

func rawRecord(name, country string, pollution float64) models.RawRecord {
	return models.RawRecord{
		Name: name, Country: country, Pollution: pollution,
		HasName: true, HasCountry: true, HasPollution: true,
		Source: models.SourceLegacyAPI,
	}
}

func rejectReason(t *testing.T, err error) RejectReason {
	t.Helper()
	var rejectErr *RejectError
	if !errors.As(err, &rejectErr) {
		t.Fatalf("err = %v; want *RejectError", err)
	}
	return rejectErr.Reason
}

func TestValidate_Accepts(t *testing.T) {
	lookup := &fakeLookup{candidates: map[string]*places.Candidate{
		"warsaw": {Name: "Warsaw", Types: []string{"locality"}},
	}}
	v := newTestValidator(lookup)

	record, err := v.Validate(context.Background(), rawRecord("Warsaw", "Poland", 45))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if record.CanonicalName != "Warsaw" || record.Country != "PL" {
		t.Errorf("record = %+v; want Warsaw/PL", record)
	}
	if record.CountryName != "Poland" {
		t.Errorf("CountryName = %q; want Poland", record.CountryName)
	}
}

func TestValidate_CanonicalCorrection(t *testing.T) {
	lookup := &fakeLookup{candidates: map[string]*places.Candidate{
		"warszawa": {Name: "Warsaw", Types: []string{"locality"}},
	}}
	v := newTestValidator(lookup)

	record, err := v.Validate(context.Background(), rawRecord("Warszawa", "PL", 45))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if record.CanonicalName != "Warsaw" {
		t.Errorf("CanonicalName = %q; want corrected Warsaw", record.CanonicalName)
	}
	if record.RawName != "Warszawa" {
		t.Errorf("RawName = %q; want original Warszawa", record.RawName)
	}
}

func TestValidate_MissingFields(t *testing.T) {
	v := newTestValidator(&fakeLookup{})

	cases := []models.RawRecord{
		{HasCountry: true, HasPollution: true, Country: "PL", Pollution: 10},
		{HasName: true, HasPollution: true, Name: "Warsaw", Pollution: 10},
		{HasName: true, HasCountry: true, Name: "Warsaw", Country: "PL"},
	}
	for i, raw := range cases {
		_, err := v.Validate(context.Background(), raw)
		if got := rejectReason(t, err); got != ReasonMissingFields {
			t.Errorf("case %d reason = %q; want missing_fields", i, got)
		}
	}
}

func TestValidate_NamePreFilter(t *testing.T) {
	lookup := &fakeLookup{}
	v := newTestValidator(lookup)

	cases := []string{"007", "x", "  ", "***", "12 34", strings.Repeat("a", 101)}
	for _, name := range cases {
		_, err := v.Validate(context.Background(), rawRecord(name, "PL", 10))
		if got := rejectReason(t, err); got != ReasonInvalidName {
			t.Errorf("name %q reason = %q; want invalid_name", name, got)
		}
	}
	if lookup.calls != 0 {
		t.Errorf("lookup.calls = %d; want 0 (pre-filter runs before lookup)", lookup.calls)
	}
}

func TestValidate_RejectsNonLocality(t *testing.T) {
	lookup := &fakeLookup{candidates: map[string]*places.Candidate{
		"golden terrace": {Name: "Golden Terrace", Types: []string{"establishment", "shopping_mall"}},
	}}
	v := newTestValidator(lookup)

	_, err := v.Validate(context.Background(), rawRecord("Golden Terrace", "PL", 10))
	if got := rejectReason(t, err); got != ReasonInvalidCityType {
		t.Errorf("reason = %q; want invalid_city_type", got)
	}
}

func TestValidate_FailOpenOnLookupOutage(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("connection refused")}
	v := newTestValidator(lookup)

	record, err := v.Validate(context.Background(), rawRecord("Warsaw", "PL", 45))
	if err != nil {
		t.Fatalf("Validate during lookup outage: %v; want fail-open accept", err)
	}
	if record.CanonicalName != "Warsaw" {
		t.Errorf("CanonicalName = %q; want original name unmodified", record.CanonicalName)
	}
}

func TestValidate_NotFoundAcceptsOriginal(t *testing.T) {
	v := newTestValidator(&fakeLookup{})

	record, err := v.Validate(context.Background(), rawRecord("Zabrze", "PL", 30))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if record.CanonicalName != "Zabrze" {
		t.Errorf("CanonicalName = %q; want Zabrze", record.CanonicalName)
	}
}

func TestValidate_InvalidCountry(t *testing.T) {
	v := newTestValidator(&fakeLookup{})

	_, err := v.Validate(context.Background(), rawRecord("Madrid", "ES", 20))
	if got := rejectReason(t, err); got != ReasonInvalidCountry {
		t.Errorf("reason = %q; want invalid_country", got)
	}
}

func TestValidate_InvalidPollution(t *testing.T) {
	v := newTestValidator(&fakeLookup{})

	for _, pollution := range []float64{-1, 1001, math.NaN(), math.Inf(1)} {
		_, err := v.Validate(context.Background(), rawRecord("Warsaw", "PL", pollution))
		if got := rejectReason(t, err); got != ReasonInvalidPollution {
			t.Errorf("pollution %v reason = %q; want invalid_pollution", pollution, got)
		}
	}

	// Domain bounds are inclusive.
	for _, pollution := range []float64{0, 1000} {
		if _, err := v.Validate(context.Background(), rawRecord("Warsaw", "PL", pollution)); err != nil {
			t.Errorf("pollution %v rejected: %v; want accepted", pollution, err)
		}
	}
}

func TestValidate_CachesLookups(t *testing.T) {
	lookup := &fakeLookup{candidates: map[string]*places.Candidate{
		"warsaw": {Name: "Warsaw", Types: []string{"locality"}},
	}}
	v := newTestValidator(lookup)

	for i := 0; i < 3; i++ {
		if _, err := v.Validate(context.Background(), rawRecord("Warsaw", "PL", 45)); err != nil {
			t.Fatalf("Validate #%d: %v", i+1, err)
		}
	}
	if lookup.calls != 1 {
		t.Errorf("lookup.calls = %d; want 1 (cached after first)", lookup.calls)
	}
}

func TestValidate_CachesNegativeLookups(t *testing.T) {
	lookup := &fakeLookup{candidates: map[string]*places.Candidate{
		"golden terrace": {Name: "Golden Terrace", Types: []string{"establishment"}},
	}}
	v := newTestValidator(lookup)

	for i := 0; i < 2; i++ {
		_, err := v.Validate(context.Background(), rawRecord("Golden Terrace", "PL", 10))
		if got := rejectReason(t, err); got != ReasonInvalidCityType {
			t.Fatalf("reason = %q; want invalid_city_type", got)
		}
	}
	if lookup.calls != 1 {
		t.Errorf("lookup.calls = %d; want 1 (negative result cached)", lookup.calls)
	}
}
