package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"aircatalog/internal/aqi"
	"aircatalog/internal/cache"
	"aircatalog/internal/dedup"
	"aircatalog/internal/models"
	"aircatalog/internal/paginate"
	"aircatalog/internal/repository"

	"go.uber.org/zap"
)

var (
	ErrCountryNotSupported = errors.New("country not supported")
	ErrUnknownCacheScope   = errors.New("unknown cache scope")
)

// ListParams are the caller-supplied knobs for one catalog listing.
type ListParams struct {
	Country        string
	Page           int
	PageSize       int
	Search         string
	IncludeBlocked bool
}

// CatalogService is the request surface the HTTP layer talks to.
type CatalogService interface {
	ListCities(ctx context.Context, params ListParams) (paginate.Page, error)
	FlagCity(cityName, countryCode string) (*models.ReputationEntry, error)
	ListFlagged(countryFilter string, blockedOnly bool) ([]*models.ReputationEntry, error)
	UnflagCity(cityName, countryCode string) (bool, error)
	InvalidateCache(scope string) (int, error)
	CacheStats() cache.Stats
}

// Fetcher is the source-selection stage.
type Fetcher interface {
	Fetch(ctx context.Context, countryCode string) ([]models.RawRecord, error)
}

// RecordValidator qualifies and canonicalizes one raw record.
type RecordValidator interface {
	Validate(ctx context.Context, raw models.RawRecord) (models.CityRecord, error)
}

// Enricher attaches descriptions, preserving input order.
type Enricher interface {
	Enrich(ctx context.Context, records []models.CityRecord) []models.CityRecord
}

type catalogService struct {
	fetcher     Fetcher
	validator   RecordValidator
	enricher    Enricher
	mergePolicy dedup.MergePolicy
	repo        repository.ReputationRepository
	countries   *models.CountrySet
	store       *cache.Cache
	namespaces  map[string]*cache.Namespace
	logger      *zap.Logger
}

func NewCatalogService(
	fetcher Fetcher,
	recordValidator RecordValidator,
	enricher Enricher,
	repo repository.ReputationRepository,
	countries *models.CountrySet,
	store *cache.Cache,
	namespaces []*cache.Namespace,
	logger *zap.Logger,
) CatalogService {
	byName := make(map[string]*cache.Namespace, len(namespaces))
	for _, ns := range namespaces {
		byName[ns.Name()] = ns
	}
	return &catalogService{
		fetcher:     fetcher,
		validator:   recordValidator,
		enricher:    enricher,
		mergePolicy: dedup.HighestPollutionWins,
		repo:        repo,
		countries:   countries,
		store:       store,
		namespaces:  byName,
		logger:      logger,
	}
}

// ListCities runs the full aggregation pipeline: source selection,
// validation, duplicate resolution, reputation filtering, enrichment
// and pagination.
func (s *catalogService) ListCities(ctx context.Context, params ListParams) (paginate.Page, error) {
	country, ok := s.countries.Resolve(params.Country)
	if !ok {
		return paginate.Page{}, ErrCountryNotSupported
	}
	// Reject bad pagination before any upstream work.
	if params.Page < 1 {
		return paginate.Page{}, paginate.ErrInvalidPage
	}
	if params.PageSize < 1 {
		return paginate.Page{}, paginate.ErrInvalidPageSize
	}

	raws, err := s.fetcher.Fetch(ctx, country.Code)
	if err != nil {
		return paginate.Page{}, err
	}

	records := make([]models.CityRecord, 0, len(raws))
	for _, raw := range raws {
		record, err := s.validator.Validate(ctx, raw)
		if err != nil {
			s.logger.Debug("Record rejected", zap.String("name", raw.Name), zap.Error(err))
			continue
		}
		records = append(records, record)
	}

	records = dedup.Dedupe(records, s.mergePolicy)

	if !params.IncludeBlocked {
		records = s.filterBlocked(records, country.Code)
	}

	if params.Search != "" {
		needle := strings.ToLower(strings.TrimSpace(params.Search))
		filtered := records[:0]
		for _, record := range records {
			if strings.Contains(strings.ToLower(record.CanonicalName), needle) {
				filtered = append(filtered, record)
			}
		}
		records = filtered
	}

	// Catalog ordering: most polluted first; ties keep pipeline order.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].PollutionValue > records[j].PollutionValue
	})

	records = s.enricher.Enrich(ctx, records)
	for i := range records {
		records[i].AQILevel = aqi.Classify(aqi.ParamPM10, records[i].PollutionValue)
	}

	return paginate.Paginate(records, params.Page, params.PageSize)
}

// filterBlocked drops records whose (city, country) pair is at or above
// the blocked threshold. A reputation read failure fails safe: nothing
// is filtered and the pipeline continues.
func (s *catalogService) filterBlocked(records []models.CityRecord, countryCode string) []models.CityRecord {
	entries, err := s.repo.List(countryCode, true)
	if err != nil {
		s.logger.Warn("Reputation lookup failed, serving unfiltered list", zap.Error(err))
		return records
	}
	if len(entries) == 0 {
		return records
	}

	blocked := make(map[string]bool, len(entries))
	for _, entry := range entries {
		blocked[entry.CityName+"_"+entry.CountryCode] = true
	}

	kept := records[:0]
	for _, record := range records {
		if blocked[strings.ToLower(record.CanonicalName)+"_"+record.Country] {
			continue
		}
		kept = append(kept, record)
	}
	return kept
}

// FlagCity records one invalid-data report. Write failures surface to
// the caller.
func (s *catalogService) FlagCity(cityName, countryCode string) (*models.ReputationEntry, error) {
	return s.repo.Flag(cityName, countryCode)
}

// ListFlagged lists reputation entries. Read failures fail safe with an
// empty result rather than blocking the caller.
func (s *catalogService) ListFlagged(countryFilter string, blockedOnly bool) ([]*models.ReputationEntry, error) {
	entries, err := s.repo.List(countryFilter, blockedOnly)
	if err != nil {
		s.logger.Warn("Failed to list flagged cities", zap.Error(err))
		return []*models.ReputationEntry{}, nil
	}
	return entries, nil
}

// UnflagCity is the admin override: the row is deleted outright, so a
// later flag starts a fresh count.
func (s *catalogService) UnflagCity(cityName, countryCode string) (bool, error) {
	return s.repo.Unflag(cityName, countryCode)
}

// InvalidateCache clears one named namespace, or every namespace for
// scope "all" (or empty). Returns the number of evicted keys.
func (s *catalogService) InvalidateCache(scope string) (int, error) {
	if scope == "" || scope == "all" {
		removed := 0
		for _, ns := range s.namespaces {
			removed += ns.Clear()
		}
		return removed, nil
	}
	ns, ok := s.namespaces[scope]
	if !ok {
		return 0, ErrUnknownCacheScope
	}
	return ns.Clear(), nil
}

// CacheStats exposes the shared cache counters for the admin surface.
func (s *catalogService) CacheStats() cache.Stats {
	return s.store.Stats()
}
