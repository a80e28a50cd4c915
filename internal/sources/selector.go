package sources

import (
	"context"
	"errors"

	"aircatalog/internal/cache"
	"aircatalog/internal/metrics"
	"aircatalog/internal/models"

	"go.uber.org/zap"
)

// ErrAllSourcesFailed means no upstream provider could be queried at
// all. An upstream returning zero records is not a failure.
var ErrAllSourcesFailed = errors.New("all upstream sources failed")

// Source is one upstream provider of raw city records.
type Source interface {
	Name() string
	Fetch(ctx context.Context, countryCode string) ([]models.RawRecord, error)
}

// Selector tries upstream providers in strict priority order and
// commits to the first one that yields at least one record. Sources are
// never merged within a request. Computed results are cached per
// (source, country) so repeat requests inside the TTL skip the network
// and database entirely.
type Selector struct {
	sources []Source
	cache   *cache.Namespace
	logger  *zap.Logger
}

func NewSelector(sourceCache *cache.Namespace, logger *zap.Logger, sources ...Source) *Selector {
	return &Selector{
		sources: sources,
		cache:   sourceCache,
		logger:  logger,
	}
}

// Fetch returns the raw records for a country from the highest-priority
// source that has any. A failing source is logged and skipped; only
// when every source fails is ErrAllSourcesFailed returned.
func (s *Selector) Fetch(ctx context.Context, countryCode string) ([]models.RawRecord, error) {
	failures := 0

	for _, source := range s.sources {
		key := source.Name() + ":" + countryCode

		if cached, ok := s.cache.Get(key); ok {
			records := cached.([]models.RawRecord)
			if len(records) > 0 {
				metrics.SourceAttempts.WithLabelValues(source.Name(), "hit").Inc()
				return records, nil
			}
			metrics.SourceAttempts.WithLabelValues(source.Name(), "empty").Inc()
			continue
		}

		records, err := source.Fetch(ctx, countryCode)
		if err != nil {
			failures++
			metrics.SourceAttempts.WithLabelValues(source.Name(), "error").Inc()
			s.logger.Warn("Upstream source failed, falling through",
				zap.String("source", source.Name()),
				zap.String("country", countryCode),
				zap.Error(err))
			continue
		}

		s.cache.Set(key, records)
		if len(records) > 0 {
			metrics.SourceAttempts.WithLabelValues(source.Name(), "hit").Inc()
			s.logger.Info("Source selected",
				zap.String("source", source.Name()),
				zap.String("country", countryCode),
				zap.Int("records", len(records)))
			return records, nil
		}
		metrics.SourceAttempts.WithLabelValues(source.Name(), "empty").Inc()
	}

	if failures == len(s.sources) && failures > 0 {
		return nil, ErrAllSourcesFailed
	}
	return nil, nil
}
