package enrichment

import (
	"context"
	"strings"
	"time"
	"unicode"

	"aircatalog/internal/cache"
	"aircatalog/internal/metrics"
	"aircatalog/internal/models"
	"aircatalog/internal/textlookup"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FallbackDescription is attached when every lookup variant fails or
// resolves empty. Enrichment never surfaces an error to the caller.
const FallbackDescription = "No description available."

const (
	batchSize = 5
	// Pause between batches so the text-lookup service is not burst.
	defaultBatchDelay = 500 * time.Millisecond
)

// Engine attaches descriptive text to city records in bounded-
// concurrency batches, backed by the descriptions cache.
type Engine struct {
	lookup     textlookup.Lookup
	cache      *cache.Namespace
	logger     *zap.Logger
	batchDelay time.Duration
}

func New(lookup textlookup.Lookup, descriptionCache *cache.Namespace, logger *zap.Logger) *Engine {
	return &Engine{
		lookup:     lookup,
		cache:      descriptionCache,
		logger:     logger,
		batchDelay: defaultBatchDelay,
	}
}

// Enrich returns a new slice of the same length and order with each
// record's Description populated. Within a batch all lookups run
// concurrently; batches run sequentially with a fixed pause between
// them.
func (e *Engine) Enrich(ctx context.Context, records []models.CityRecord) []models.CityRecord {
	out := make([]models.CityRecord, len(records))
	copy(out, records)

	for start := 0; start < len(out); start += batchSize {
		end := start + batchSize
		if end > len(out) {
			end = len(out)
		}

		g, batchCtx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				out[i].Description = e.describe(batchCtx, out[i])
				// A single record's failure never aborts the batch.
				return nil
			})
		}
		_ = g.Wait()

		if end < len(out) && e.batchDelay > 0 {
			select {
			case <-ctx.Done():
				// Fill what remains with the fallback and stop looking up.
				for i := end; i < len(out); i++ {
					out[i].Description = FallbackDescription
				}
				return out
			case <-time.After(e.batchDelay):
			}
		}
	}
	return out
}

// describe resolves one record's description: cache first, then the
// query variants in sequence, falling back to the fixed text.
func (e *Engine) describe(ctx context.Context, record models.CityRecord) string {
	key := record.DedupeKey()
	if cached, ok := e.cache.Get(key); ok {
		if text := cached.(string); text != "" {
			return text
		}
		// Known-absent result; skip the lookups.
		metrics.EnrichmentFallbacks.Inc()
		return FallbackDescription
	}

	text, resolved := e.resolveVariants(ctx, record)
	// Only definitive answers are cached. When every variant errored the
	// service may just be down, and a cached "" would outlive the outage.
	if resolved {
		e.cache.Set(key, text)
	}
	if text == "" {
		metrics.EnrichmentFallbacks.Inc()
		return FallbackDescription
	}
	return text
}

// resolveVariants tries the query variants in sequence. resolved is
// true when at least one variant got an answer from the lookup, even a
// "no such page" one; it stays false only when every variant errored.
func (e *Engine) resolveVariants(ctx context.Context, record models.CityRecord) (text string, resolved bool) {
	country := record.CountryName
	if country == "" {
		country = record.Country
	}

	variants := []string{
		record.CanonicalName,
		record.CanonicalName + ", " + country,
		record.CanonicalName + " (" + country + ")",
	}
	if stripped := stripSymbols(record.CanonicalName); stripped != record.CanonicalName && stripped != "" {
		variants = append(variants, stripped)
	}

	for _, variant := range variants {
		extract, err := e.lookup.Extract(ctx, variant)
		if err != nil {
			e.logger.Debug("Description lookup variant failed",
				zap.String("variant", variant), zap.Error(err))
			continue
		}
		resolved = true
		if extract != "" {
			return extract, true
		}
	}
	return "", resolved
}

// stripSymbols drops everything but letters, digits and spaces, which
// rescues names decorated with markers the lookup service chokes on.
func stripSymbols(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
