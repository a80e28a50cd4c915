package history

import (
	"context"
	"fmt"
	"time"

	"aircatalog/internal/aqi"
	"aircatalog/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Store reads the bulk historical measurement table. It is the highest
// priority upstream source: local, cheap, and usually populated.
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewStore(db *sqlx.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

func (s *Store) Name() string { return string(models.SourceHistoricalStore) }

type measurementRow struct {
	City       string    `db:"city"`
	Parameter  string    `db:"parameter"`
	Value      float64   `db:"value"`
	MeasuredAt time.Time `db:"measured_at"`
}

// Fetch returns one raw record per city for the country. Per city it
// keeps the latest measurement of each parameter and derives the
// pollution figure from PM10 when present, otherwise from PM2.5 scaled
// by the conversion factor.
func (s *Store) Fetch(ctx context.Context, countryCode string) ([]models.RawRecord, error) {
	query := `SELECT city, parameter, value, measured_at
	          FROM measurements
	          WHERE country_code = $1 AND parameter IN ($2, $3)`

	var rows []measurementRow
	if err := s.db.SelectContext(ctx, &rows, query, countryCode, aqi.ParamPM10, aqi.ParamPM25); err != nil {
		return nil, fmt.Errorf("query measurements: %w", err)
	}

	// Latest measurement per (city, parameter).
	latest := make(map[string]map[string]measurementRow)
	var order []string
	for _, row := range rows {
		params, ok := latest[row.City]
		if !ok {
			params = make(map[string]measurementRow, 2)
			latest[row.City] = params
			order = append(order, row.City)
		}
		if cur, ok := params[row.Parameter]; !ok || row.MeasuredAt.After(cur.MeasuredAt) {
			params[row.Parameter] = row
		}
	}

	records := make([]models.RawRecord, 0, len(order))
	for _, city := range order {
		params := latest[city]
		var pollution float64
		if pm10, ok := params[aqi.ParamPM10]; ok {
			pollution = pm10.Value
		} else if pm25, ok := params[aqi.ParamPM25]; ok {
			pollution = pm25.Value * aqi.PM25ToPM10Factor
		} else {
			continue
		}
		records = append(records, models.RawRecord{
			Name:         city,
			Country:      countryCode,
			Pollution:    pollution,
			HasName:      true,
			HasCountry:   true,
			HasPollution: true,
			Source:       models.SourceHistoricalStore,
		})
	}

	s.logger.Debug("Fetched historical measurements",
		zap.String("country", countryCode),
		zap.Int("cities", len(records)))
	return records, nil
}
