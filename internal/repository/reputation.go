package repository

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"aircatalog/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ReputationRepository persists invalid-data flags per (city, country)
// pair. The key is case-insensitive: names are stored lowercased and
// country codes uppercased.
type ReputationRepository interface {
	Flag(cityName, countryCode string) (*models.ReputationEntry, error)
	Get(cityName, countryCode string) (*models.ReputationEntry, error)
	List(countryFilter string, blockedOnly bool) ([]*models.ReputationEntry, error)
	Unflag(cityName, countryCode string) (bool, error)
}

type reputationRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
	now    func() time.Time
}

func NewReputationRepository(db *sqlx.DB, logger *zap.Logger) ReputationRepository {
	return &reputationRepository{db: db, logger: logger, now: time.Now}
}

func normalizeKey(cityName, countryCode string) (string, string) {
	return strings.ToLower(strings.TrimSpace(cityName)), strings.ToUpper(strings.TrimSpace(countryCode))
}

// Flag inserts a new row with count 1 or atomically increments an
// existing one, refreshing last_marked_at. A single upsert statement
// keeps concurrent flags on the same key race-free.
func (r *reputationRepository) Flag(cityName, countryCode string) (*models.ReputationEntry, error) {
	city, country := normalizeKey(cityName, countryCode)
	now := r.now().UTC()

	query := `INSERT INTO city_reports (city_name, country_code, invalid_count, first_marked_at, last_marked_at)
	          VALUES ($1, $2, 1, $3, $3)
	          ON CONFLICT (city_name, country_code)
	          DO UPDATE SET invalid_count = city_reports.invalid_count + 1, last_marked_at = $3
	          RETURNING city_name, country_code, invalid_count, first_marked_at, last_marked_at`

	var entry models.ReputationEntry
	if err := r.db.QueryRowx(query, city, country, now).StructScan(&entry); err != nil {
		r.logger.Error("Failed to flag city", zap.String("city", city), zap.String("country", country), zap.Error(err))
		return nil, err
	}
	return &entry, nil
}

// Get returns the entry for a key, or nil if the pair was never flagged.
func (r *reputationRepository) Get(cityName, countryCode string) (*models.ReputationEntry, error) {
	city, country := normalizeKey(cityName, countryCode)

	var entry models.ReputationEntry
	query := `SELECT city_name, country_code, invalid_count, first_marked_at, last_marked_at
	          FROM city_reports WHERE city_name = $1 AND country_code = $2`
	err := r.db.Get(&entry, query, city, country)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// List returns flagged entries, most recently flagged first. With
// blockedOnly set, only entries at or above the blocked threshold are
// returned.
func (r *reputationRepository) List(countryFilter string, blockedOnly bool) ([]*models.ReputationEntry, error) {
	query := `SELECT city_name, country_code, invalid_count, first_marked_at, last_marked_at FROM city_reports`
	var clauses []string
	var args []any

	if blockedOnly {
		args = append(args, models.BlockedThreshold)
		clauses = append(clauses, "invalid_count >= $1")
	}
	if countryFilter != "" {
		args = append(args, strings.ToUpper(strings.TrimSpace(countryFilter)))
		if len(args) == 2 {
			clauses = append(clauses, "country_code = $2")
		} else {
			clauses = append(clauses, "country_code = $1")
		}
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY last_marked_at DESC"

	var entries []*models.ReputationEntry
	if err := r.db.Select(&entries, query, args...); err != nil {
		return nil, err
	}
	return entries, nil
}

// Unflag deletes the row outright. A later Flag for the same key starts
// a fresh count at 1.
func (r *reputationRepository) Unflag(cityName, countryCode string) (bool, error) {
	city, country := normalizeKey(cityName, countryCode)

	res, err := r.db.Exec(`DELETE FROM city_reports WHERE city_name = $1 AND country_code = $2`, city, country)
	if err != nil {
		r.logger.Error("Failed to unflag city", zap.String("city", city), zap.String("country", country), zap.Error(err))
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
