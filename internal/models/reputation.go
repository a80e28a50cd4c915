package models

import "time"

// BlockedThreshold is the number of invalid-data flags after which a
// (city, country) pair is suppressed from default listings.
const BlockedThreshold = 3

// ReputationEntry is a persistent counter row for one flagged city.
// CityName is stored lowercased; the key is case-insensitive.
type ReputationEntry struct {
	CityName      string    `db:"city_name" json:"city_name"`
	CountryCode   string    `db:"country_code" json:"country_code"`
	InvalidCount  int       `db:"invalid_count" json:"invalid_count"`
	FirstMarkedAt time.Time `db:"first_marked_at" json:"first_marked_at"`
	LastMarkedAt  time.Time `db:"last_marked_at" json:"last_marked_at"`
}

// IsBlocked reports whether the entry has accumulated enough flags to be
// excluded from default listings.
func (e ReputationEntry) IsBlocked() bool {
	return e.InvalidCount >= BlockedThreshold
}
